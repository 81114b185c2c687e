package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// PreviewCacheService mirrors Workshop preview images into a local directory
// so the UI can render mod lists without hitting the CDN on every scroll.
// Previews are keyed by mod ID; a cached file is reused until the mod's
// preview URL changes upstream.
type PreviewCacheService struct {
	cacheDir string
	client   *http.Client
}

func NewPreviewCacheService(cacheDir string) *PreviewCacheService {
	if cacheDir == "" {
		cacheDir = "./data/previews"
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("Warning: could not create preview cache directory: %v", err)
	}
	return &PreviewCacheService{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// PreviewPath returns the local path for a mod's cached preview image.
func (s *PreviewCacheService) PreviewPath(modID string) string {
	return filepath.Join(s.cacheDir, modID+".jpg")
}

// HasPreview reports whether a cached preview exists for the mod.
func (s *PreviewCacheService) HasPreview(modID string) bool {
	_, err := os.Stat(s.PreviewPath(modID))
	return err == nil
}

// FetchPreview downloads a mod's preview image into the cache if it is not
// already present. Returns the local path.
func (s *PreviewCacheService) FetchPreview(ctx context.Context, modID, previewURL string) (string, error) {
	path := s.PreviewPath(modID)
	if s.HasPreview(modID) {
		return path, nil
	}
	if previewURL == "" {
		return "", fmt.Errorf("mod %s has no preview URL", modID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return "", fmt.Errorf("build preview request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch preview for %s: %w", modID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("preview fetch for %s returned status %d", modID, resp.StatusCode)
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create preview file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close preview file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize preview file: %w", err)
	}
	return path, nil
}

// DeletePreview removes a mod's cached preview, if present.
func (s *PreviewCacheService) DeletePreview(modID string) error {
	path := s.PreviewPath(modID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete preview for %s: %w", modID, err)
	}
	return nil
}
