package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

// ErrNothingToExport is returned when none of the requested mods has a
// local directory.
var ErrNothingToExport = errors.New("no mod directories found to export")

// ExportResult reports an archive export. Missing mods are listed, not
// treated as failures.
type ExportResult struct {
	ExportedCount int      `json:"exported_count"`
	MissingMods   []string `json:"missing_mods"`
	ArchivePath   string   `json:"archive_path"`
}

// ExportService packages selected mods' local directories into a single zip
// archive.
type ExportService struct {
	scanner *ModScanner
}

func NewExportService(scanner *ModScanner) *ExportService {
	return &ExportService{scanner: scanner}
}

// Export writes a zip archive at outPath containing each requested mod's
// directory under its ID. IDs without a local directory are reported in
// MissingMods; only a total absence of exportable directories is an error.
func (e *ExportService) Export(ids []string, outPath string) (*ExportResult, error) {
	result := &ExportResult{ArchivePath: outPath, MissingMods: []string{}}

	present := make([]string, 0, len(ids))
	for _, id := range ids {
		if e.scanner.Exists(id) {
			present = append(present, id)
		} else {
			result.MissingMods = append(result.MissingMods, id)
		}
	}
	if len(present) == 0 {
		return nil, ErrNothingToExport
	}

	// Build the archive next to the destination and rename at the end, so
	// a failed export never leaves a half-written file at outPath.
	tmpPath := outPath + ".tmp-" + uuid.New().String()
	if err := e.writeArchive(present, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	result.ExportedCount = len(present)
	log.Printf("Export: archived %d mods to %s (%d missing)", result.ExportedCount, outPath, len(result.MissingMods))
	return result, nil
}

func (e *ExportService) writeArchive(ids []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, id := range ids {
		if err := e.addModDir(zw, id); err != nil {
			zw.Close()
			return fmt.Errorf("archive mod %s: %w", id, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return f.Close()
}

// addModDir adds every file under the mod's directory to the archive,
// prefixed with the mod ID.
func (e *ExportService) addModDir(zw *zip.Writer, id string) error {
	root := e.scanner.ModPath(id)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(filepath.Join(id, rel)))
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(w, src)
		return err
	})
}
