package services

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ModScanner enumerates locally downloaded mod directories. Each immediate
// subdirectory of the mods root is one candidate mod, named by its Workshop
// ID.
type ModScanner struct {
	root string
}

func NewModScanner(root string) *ModScanner {
	return &ModScanner{root: root}
}

// ListModIDs returns the names of all immediate subdirectories of the mods
// root. Files at the top level are ignored.
func (s *ModScanner) ListModIDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan mods directory %s: %w", s.root, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// Exists reports whether the mod's directory is present on disk.
func (s *ModScanner) Exists(id string) bool {
	info, err := os.Stat(s.ModPath(id))
	return err == nil && info.IsDir()
}

// ModPath returns the directory path for a mod ID.
func (s *ModScanner) ModPath(id string) string {
	return filepath.Join(s.root, id)
}

// DirSize returns the aggregate byte size of a mod's directory.
func (s *ModScanner) DirSize(id string) (int64, error) {
	var total int64
	err := filepath.WalkDir(s.ModPath(id), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("size mod directory %s: %w", id, err)
	}
	return total, nil
}
