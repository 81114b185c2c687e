package services

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

func writeModDir(t *testing.T, root, id string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, id, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create mod dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write mod file: %v", err)
		}
	}
}

func TestExportArchivesPresentAndReportsMissing(t *testing.T) {
	modsDir := t.TempDir()
	writeModDir(t, modsDir, "A", map[string]string{
		"info.json":        `{"name":"mod A"}`,
		"assets/sound.bin": "beep",
	})

	svc := NewExportService(NewModScanner(modsDir))
	outPath := filepath.Join(t.TempDir(), "mods.zip")

	result, err := svc.Export([]string{"A", "B"}, outPath)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.ExportedCount != 1 {
		t.Errorf("Expected 1 exported, got %d", result.ExportedCount)
	}
	if len(result.MissingMods) != 1 || result.MissingMods[0] != "B" {
		t.Errorf("Expected missing [B], got %v", result.MissingMods)
	}
	if result.ArchivePath != outPath {
		t.Errorf("Expected archive path %q, got %q", outPath, result.ArchivePath)
	}

	r, err := zip.OpenReader(outPath)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	expected := []string{"A/assets/sound.bin", "A/info.json"}
	if len(names) != len(expected) {
		t.Fatalf("Expected entries %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Expected entries %v, got %v", expected, names)
		}
	}

	for _, f := range r.File {
		if f.Name != "A/info.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open entry: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read entry: %v", err)
		}
		if string(data) != `{"name":"mod A"}` {
			t.Errorf("Entry content mismatch: %s", data)
		}
	}
}

func TestExportFailsWhenNothingPresent(t *testing.T) {
	svc := NewExportService(NewModScanner(t.TempDir()))
	outPath := filepath.Join(t.TempDir(), "mods.zip")

	_, err := svc.Export([]string{"X", "Y"}, outPath)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Expected ErrNothingToExport, got %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("Expected no archive written when nothing is exportable")
	}
}

func TestExportLeavesNoTempFilesBehind(t *testing.T) {
	modsDir := t.TempDir()
	writeModDir(t, modsDir, "A", map[string]string{"info.json": "{}"})

	svc := NewExportService(NewModScanner(modsDir))
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "mods.zip")

	if _, err := svc.Export([]string{"A"}, outPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "mods.zip" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only mods.zip in output dir, got %v", names)
	}
}
