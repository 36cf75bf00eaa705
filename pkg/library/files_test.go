package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CTAG07/Fictionary/pkg/charkov"
)

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables"+FileExtension)
	original := compileWords(t, "babel", "table")

	if err := WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	ch, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !ch.Equal(original) {
		t.Error("file round trip changed the chain")
	}

	if err := os.WriteFile(path, []byte("not a fictionary"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, charkov.ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestImportExportFile(t *testing.T) {
	ctx, l := setupTestLibraryWithChains(t)
	dir := t.TempDir()
	exported := filepath.Join(dir, "marbles"+FileExtension)

	if err := l.ExportFile(ctx, "marbles", exported); err != nil {
		t.Fatalf("ExportFile() failed: %v", err)
	}
	if err := l.ImportFile(ctx, "copy", exported); err != nil {
		t.Fatalf("ImportFile() failed: %v", err)
	}

	original, _ := l.Load(ctx, "marbles")
	imported, err := l.Load(ctx, "copy")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !imported.Equal(original) {
		t.Error("imported chain differs from the exported one")
	}

	if err := l.ExportFile(ctx, "nonexistent", filepath.Join(dir, "x"+FileExtension)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
