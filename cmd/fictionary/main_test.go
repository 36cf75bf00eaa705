package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	"github.com/CTAG07/Fictionary/pkg/library"
)

// setupDataDirs points the data directory search at two fresh temporary
// directories and returns them, shared first.
func setupDataDirs(t *testing.T) (shared, local string) {
	t.Helper()
	shared, local = t.TempDir(), t.TempDir()
	t.Setenv(envDirs, shared+string(os.PathListSeparator)+local)
	return shared, local
}

// setupTestLibrary opens a library database in a temporary directory.
func setupTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	db, err := initDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := library.SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	lib, err := library.NewLibrary(db)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	t.Cleanup(lib.Close)
	return lib
}

func compileWords(t *testing.T, words ...string) *charkov.Chain {
	t.Helper()
	c := charkov.NewCounter()
	for _, w := range words {
		c.Feed(w)
	}
	ch, err := charkov.Compile(c)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return ch
}

// writeFictionary writes a chain trained on words to dir/name.fictionary.
func writeFictionary(t *testing.T, dir, name string, words ...string) string {
	t.Helper()
	path := filepath.Join(dir, name+library.FileExtension)
	if err := library.WriteFile(path, compileWords(t, words...)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// runCommand runs the command line args and returns stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Fields(strings.TrimSpace(s))
}
