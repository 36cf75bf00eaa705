package library

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestLibrary creates a new SQLite database file and a Library for
// testing. It uses t.Cleanup to ensure resources are released.
func setupTestLibrary(t *testing.T) (*sql.DB, *Library) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	l, err := NewLibrary(db)
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	t.Cleanup(l.Close)

	return db, l
}

// compileWords builds a chain from a fixed list of training words.
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

// setupTestLibraryWithChains also stores two small fictionaries.
func setupTestLibraryWithChains(t *testing.T) (context.Context, *Library) {
	_, l := setupTestLibrary(t)
	ctx := context.Background()
	if err := l.Save(ctx, "tables", compileWords(t, "babel", "table")); err != nil {
		t.Fatalf("setup: Save() failed: %v", err)
	}
	if err := l.Save(ctx, "marbles", compileWords(t, "marble", "garble", "warble")); err != nil {
		t.Fatalf("setup: Save() failed: %v", err)
	}
	return ctx, l
}
