package library

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

var (
	// ErrNotFound is returned when no fictionary has the requested name.
	ErrNotFound = errors.New("library: fictionary not found")
	// ErrInvalidName is returned for names that cannot double as file names.
	ErrInvalidName = errors.New("library: invalid fictionary name")
)

// FileExtension is the extension of standalone fictionary files.
const FileExtension = ".fictionary"

// SetupSchema creates the fictionaries table. It is idempotent and safe to
// call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaFictionaries = `
CREATE TABLE IF NOT EXISTS fictionaries (
    fictionary_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    data BLOB NOT NULL,
    word_count INTEGER NOT NULL,
    context_count INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
`
		indexCreated = `CREATE INDEX IF NOT EXISTS fictionaries_created_at ON fictionaries (created_at);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaFictionaries); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if _, err = tx.Exec(indexCreated); err != nil {
		return fmt.Errorf("could not create index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Library stores and retrieves compiled chains by name. It holds the
// database connection and the prepared statements used by every operation,
// and is safe for concurrent use.
type Library struct {
	db            *sql.DB
	stmtSave      *sql.Stmt
	stmtLoad      *sql.Stmt
	stmtInfo      *sql.Stmt
	stmtInfos     *sql.Stmt
	stmtRemove    *sql.Stmt
	stmtTotalSize *sql.Stmt
	logger        *slog.Logger
}

// NewLibrary prepares every statement the Library needs. The schema must
// already exist; see SetupSchema.
func NewLibrary(db *sql.DB) (*Library, error) {
	stmtSave, err := db.Prepare(`INSERT INTO fictionaries (name, data, word_count, context_count, created_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, word_count = excluded.word_count, context_count = excluded.context_count, created_at = excluded.created_at;`)
	if err != nil {
		return nil, err
	}

	stmtLoad, err := db.Prepare(`SELECT data FROM fictionaries WHERE name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInfo, err := db.Prepare(`SELECT fictionary_id, name, word_count, context_count, length(data), created_at FROM fictionaries WHERE name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInfos, err := db.Prepare(`SELECT fictionary_id, name, word_count, context_count, length(data), created_at FROM fictionaries ORDER BY name;`)
	if err != nil {
		return nil, err
	}

	stmtRemove, err := db.Prepare(`DELETE FROM fictionaries WHERE name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtTotalSize, err := db.Prepare(`SELECT coalesce(SUM(length(data)), 0) FROM fictionaries;`)
	if err != nil {
		return nil, err
	}

	return &Library{
		db:            db,
		stmtSave:      stmtSave,
		stmtLoad:      stmtLoad,
		stmtInfo:      stmtInfo,
		stmtInfos:     stmtInfos,
		stmtRemove:    stmtRemove,
		stmtTotalSize: stmtTotalSize,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared statements. The database itself is left open.
func (l *Library) Close() {
	_ = l.stmtSave.Close()
	_ = l.stmtLoad.Close()
	_ = l.stmtInfo.Close()
	_ = l.stmtInfos.Close()
	_ = l.stmtRemove.Close()
	_ = l.stmtTotalSize.Close()
}

// SetLogger sets the logger for the Library. By default, all logs are
// discarded.
func (l *Library) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// ValidateName checks that name is usable both as a catalogue key and as the
// stem of a .fictionary file: non-empty, at most 64 characters, and made of
// letters, digits, '-', '_' and '.' without a leading dot.
func ValidateName(name string) error {
	if name == "" || len(name) > 64 || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '.' {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
