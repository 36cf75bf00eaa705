package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CTAG07/Fictionary/pkg/charkov"
)

// Info holds the metadata stored next to a fictionary.
type Info struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Words     int       `json:"words"`    // The number of training words.
	Contexts  int       `json:"contexts"` // The number of contexts with a sampler.
	Size      int64     `json:"size"`     // The length of the encoded chain in bytes.
	CreatedAt time.Time `json:"created_at"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfo(row rowScanner) (Info, error) {
	var info Info
	var created int64
	if err := row.Scan(&info.ID, &info.Name, &info.Words, &info.Contexts, &info.Size, &created); err != nil {
		return Info{}, err
	}
	info.CreatedAt = time.Unix(created, 0).UTC()
	return info, nil
}

// Save stores ch under name, replacing any fictionary already stored there.
func (l *Library) Save(ctx context.Context, name string, ch *charkov.Chain) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	data := charkov.Encode(ch)
	stats := ch.Stats()

	if _, err := l.stmtSave.ExecContext(ctx, name, data, stats.Words, stats.Contexts, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save fictionary %q: %w", name, err)
	}

	l.logger.InfoContext(ctx, "Fictionary saved",
		slog.String("name", name),
		slog.Int("words", stats.Words),
		slog.Int("contexts", stats.Contexts),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Load decodes the fictionary stored under name. It returns ErrNotFound if
// there is none, and a codec error if the stored bytes are damaged.
func (l *Library) Load(ctx context.Context, name string) (*charkov.Chain, error) {
	var data []byte
	err := l.stmtLoad.QueryRowContext(ctx, name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, err
	}

	ch, err := charkov.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("fictionary %q: %w", name, err)
	}
	l.logger.DebugContext(ctx, "Fictionary loaded", slog.String("name", name), slog.Int("bytes", len(data)))
	return ch, nil
}

// Info returns the metadata of a single fictionary.
func (l *Library) Info(ctx context.Context, name string) (Info, error) {
	info, err := scanInfo(l.stmtInfo.QueryRowContext(ctx, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Info{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return Info{}, err
	}
	return info, nil
}

// Infos returns the metadata of every stored fictionary, sorted by name.
func (l *Library) Infos(ctx context.Context) ([]Info, error) {
	rows, err := l.stmtInfos.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]Info, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Names returns the name of every stored fictionary, sorted.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	infos, err := l.Infos(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// Remove deletes the fictionary stored under name. It returns ErrNotFound if
// there is none.
func (l *Library) Remove(ctx context.Context, name string) error {
	res, err := l.stmtRemove.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to remove fictionary %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	l.logger.InfoContext(ctx, "Fictionary removed", slog.String("name", name))
	return nil
}
