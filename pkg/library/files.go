package library

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	"github.com/natefinch/atomic"
)

// ReadFile decodes the fictionary file at path.
func ReadFile(path string) (*charkov.Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ch, err := charkov.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ch, nil
}

// WriteFile encodes ch and atomically replaces the file at path, so readers
// never see a partially written fictionary.
func WriteFile(path string, ch *charkov.Chain) error {
	if err := atomic.WriteFile(path, bytes.NewReader(charkov.Encode(ch))); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ImportFile reads the fictionary file at path and saves it under name.
func (l *Library) ImportFile(ctx context.Context, name, path string) error {
	ch, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err = l.Save(ctx, name, ch); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Fictionary imported", slog.String("name", name), slog.String("path", path))
	return nil
}

// ExportFile writes the fictionary stored under name to path.
func (l *Library) ExportFile(ctx context.Context, name, path string) error {
	ch, err := l.Load(ctx, name)
	if err != nil {
		return err
	}
	if err = WriteFile(path, ch); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Fictionary exported", slog.String("name", name), slog.String("path", path))
	return nil
}
