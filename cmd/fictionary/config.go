package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	"github.com/natefinch/atomic"
)

// Config holds the settings shared by every subcommand. Command line flags
// override the values loaded from the config file.
type Config struct {
	LogLevel          string `json:"log_level"`
	DefaultFictionary string `json:"default_fictionary"`
	DatabasePath      string `json:"database_path"`
	MinLength         int    `json:"min_length"`
	MaxLength         int    `json:"max_length"`
	Count             int    `json:"count"`
	MaxAttempts       int    `json:"max_attempts"`
	ApiAddr           string `json:"api_addr"`
	WordlistMinLength int    `json:"wordlist_min_length"`
}

// DefaultConfig creates a configuration with default values. An empty
// DatabasePath means fictionary.db inside the most local data directory.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		DefaultFictionary: "american",
		DatabasePath:      "",
		MinLength:         4,
		MaxLength:         10,
		Count:             1,
		MaxAttempts:       charkov.DefaultMaxAttempts,
		ApiAddr:           ":7279",
		WordlistMinLength: 3,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Defaults still work without a file on disk.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// parseLogLevel maps a config level name to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger returns a text logger writing to w at the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}
