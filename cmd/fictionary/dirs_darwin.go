//go:build darwin

package main

import (
	"os"
	"path/filepath"
)

func platformDataDirs() []string {
	dirs := []string{filepath.Join("/Library/Application Support", bundleID)}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Library", "Application Support", bundleID))
	}
	return dirs
}
