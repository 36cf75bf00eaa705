//go:build !windows && !darwin

package main

import (
	"os"
	"path/filepath"
)

// platformDataDirs returns the shared directories followed by the user's
// XDG data directory.
func platformDataDirs() []string {
	dirs := []string{
		filepath.Join("/usr/share", appName),
		filepath.Join("/usr/local/share", appName),
	}
	if base := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(base) {
		return append(dirs, filepath.Join(base, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", appName))
	}
	return dirs
}
