//go:build windows

package main

import (
	"os"
	"path/filepath"
)

// platformDataDirs returns the roaming application data directory. Windows
// has no shared location.
func platformDataDirs() []string {
	if base := os.Getenv("APPDATA"); base != "" {
		return []string{filepath.Join(base, orgName, appName, "data")}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return []string{filepath.Join(dir, orgName, appName, "data")}
	}
	return nil
}
