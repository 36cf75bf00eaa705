package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CTAG07/Fictionary/pkg/library"
)

const (
	appName  = "fictionary"
	orgName  = "judy"
	bundleID = "uk.co." + orgName + "." + appName
	envDirs  = "FICTIONARY_DATA_DIRS"
)

// dataDirs returns the directories searched for fictionary files, in
// increasing order of precedence: the most local directory comes last.
// FICTIONARY_DATA_DIRS, a list separated by the OS path list separator,
// replaces the platform defaults when set.
func dataDirs() []string {
	if v := os.Getenv(envDirs); v != "" {
		var dirs []string
		for _, d := range filepath.SplitList(v) {
			if d != "" {
				dirs = append(dirs, d)
			}
		}
		return dirs
	}
	return platformDataDirs()
}

// localDataDir returns the most local data directory, which is the one
// most likely to be writeable.
func localDataDir() (string, error) {
	dirs := dataDirs()
	if len(dirs) == 0 {
		return "", errors.New("no data directory available on this system")
	}
	return dirs[len(dirs)-1], nil
}

// fictionaryFiles maps fictionary names to file paths found in dirs. A name
// found in several directories resolves to the latest one. Directories
// that do not exist are skipped.
func fictionaryFiles(dirs []string) (map[string]string, error) {
	files := make(map[string]string)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if name, ok := strings.CutSuffix(entry.Name(), library.FileExtension); ok && name != "" {
				files[name] = filepath.Join(dir, entry.Name())
			}
		}
	}
	return files, nil
}

// sortedNames returns the keys of files merged with extra, sorted and
// without duplicates.
func sortedNames(files map[string]string, extra []string) []string {
	seen := make(map[string]struct{}, len(files)+len(extra))
	names := make([]string, 0, len(files)+len(extra))
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	for name := range files {
		add(name)
	}
	for _, name := range extra {
		add(name)
	}
	sort.Strings(names)
	return names
}
