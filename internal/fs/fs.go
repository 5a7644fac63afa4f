// Package fs contains filesystem helpers shared by the collection builder
// and the archive extractor.
package fs

import (
	"os"
	"path/filepath"
)

// Canonical resolves symlinks in p and returns the absolute, cleaned path.
func Canonical(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// IsDir returns true if name exists and is a directory.
func IsDir(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.IsDir()
}

// IsRegularFile returns true if name exists and is a regular file.
func IsRegularFile(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}
