package fs

import (
	"path/filepath"
)

// HasPathPrefix reports whether p equals base or lies somewhere below it.
// Comparison is purely lexical on the cleaned paths, so symlinks must be
// resolved by the caller first. Mixing a relative and an absolute path, or
// paths on different volumes, yields false.
func HasPathPrefix(base, p string) bool {
	if filepath.VolumeName(base) != filepath.VolumeName(p) {
		return false
	}
	if filepath.IsAbs(base) != filepath.IsAbs(p) {
		return false
	}

	base = filepath.Clean(base)
	p = filepath.Clean(p)

	for p != base {
		parent := filepath.Dir(p)
		if parent == p {
			// reached the root without passing base
			return false
		}
		p = parent
	}

	return true
}
