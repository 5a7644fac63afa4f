package collection

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/filter"
	"github.com/colpack/colpack/internal/fs"
	"github.com/colpack/colpack/internal/ui"
)

// directory names never included in an artifact, at any depth
var excludedNames = map[string]struct{}{
	"CVS":         {},
	".bzr":        {},
	".hg":         {},
	".git":        {},
	".svn":        {},
	"__pycache__": {},
	".tox":        {},
}

// basename patterns never included in an artifact
var excludedGlobs = []string{"*.pyc", "*.retry"}

// BuildFilesManifest walks the collection tree at srcDir and returns the
// files manifest for an artifact built from it. Entries use slash-separated
// paths relative to srcDir and start with the root directory entry ".".
// Sibling directories are visited in lexical order so the manifest is
// reproducible.
//
// Version control metadata, Python bytecode and the tests/output directory
// are always excluded, as are the collection's own metadata files and
// previously built artifacts at the top level. Symlinks pointing outside the
// tree are skipped with a warning; symlinked directories inside the tree are
// recorded as a single entry and never recursed into.
func BuildFilesManifest(srcDir, namespace, name string, ignorePatterns []string, printer ui.Printer) (*FilesManifest, error) {
	root, err := fs.Canonical(srcDir)
	if err != nil {
		return nil, err
	}

	if err := filter.ValidatePatterns(ignorePatterns); err != nil {
		return nil, err
	}
	reject := filter.RejectByPattern(ignorePatterns, printer.E)

	artifactGlob := fmt.Sprintf("%s-%s-*.tar.gz", namespace, name)

	skip := func(relPath, base string, topLevel bool) bool {
		if _, ok := excludedNames[base]; ok {
			return true
		}
		for _, pattern := range excludedGlobs {
			if ok, _ := path.Match(pattern, base); ok {
				return true
			}
		}
		if relPath == "tests/output" {
			return true
		}
		if topLevel {
			switch base {
			case MetadataFilename, ManifestFilename, FilesManifestFilename:
				return true
			}
			if ok, _ := path.Match(artifactGlob, base); ok {
				return true
			}
		}
		return false
	}

	manifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}

	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return errors.Wrap(err, "ReadDir")
		}

		for _, entry := range entries {
			base := entry.Name()
			abs := filepath.Join(dir, base)
			relPath := path.Join(rel, base)

			if skip(relPath, base, rel == "") || reject(relPath) {
				printer.V("Skipping '%s' for collection build", abs)
				continue
			}

			if entry.Type()&os.ModeSymlink != 0 {
				real, err := filepath.EvalSymlinks(abs)
				if err != nil {
					printer.E("Skipping '%s' as it is a broken symbolic link", abs)
					continue
				}
				if !fs.HasPathPrefix(root, real) {
					printer.E("Skipping '%s' as it is a symbolic link to a path outside the collection", abs)
					continue
				}

				fi, err := os.Stat(real)
				if err != nil {
					return errors.Wrap(err, "Stat")
				}
				if fi.IsDir() {
					// linked directories get a single entry, their
					// content is reachable through the link target
					manifest.Files = append(manifest.Files, NewFileEntry(relPath, FileTypeDir, ""))
					continue
				}

				sum, err := HashFile(real)
				if err != nil {
					return err
				}
				manifest.Files = append(manifest.Files, NewFileEntry(relPath, FileTypeFile, sum))
				continue
			}

			if entry.IsDir() {
				manifest.Files = append(manifest.Files, NewFileEntry(relPath, FileTypeDir, ""))
				if err := walk(abs, relPath); err != nil {
					return err
				}
				continue
			}

			if !entry.Type().IsRegular() {
				printer.E("Skipping '%s' as it is not a regular file", abs)
				continue
			}

			sum, err := HashFile(abs)
			if err != nil {
				return err
			}
			manifest.Files = append(manifest.Files, NewFileEntry(relPath, FileTypeFile, sum))
		}
		return nil
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}

	debug.Log("files manifest for %s.%s has %d entries", namespace, name, len(manifest.Files))
	return manifest, nil
}
