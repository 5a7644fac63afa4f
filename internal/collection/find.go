package collection

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/json"
	"github.com/colpack/colpack/internal/textfile"
	"github.com/colpack/colpack/internal/ui"
)

// InstalledCollection identifies a collection found below a search path.
// Version is "*" when the installed tree carries neither a MANIFEST.json
// nor a galaxy.yml to read the version from.
type InstalledCollection struct {
	Namespace string
	Name      string
	Version   string
	Path      string
}

// FQCN returns the fully qualified collection name.
func (c *InstalledCollection) FQCN() string {
	return c.Namespace + "." + c.Name
}

// FindInstalled scans the given search paths for installed collections. A
// collection lives at {searchPath}/{namespace}/{name}; its version is read
// from MANIFEST.json when present, from galaxy.yml otherwise. The result is
// sorted by path so repeated scans are stable.
func FindInstalled(searchPaths []string, printer ui.Printer) ([]InstalledCollection, error) {
	var found []InstalledCollection

	for _, searchPath := range searchPaths {
		namespaces, err := os.ReadDir(searchPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "ReadDir")
		}

		for _, nsEntry := range namespaces {
			if !nsEntry.IsDir() {
				continue
			}
			nsPath := filepath.Join(searchPath, nsEntry.Name())

			names, err := os.ReadDir(nsPath)
			if err != nil {
				return nil, errors.Wrap(err, "ReadDir")
			}

			for _, nameEntry := range names {
				if !nameEntry.IsDir() {
					continue
				}

				collPath := filepath.Join(nsPath, nameEntry.Name())
				coll, err := readInstalled(collPath, nsEntry.Name(), nameEntry.Name(), printer)
				if err != nil {
					return nil, err
				}
				if coll != nil {
					found = append(found, *coll)
				}
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})

	debug.Log("found %d installed collections", len(found))
	return found, nil
}

// readInstalled inspects one candidate directory and returns the collection
// installed there, or nil when the directory does not look like one.
func readInstalled(collPath, namespace, name string, printer ui.Printer) (*InstalledCollection, error) {
	manifestPath := filepath.Join(collPath, ManifestFilename)
	if data, err := textfile.Read(manifestPath); err == nil {
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, errors.Wrapf(err, "malformed '%s' at '%s'", ManifestFilename, manifestPath)
		}
		return &InstalledCollection{
			Namespace: manifest.CollectionInfo.Namespace,
			Name:      manifest.CollectionInfo.Name,
			Version:   manifest.CollectionInfo.Version,
			Path:      collPath,
		}, nil
	}

	metaPath := filepath.Join(collPath, MetadataFilename)
	if _, err := os.Stat(metaPath); err == nil {
		meta, err := LoadMetadata(collPath, printer)
		if err != nil {
			return nil, err
		}
		return &InstalledCollection{
			Namespace: meta.Namespace,
			Name:      meta.Name,
			Version:   meta.Version,
			Path:      collPath,
		}, nil
	}

	entries, err := os.ReadDir(collPath)
	if err != nil {
		return nil, errors.Wrap(err, "ReadDir")
	}
	if len(entries) == 0 {
		return nil, nil
	}

	printer.E("Collection at '%s' does not have a MANIFEST.json file or galaxy.yml, cannot detect version, assuming '*'", collPath)
	return &InstalledCollection{
		Namespace: namespace,
		Name:      name,
		Version:   "*",
		Path:      collPath,
	}, nil
}
