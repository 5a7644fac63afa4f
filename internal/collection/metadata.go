package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/ui"
	"gopkg.in/yaml.v3"
)

// Metadata is the declared identity and build configuration of a
// collection, read from galaxy.yml at the collection root. The identity
// (namespace, name, version) is immutable once loaded.
type Metadata struct {
	Namespace     string
	Name          string
	Version       string
	Authors       []string
	Readme        string
	Description   string
	License       []string
	LicenseFile   string
	Tags          []string
	Dependencies  map[string]string
	Repository    string
	Documentation string
	Homepage      string
	Issues        string
	BuildIgnore   []string
}

// mandatory metadata keys, kept sorted so error messages are deterministic
var mandatoryKeys = []string{"authors", "name", "namespace", "readme", "version"}

// LoadMetadata reads and validates srcDir/galaxy.yml. Unknown keys produce
// a single warning on printer listing them in sorted order; they never fail
// the load. A scalar value for authors, tags or license is accepted and
// normalized into a single-element list.
func LoadMetadata(srcDir string, printer ui.Printer) (*Metadata, error) {
	metaPath := filepath.Join(srcDir, MetadataFilename)

	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return nil, &ConfigurationError{
			Path: metaPath,
			Msg:  fmt.Sprintf("the collection galaxy.yml path '%s' does not exist", metaPath),
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ConfigurationError{
			Path: metaPath,
			Msg:  fmt.Sprintf("failed to parse the galaxy.yml at '%s' with the following error: %v", metaPath, err),
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 || root.Content[0].Kind != yaml.MappingNode {
		return nil, &ConfigurationError{
			Path: metaPath,
			Msg:  fmt.Sprintf("the collection galaxy.yml at '%s' is incorrectly formatted", metaPath),
		}
	}

	badValue := func(key string, err error) error {
		return &ConfigurationError{
			Path: metaPath,
			Msg:  fmt.Sprintf("the collection galaxy.yml at '%s' has an invalid value for key '%s': %v", metaPath, key, err),
		}
	}

	meta := &Metadata{}
	var unknown []string

	mapping := root.Content[0].Content
	for i := 0; i+1 < len(mapping); i += 2 {
		key := mapping[i].Value
		value := mapping[i+1]

		var err error
		switch key {
		case "namespace":
			err = value.Decode(&meta.Namespace)
		case "name":
			err = value.Decode(&meta.Name)
		case "version":
			err = value.Decode(&meta.Version)
		case "readme":
			err = value.Decode(&meta.Readme)
		case "description":
			err = value.Decode(&meta.Description)
		case "license_file":
			err = value.Decode(&meta.LicenseFile)
		case "repository":
			err = value.Decode(&meta.Repository)
		case "documentation":
			err = value.Decode(&meta.Documentation)
		case "homepage":
			err = value.Decode(&meta.Homepage)
		case "issues":
			err = value.Decode(&meta.Issues)
		case "authors":
			meta.Authors, err = stringOrList(value)
		case "tags":
			meta.Tags, err = stringOrList(value)
		case "license":
			meta.License, err = stringOrList(value)
		case "build_ignore":
			meta.BuildIgnore, err = stringOrList(value)
		case "dependencies":
			err = value.Decode(&meta.Dependencies)
		default:
			unknown = append(unknown, key)
		}
		if err != nil {
			return nil, badValue(key, err)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		printer.E("found unknown keys in collection galaxy.yml at '%s': %s",
			metaPath, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, key := range mandatoryKeys {
		switch key {
		case "namespace":
			if meta.Namespace == "" {
				missing = append(missing, key)
			}
		case "name":
			if meta.Name == "" {
				missing = append(missing, key)
			}
		case "version":
			if meta.Version == "" {
				missing = append(missing, key)
			}
		case "readme":
			if meta.Readme == "" {
				missing = append(missing, key)
			}
		case "authors":
			if len(meta.Authors) == 0 {
				missing = append(missing, key)
			}
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{
			Path: metaPath,
			Msg: fmt.Sprintf("the collection galaxy.yml at '%s' is missing the following mandatory keys: %s",
				metaPath, strings.Join(missing, ", ")),
		}
	}

	if meta.License == nil {
		meta.License = []string{}
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	if meta.Dependencies == nil {
		meta.Dependencies = map[string]string{}
	}

	debug.Log("loaded metadata for %s.%s version %s", meta.Namespace, meta.Name, meta.Version)
	return meta, nil
}

// stringOrList decodes a node that may be either a scalar or a sequence of
// scalars. A null node yields nil.
func stringOrList(node *yaml.Node) ([]string, error) {
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil, nil
	case node.Kind == yaml.SequenceNode:
		var list []string
		err := node.Decode(&list)
		return list, err
	default:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

// Info returns the manifest representation of the metadata.
func (m *Metadata) Info() CollectionInfo {
	return CollectionInfo{
		Namespace:     m.Namespace,
		Name:          m.Name,
		Version:       m.Version,
		Authors:       m.Authors,
		Readme:        m.Readme,
		Tags:          m.Tags,
		Description:   m.Description,
		License:       m.License,
		LicenseFile:   m.LicenseFile,
		Dependencies:  m.Dependencies,
		Repository:    m.Repository,
		Documentation: m.Documentation,
		Homepage:      m.Homepage,
		Issues:        m.Issues,
	}
}

// ArtifactFilename returns the output filename for an artifact built from
// this metadata: "{namespace}-{name}-{version}.tar.gz".
func (m *Metadata) ArtifactFilename() string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", m.Namespace, m.Name, m.Version)
}
