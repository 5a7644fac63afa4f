package collection

import (
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/json"
)

// FileType classifies a files-manifest entry. Symlinks are recorded with
// the type of their target; the archive itself preserves them as symlink
// tar entries.
type FileType string

const (
	FileTypeFile FileType = "file"
	FileTypeDir  FileType = "dir"
)

// FileEntry describes one path included in a collection artifact. The
// checksum fields are null for directories.
type FileEntry struct {
	Name         string   `json:"name"`
	FType        FileType `json:"ftype"`
	ChksumType   *string  `json:"chksum_type"`
	ChksumSHA256 *string  `json:"chksum_sha256"`
	Format       int      `json:"format"`
}

// NewFileEntry returns an entry for name. An empty chksum leaves the
// checksum fields null.
func NewFileEntry(name string, ftype FileType, chksum string) FileEntry {
	e := FileEntry{
		Name:   name,
		FType:  ftype,
		Format: ManifestFormat,
	}
	if chksum != "" {
		ctype := ChecksumType
		sum := chksum
		e.ChksumType = &ctype
		e.ChksumSHA256 = &sum
	}
	return e
}

// FilesManifest is the FILES.json document: an ordered listing of every
// file, directory and symlink of a collection.
type FilesManifest struct {
	Files  []FileEntry `json:"files"`
	Format int         `json:"format"`
}

// Serialize returns the canonical JSON encoding of the files manifest. The
// encoding is stable for identical input so the digest recorded in the
// collection manifest is reproducible.
func (m *FilesManifest) Serialize() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	return b, errors.Wrap(err, "MarshalIndent")
}

// CollectionInfo mirrors the galaxy.yml fields recorded in MANIFEST.json.
type CollectionInfo struct {
	Namespace     string            `json:"namespace"`
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Authors       []string          `json:"authors"`
	Readme        string            `json:"readme"`
	Tags          []string          `json:"tags"`
	Description   string            `json:"description"`
	License       []string          `json:"license"`
	LicenseFile   string            `json:"license_file"`
	Dependencies  map[string]string `json:"dependencies"`
	Repository    string            `json:"repository"`
	Documentation string            `json:"documentation"`
	Homepage      string            `json:"homepage"`
	Issues        string            `json:"issues"`
}

// FQCN returns the fully qualified collection name.
func (ci CollectionInfo) FQCN() string {
	return ci.Namespace + "." + ci.Name
}

// Manifest is the MANIFEST.json document: the collection metadata plus a
// checksummed reference to the files manifest, which makes the whole
// artifact tamper evident.
type Manifest struct {
	CollectionInfo   CollectionInfo `json:"collection_info"`
	FileManifestFile FileEntry      `json:"file_manifest_file"`
	Format           int            `json:"format"`
}

// NewManifest combines the collection metadata with the digest of the
// serialized files manifest.
func NewManifest(info CollectionInfo, filesManifestChksum string) *Manifest {
	return &Manifest{
		CollectionInfo:   info,
		FileManifestFile: NewFileEntry(FilesManifestFilename, FileTypeFile, filesManifestChksum),
		Format:           ManifestFormat,
	}
}

// Serialize returns the canonical JSON encoding of the manifest.
func (m *Manifest) Serialize() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	return b, errors.Wrap(err, "MarshalIndent")
}
