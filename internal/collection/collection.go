// Package collection implements building, verifying and extracting
// collection artifacts. An artifact is a gzip-compressed tar archive
// holding a collection's file tree together with two manifests at its
// root: MANIFEST.json with the collection metadata and FILES.json with
// a checksummed listing of every included path.
package collection

const (
	// MetadataFilename is the name of the build metadata file at the
	// collection root.
	MetadataFilename = "galaxy.yml"

	// ManifestFilename is the name of the collection manifest inside an
	// artifact.
	ManifestFilename = "MANIFEST.json"

	// FilesManifestFilename is the name of the files manifest inside an
	// artifact.
	FilesManifestFilename = "FILES.json"

	// ManifestFormat is the schema version tag written into both
	// manifests.
	ManifestFormat = 1

	// ChecksumType names the digest algorithm used for all content
	// checksums.
	ChecksumType = "sha256"
)
