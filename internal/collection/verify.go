package collection

import (
	"os"
	"path/filepath"

	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/json"
	"github.com/colpack/colpack/internal/textfile"
	"github.com/colpack/colpack/internal/ui"
)

// ChecksumMismatch records one file of an installed collection whose
// content disagrees with the artifact it was installed from. Installed is
// empty when the file is missing; a file that exists but could not be read
// carries the read error in Err instead.
type ChecksumMismatch struct {
	Path      string
	Expected  string
	Installed string
	Err       error
}

// VerifyFileHash compares the file at relName below root with the expected
// digest and appends a record to mismatches when they disagree, the file is
// missing or it cannot be read. It never fails: verification continues past
// individual problems so the caller can report all of them at once.
func VerifyFileHash(root, relName, expected string, mismatches *[]ChecksumMismatch) {
	path := filepath.Join(root, filepath.FromSlash(relName))

	sum, err := HashFile(path)
	if errors.Is(err, os.ErrNotExist) {
		*mismatches = append(*mismatches, ChecksumMismatch{Path: relName, Expected: expected})
		return
	}
	if err != nil {
		*mismatches = append(*mismatches, ChecksumMismatch{Path: relName, Expected: expected, Err: err})
		return
	}
	if sum != expected {
		*mismatches = append(*mismatches, ChecksumMismatch{Path: relName, Expected: expected, Installed: sum})
	}
}

// VerifyCollection compares the collection installed at installedDir with
// the artifact at artifactPath. It checks the installed MANIFEST.json
// against the artifact's copy, the installed FILES.json against the digest
// recorded in the manifest, and every file listed in the installed
// FILES.json against its recorded digest.
//
// The returned mismatches describe modified or missing files; the error is
// non-nil only for operational failures such as an unreadable artifact.
func VerifyCollection(artifactPath, installedDir string, printer ui.Printer) ([]ChecksumMismatch, error) {
	manifest, err := ReadManifest(artifactPath)
	if err != nil {
		return nil, err
	}

	printer.V("Verifying the installed collection %s at '%s'", manifest.CollectionInfo.FQCN(), installedDir)

	var mismatches []ChecksumMismatch

	manifestHash, err := GetTarFileHash(artifactPath, ManifestFilename)
	if err != nil {
		return nil, err
	}
	VerifyFileHash(installedDir, ManifestFilename, manifestHash, &mismatches)

	filesHash := ""
	if manifest.FileManifestFile.ChksumSHA256 != nil {
		filesHash = *manifest.FileManifestFile.ChksumSHA256
	}
	VerifyFileHash(installedDir, FilesManifestFilename, filesHash, &mismatches)

	// the installed FILES.json is the authoritative list of what should be
	// on disk, even if it differs from the artifact's copy: the difference
	// is already reported above
	installedFilesPath := filepath.Join(installedDir, FilesManifestFilename)
	data, err := textfile.Read(installedFilesPath)
	if os.IsNotExist(err) {
		return mismatches, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Read")
	}

	var filesManifest FilesManifest
	if err := json.Unmarshal(data, &filesManifest); err != nil {
		return nil, errors.Wrapf(err, "malformed '%s' at '%s'", FilesManifestFilename, installedFilesPath)
	}

	for _, entry := range filesManifest.Files {
		if entry.FType != FileTypeFile || entry.ChksumSHA256 == nil {
			continue
		}
		printer.VV("Verifying '%s'", entry.Name)
		VerifyFileHash(installedDir, entry.Name, *entry.ChksumSHA256, &mismatches)
	}

	return mismatches, nil
}
