package collection

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/fs"
	"github.com/colpack/colpack/internal/hashing"
	"github.com/colpack/colpack/internal/json"
	"github.com/colpack/colpack/internal/ui"
)

// writeExtractedFile stages the content of a tar member in a temporary file
// next to its destination, verifies the digest when one is expected and
// renames the file into place. Member names resolving outside destRoot are
// refused.
func writeExtractedFile(destRoot, name string, mode int64, expected string, rd io.Reader) (err error) {
	dest := filepath.Join(destRoot, filepath.FromSlash(name))
	if !fs.HasPathPrefix(destRoot, dest) {
		return &PathTraversalError{Member: name, OutputDir: destRoot}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, "MkdirAll")
	}

	// the parent may contain a symlink planted by an earlier member or a
	// pre-existing one, resolve it before writing anything through it
	realParent, err := filepath.EvalSymlinks(filepath.Dir(dest))
	if err != nil {
		return errors.Wrap(err, "EvalSymlinks")
	}
	if !fs.HasPathPrefix(destRoot, realParent) {
		return &PathTraversalError{Member: name, OutputDir: destRoot}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-")
	if err != nil {
		return errors.Wrap(err, "CreateTemp")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	hw := hashing.NewWriter(tmp, sha256.New())
	if _, err = io.Copy(hw, rd); err != nil {
		return errors.Wrap(err, "Copy")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "Close")
	}

	if expected != "" {
		actual := hex.EncodeToString(hw.Sum(nil))
		if actual != expected {
			return &ChecksumMismatchError{Path: name, Expected: expected, Actual: actual}
		}
	}

	// only the owner execute bit of the archived mode survives extraction
	perm := os.FileMode(0644)
	if mode&0100 != 0 {
		perm = 0755
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrap(err, "Chmod")
	}

	return errors.Wrap(os.Rename(tmp.Name(), dest), "Rename")
}

// ExtractTarFile extracts the member called name from the artifact into
// destDir, preserving its relative path. A non-empty expectedHash is
// verified against the extracted content before the file is moved into
// place.
func ExtractTarFile(archivePath, name, destDir, expectedHash string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrap(err, "MkdirAll")
	}
	destRoot, err := fs.Canonical(destDir)
	if err != nil {
		return err
	}

	hdr, rd, err := GetTarMember(archivePath, name)
	if err != nil {
		return err
	}
	defer func() {
		_ = rd.Close()
	}()

	return writeExtractedFile(destRoot, name, hdr.Mode, expectedHash, rd)
}

// ExtractAll unpacks the whole artifact into destDir. The FILES.json digest
// is checked against MANIFEST.json first, then every extracted file is
// checked against its FILES.json digest, so a tampered artifact fails
// before any unverified content is left in place. Symlink members must
// resolve inside destDir.
func ExtractAll(archivePath, destDir string, printer ui.Printer) error {
	manifest, err := ReadManifest(archivePath)
	if err != nil {
		return err
	}

	expectedFiles := ""
	if manifest.FileManifestFile.ChksumSHA256 != nil {
		expectedFiles = *manifest.FileManifestFile.ChksumSHA256
	}

	_, rd, err := GetTarMember(archivePath, FilesManifestFilename)
	if err != nil {
		return err
	}
	filesData, err := io.ReadAll(rd)
	if cerr := rd.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "ReadAll")
	}

	if expectedFiles != "" && HashBytes(filesData) != expectedFiles {
		return &ChecksumMismatchError{
			Path:     FilesManifestFilename,
			Expected: expectedFiles,
			Actual:   HashBytes(filesData),
		}
	}

	var filesManifest FilesManifest
	if err := json.Unmarshal(filesData, &filesManifest); err != nil {
		return &MalformedArchiveError{Archive: archivePath, Member: FilesManifestFilename, Err: err}
	}

	checksums := make(map[string]string, len(filesManifest.Files))
	for _, entry := range filesManifest.Files {
		if entry.FType == FileTypeFile && entry.ChksumSHA256 != nil {
			checksums[entry.Name] = *entry.ChksumSHA256
		}
	}
	checksums[FilesManifestFilename] = expectedFiles

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrap(err, "MkdirAll")
	}
	destRoot, err := fs.Canonical(destDir)
	if err != nil {
		return err
	}

	f, gz, tr, err := openTar(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = gz.Close()
		_ = f.Close()
	}()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "Next")
		}

		name := memberName(hdr)
		if name == "." {
			continue
		}

		dest := filepath.Join(destRoot, filepath.FromSlash(name))
		if !fs.HasPathPrefix(destRoot, dest) {
			return &PathTraversalError{Member: name, OutputDir: destRoot}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return errors.Wrap(err, "MkdirAll")
			}

		case tar.TypeSymlink:
			// an absolute target always escapes; filepath.Join would
			// silently treat it as relative and defeat the prefix check
			if filepath.IsAbs(hdr.Linkname) {
				return &PathTraversalError{Member: name, OutputDir: destRoot}
			}
			target := filepath.Join(filepath.Dir(dest), filepath.FromSlash(hdr.Linkname))
			if !fs.HasPathPrefix(destRoot, target) {
				return &PathTraversalError{Member: name, OutputDir: destRoot}
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return errors.Wrap(err, "MkdirAll")
			}
			if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, "Remove")
			}
			if err := os.Symlink(hdr.Linkname, dest); err != nil {
				return errors.Wrap(err, "Symlink")
			}

		case tar.TypeReg:
			if err := writeExtractedFile(destRoot, name, hdr.Mode, checksums[name], tr); err != nil {
				return err
			}

		default:
			printer.E("Skipping tar entry '%s' with unsupported type %q", name, hdr.Typeflag)
			continue
		}

		printer.VV("Extracted '%s'", name)
	}

	return nil
}
