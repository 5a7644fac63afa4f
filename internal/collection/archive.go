package collection

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/fs"
	"github.com/colpack/colpack/internal/ui"
)

// BuildOptions bundles the inputs of Build.
type BuildOptions struct {
	// SrcDir is the collection source tree, holding galaxy.yml at its root.
	SrcDir string
	// OutputDir receives the artifact. Empty means SrcDir.
	OutputDir string
	// Force overwrites an existing artifact file.
	Force bool
	// IgnorePatterns are additional exclude patterns, applied on top of the
	// build_ignore list from galaxy.yml.
	IgnorePatterns []string
}

// Build packages the collection source tree at opts.SrcDir into a
// gzip-compressed tar artifact named {namespace}-{name}-{version}.tar.gz
// and returns the path of the created artifact. The artifact is staged in a
// temporary file and renamed into place, so a failed build never leaves a
// partial artifact behind.
func Build(opts BuildOptions, printer ui.Printer) (string, error) {
	srcDir, err := fs.Canonical(opts.SrcDir)
	if err != nil {
		return "", err
	}

	meta, err := LoadMetadata(srcDir, printer)
	if err != nil {
		return "", err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = srcDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", errors.Wrap(err, "MkdirAll")
	}

	artifactPath := filepath.Join(outputDir, meta.ArtifactFilename())
	if fi, err := os.Stat(artifactPath); err == nil {
		if fi.IsDir() {
			return "", &ArtifactExistsError{Path: artifactPath, IsDir: true}
		}
		if !opts.Force {
			return "", &ArtifactExistsError{Path: artifactPath}
		}
	}

	patterns := make([]string, 0, len(meta.BuildIgnore)+len(opts.IgnorePatterns))
	patterns = append(patterns, meta.BuildIgnore...)
	patterns = append(patterns, opts.IgnorePatterns...)

	filesManifest, err := BuildFilesManifest(srcDir, meta.Namespace, meta.Name, patterns, printer)
	if err != nil {
		return "", err
	}

	filesData, err := filesManifest.Serialize()
	if err != nil {
		return "", err
	}

	manifestData, err := NewManifest(meta.Info(), HashBytes(filesData)).Serialize()
	if err != nil {
		return "", err
	}

	if err := writeArtifact(artifactPath, srcDir, manifestData, filesData, filesManifest); err != nil {
		return "", err
	}

	printer.P("Created collection for %s.%s at %s", meta.Namespace, meta.Name, artifactPath)
	return artifactPath, nil
}

// writeArtifact streams the manifests and the listed tree entries into a
// temporary tar.gz next to artifactPath, then renames it into place.
func writeArtifact(artifactPath, srcDir string, manifestData, filesData []byte, filesManifest *FilesManifest) (err error) {
	f, err := os.CreateTemp(filepath.Dir(artifactPath), "."+filepath.Base(artifactPath)+"-")
	if err != nil {
		return errors.Wrap(err, "CreateTemp")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	now := time.Now()

	writeDoc := func(name string, data []byte) error {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(data)),
			ModTime:  now,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrap(err, "WriteHeader")
		}
		_, err := tw.Write(data)
		return errors.Wrap(err, "Write")
	}

	if err = writeDoc(ManifestFilename, manifestData); err != nil {
		return err
	}
	if err = writeDoc(FilesManifestFilename, filesData); err != nil {
		return err
	}

	for _, entry := range filesManifest.Files {
		if entry.Name == "." {
			continue
		}
		if err = addTreeEntry(tw, srcDir, entry, now); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return errors.Wrap(err, "tar Close")
	}
	if err = gz.Close(); err != nil {
		return errors.Wrap(err, "gzip Close")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "Sync")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "Close")
	}
	if err = os.Chmod(f.Name(), 0644); err != nil {
		return errors.Wrap(err, "Chmod")
	}

	debug.Log("renaming %v to %v", f.Name(), artifactPath)
	return errors.Wrap(os.Rename(f.Name(), artifactPath), "Rename")
}

// addTreeEntry writes the tar entry for one files-manifest entry. Symlinks
// inside the tree are preserved as symlink entries with a relative target.
func addTreeEntry(tw *tar.Writer, srcDir string, entry FileEntry, now time.Time) error {
	abs := filepath.Join(srcDir, filepath.FromSlash(entry.Name))

	fi, err := os.Lstat(abs)
	if err != nil {
		return errors.Wrap(err, "Lstat")
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		real, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return errors.Wrap(err, "EvalSymlinks")
		}
		linkname, err := filepath.Rel(filepath.Dir(abs), real)
		if err != nil {
			return errors.Wrap(err, "Rel")
		}

		hdr := &tar.Header{
			Name:     entry.Name,
			Linkname: filepath.ToSlash(linkname),
			Mode:     0644,
			ModTime:  now,
			Typeflag: tar.TypeSymlink,
		}
		return errors.Wrap(tw.WriteHeader(hdr), "WriteHeader")
	}

	if entry.FType == FileTypeDir {
		hdr := &tar.Header{
			Name:     entry.Name + "/",
			Mode:     0755,
			ModTime:  now,
			Typeflag: tar.TypeDir,
		}
		return errors.Wrap(tw.WriteHeader(hdr), "WriteHeader")
	}

	src, err := os.Open(abs)
	if err != nil {
		return errors.Wrap(err, "Open")
	}
	defer func() {
		_ = src.Close()
	}()

	mode := int64(0644)
	if fi.Mode()&0100 != 0 {
		mode = 0755
	}

	hdr := &tar.Header{
		Name:     entry.Name,
		Mode:     mode,
		Size:     fi.Size(),
		ModTime:  now,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, "WriteHeader")
	}
	_, err = io.Copy(tw, src)
	return errors.Wrap(err, "Copy")
}
