package collection

import (
	"archive/tar"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/colpack/colpack/internal/errors"
	rtest "github.com/colpack/colpack/internal/test"
	"github.com/colpack/colpack/internal/ui"
)

func TestExtractAllRoundTrip(t *testing.T) {
	artifactPath, srcDir := buildTestArtifact(t)
	destDir := rtest.TempDir(t)

	rtest.OK(t, ExtractAll(artifactPath, destDir, &ui.NoopPrinter{}))

	for _, name := range []string{ManifestFilename, FilesManifestFilename} {
		_, err := os.Stat(filepath.Join(destDir, name))
		rtest.OK(t, err)
	}

	for _, name := range []string{"README.md", "plugins/modules/ping.py", "roles/web/tasks/main.yml"} {
		want, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(name)))
		rtest.OK(t, err)
		got, err := os.ReadFile(filepath.Join(destDir, filepath.FromSlash(name)))
		rtest.OK(t, err)
		rtest.Equals(t, string(want), string(got))
	}
}

func TestExtractAllExecutableMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not available on windows")
	}

	dir := writeTestCollection(t)
	script := rtest.WriteFile(t, dir, "bin/helper.sh", "#!/bin/sh\n")
	rtest.OK(t, os.Chmod(script, 0755))

	out := rtest.TempDir(t)
	artifactPath, err := Build(BuildOptions{SrcDir: dir, OutputDir: out}, &ui.NoopPrinter{})
	rtest.OK(t, err)

	destDir := rtest.TempDir(t)
	rtest.OK(t, ExtractAll(artifactPath, destDir, &ui.NoopPrinter{}))

	fi, err := os.Stat(filepath.Join(destDir, "bin", "helper.sh"))
	rtest.OK(t, err)
	rtest.Equals(t, os.FileMode(0755), fi.Mode().Perm())

	fi, err = os.Stat(filepath.Join(destDir, "README.md"))
	rtest.OK(t, err)
	rtest.Equals(t, os.FileMode(0644), fi.Mode().Perm())
}

func TestExtractAllPathTraversal(t *testing.T) {
	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "evil.tar.gz")

	filesManifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "evil", Version: "1.0.0"}, HashBytes(filesData)).Serialize()
	rtest.OK(t, err)

	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
		{name: "../escape.sh", data: "#!/bin/sh\n"},
	})

	destDir := rtest.TempDir(t)
	err = ExtractAll(archivePath, destDir, &ui.NoopPrinter{})
	var traversalErr *PathTraversalError
	rtest.Assert(t, errors.As(err, &traversalErr), "expected a PathTraversalError, got %v", err)
	rtest.Assert(t, strings.Contains(err.Error(), "placed outside the collection directory"),
		"unexpected error message %q", err.Error())

	_, statErr := os.Stat(filepath.Join(filepath.Dir(destDir), "escape.sh"))
	rtest.Assert(t, os.IsNotExist(statErr), "traversal file was created")
}

func TestExtractAllSymlinkTraversal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not available on windows")
	}

	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "evil.tar.gz")

	filesManifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "evil", Version: "1.0.0"}, HashBytes(filesData)).Serialize()
	rtest.OK(t, err)

	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
		{name: "link", typ: tar.TypeSymlink, link: "../../outside"},
	})

	destDir := rtest.TempDir(t)
	err = ExtractAll(archivePath, destDir, &ui.NoopPrinter{})
	var traversalErr *PathTraversalError
	rtest.Assert(t, errors.As(err, &traversalErr), "expected a PathTraversalError, got %v", err)
}

func TestExtractAllAbsoluteSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not available on windows")
	}

	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "evil.tar.gz")
	outside := rtest.TempDir(t)

	filesManifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "evil", Version: "1.0.0"}, HashBytes(filesData)).Serialize()
	rtest.OK(t, err)

	// an absolute link target followed by a member placed through the link
	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
		{name: "link", typ: tar.TypeSymlink, link: outside},
		{name: "link/pwned.txt", data: "owned"},
	})

	destDir := rtest.TempDir(t)
	err = ExtractAll(archivePath, destDir, &ui.NoopPrinter{})
	var traversalErr *PathTraversalError
	rtest.Assert(t, errors.As(err, &traversalErr), "expected a PathTraversalError, got %v", err)

	_, statErr := os.Lstat(filepath.Join(destDir, "link"))
	rtest.Assert(t, os.IsNotExist(statErr), "absolute symlink was created")
	_, statErr = os.Stat(filepath.Join(outside, "pwned.txt"))
	rtest.Assert(t, os.IsNotExist(statErr), "file escaped the extraction root")
}

func TestExtractAllSymlinkedParent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not available on windows")
	}

	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "evil.tar.gz")

	filesManifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "evil", Version: "1.0.0"}, HashBytes(filesData)).Serialize()
	rtest.OK(t, err)

	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
		{name: "sub/pwned.txt", data: "owned"},
	})

	// the destination already contains a symlinked directory pointing
	// outside, writing through it must be refused
	destDir := rtest.TempDir(t)
	outside := rtest.TempDir(t)
	rtest.OK(t, os.Symlink(outside, filepath.Join(destDir, "sub")))

	err = ExtractAll(archivePath, destDir, &ui.NoopPrinter{})
	var traversalErr *PathTraversalError
	rtest.Assert(t, errors.As(err, &traversalErr), "expected a PathTraversalError, got %v", err)

	_, statErr := os.Stat(filepath.Join(outside, "pwned.txt"))
	rtest.Assert(t, os.IsNotExist(statErr), "file escaped the extraction root")
}

func TestExtractAllChecksumMismatch(t *testing.T) {
	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "tampered.tar.gz")

	filesManifest := &FilesManifest{
		Files: []FileEntry{
			NewFileEntry(".", FileTypeDir, ""),
			NewFileEntry("data.txt", FileTypeFile, strings.Repeat("0", 64)),
		},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "tampered", Version: "1.0.0"}, HashBytes(filesData)).Serialize()
	rtest.OK(t, err)

	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
		{name: "data.txt", data: "tampered content"},
	})

	destDir := rtest.TempDir(t)
	err = ExtractAll(archivePath, destDir, &ui.NoopPrinter{})
	var checksumErr *ChecksumMismatchError
	rtest.Assert(t, errors.As(err, &checksumErr), "expected a ChecksumMismatchError, got %v", err)
	rtest.Equals(t, "data.txt", checksumErr.Path)

	// the tampered file must not be left in place
	_, statErr := os.Stat(filepath.Join(destDir, "data.txt"))
	rtest.Assert(t, os.IsNotExist(statErr), "tampered file was created")
}

func TestExtractAllTamperedFilesManifest(t *testing.T) {
	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "tampered.tar.gz")

	filesManifest := &FilesManifest{
		Files:  []FileEntry{NewFileEntry(".", FileTypeDir, "")},
		Format: ManifestFormat,
	}
	filesData, err := filesManifest.Serialize()
	rtest.OK(t, err)
	manifestData, err := NewManifest(CollectionInfo{Namespace: "testns", Name: "tampered", Version: "1.0.0"}, strings.Repeat("0", 64)).Serialize()
	rtest.OK(t, err)

	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: string(manifestData)},
		{name: FilesManifestFilename, data: string(filesData)},
	})

	err = ExtractAll(archivePath, rtest.TempDir(t), &ui.NoopPrinter{})
	var checksumErr *ChecksumMismatchError
	rtest.Assert(t, errors.As(err, &checksumErr), "expected a ChecksumMismatchError, got %v", err)
	rtest.Equals(t, FilesManifestFilename, checksumErr.Path)
}

func TestExtractTarFile(t *testing.T) {
	artifactPath, srcDir := buildTestArtifact(t)
	destDir := rtest.TempDir(t)

	rtest.OK(t, ExtractTarFile(artifactPath, "plugins/modules/ping.py", destDir, ""))

	want, err := os.ReadFile(filepath.Join(srcDir, "plugins", "modules", "ping.py"))
	rtest.OK(t, err)
	got, err := os.ReadFile(filepath.Join(destDir, "plugins", "modules", "ping.py"))
	rtest.OK(t, err)
	rtest.Equals(t, string(want), string(got))

	// a wrong expected digest fails the extraction
	err = ExtractTarFile(artifactPath, "README.md", destDir, strings.Repeat("0", 64))
	var checksumErr *ChecksumMismatchError
	rtest.Assert(t, errors.As(err, &checksumErr), "expected a ChecksumMismatchError, got %v", err)
}

func TestExtractArtifactSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not available on windows")
	}

	dir := writeTestCollection(t)
	rtest.OK(t, os.Symlink("README.md", filepath.Join(dir, "link.md")))

	out := rtest.TempDir(t)
	artifactPath, err := Build(BuildOptions{SrcDir: dir, OutputDir: out}, &ui.NoopPrinter{})
	rtest.OK(t, err)

	destDir := rtest.TempDir(t)
	rtest.OK(t, ExtractAll(artifactPath, destDir, &ui.NoopPrinter{}))

	fi, err := os.Lstat(filepath.Join(destDir, "link.md"))
	rtest.OK(t, err)
	rtest.Assert(t, fi.Mode()&os.ModeSymlink != 0, "link.md is not a symlink")

	target, err := os.Readlink(filepath.Join(destDir, "link.md"))
	rtest.OK(t, err)
	rtest.Equals(t, "README.md", target)
}
