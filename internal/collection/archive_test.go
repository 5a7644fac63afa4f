package collection

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/colpack/colpack/internal/errors"
	rtest "github.com/colpack/colpack/internal/test"
	"github.com/colpack/colpack/internal/ui"
)

// rawEntry describes one member of a hand-crafted test archive.
type rawEntry struct {
	name string
	data string
	typ  byte
	link string
	mode int64
}

// writeRawArchive writes a tar.gz with exactly the given members, without
// any of the invariants Build enforces.
func writeRawArchive(t testing.TB, path string, entries []rawEntry) {
	f, err := os.Create(path)
	rtest.OK(t, err)

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, entry := range entries {
		typ := entry.typ
		if typ == 0 {
			typ = tar.TypeReg
		}
		mode := entry.mode
		if mode == 0 {
			mode = 0644
		}

		hdr := &tar.Header{
			Name:     entry.name,
			Linkname: entry.link,
			Mode:     mode,
			Size:     int64(len(entry.data)),
			ModTime:  time.Now(),
			Typeflag: typ,
		}
		rtest.OK(t, tw.WriteHeader(hdr))
		if typ == tar.TypeReg {
			_, err := io.WriteString(tw, entry.data)
			rtest.OK(t, err)
		}
	}

	rtest.OK(t, tw.Close())
	rtest.OK(t, gz.Close())
	rtest.OK(t, f.Close())
}

// buildTestArtifact builds an artifact from a fresh test collection and
// returns its path together with the source directory.
func buildTestArtifact(t testing.TB) (string, string) {
	dir := writeTestCollection(t)
	out := rtest.TempDir(t)

	artifactPath, err := Build(BuildOptions{SrcDir: dir, OutputDir: out}, &ui.NoopPrinter{})
	rtest.OK(t, err)
	return artifactPath, dir
}

func TestBuildRoundTrip(t *testing.T) {
	artifactPath, _ := buildTestArtifact(t)
	rtest.Equals(t, "testns-testcoll-1.0.0.tar.gz", filepath.Base(artifactPath))

	manifest, err := ReadManifest(artifactPath)
	rtest.OK(t, err)
	rtest.Equals(t, "testns.testcoll", manifest.CollectionInfo.FQCN())
	rtest.Equals(t, "1.0.0", manifest.CollectionInfo.Version)
	rtest.Equals(t, ManifestFormat, manifest.Format)

	filesManifest, err := ReadFilesManifest(artifactPath)
	rtest.OK(t, err)
	rtest.Assert(t, len(filesManifest.Files) > 1, "files manifest is empty")
	rtest.Equals(t, ".", filesManifest.Files[0].Name)

	// the digest recorded in MANIFEST.json covers the FILES.json member
	filesHash, err := GetTarFileHash(artifactPath, FilesManifestFilename)
	rtest.OK(t, err)
	rtest.Equals(t, filesHash, *manifest.FileManifestFile.ChksumSHA256)

	// every file member's content matches its recorded digest
	for _, entry := range filesManifest.Files {
		if entry.FType != FileTypeFile {
			continue
		}
		sum, err := GetTarFileHash(artifactPath, entry.Name)
		rtest.OK(t, err)
		rtest.Equals(t, *entry.ChksumSHA256, sum)
	}
}

func TestBuildReproducibleManifests(t *testing.T) {
	dir := writeTestCollection(t)
	printer := &ui.NoopPrinter{}

	out1, out2 := rtest.TempDir(t), rtest.TempDir(t)
	path1, err := Build(BuildOptions{SrcDir: dir, OutputDir: out1}, printer)
	rtest.OK(t, err)
	path2, err := Build(BuildOptions{SrcDir: dir, OutputDir: out2}, printer)
	rtest.OK(t, err)

	hash1, err := GetTarFileHash(path1, FilesManifestFilename)
	rtest.OK(t, err)
	hash2, err := GetTarFileHash(path2, FilesManifestFilename)
	rtest.OK(t, err)
	rtest.Equals(t, hash1, hash2)
}

func TestBuildArtifactExists(t *testing.T) {
	dir := writeTestCollection(t)
	out := rtest.TempDir(t)
	printer := &ui.NoopPrinter{}

	artifactPath, err := Build(BuildOptions{SrcDir: dir, OutputDir: out}, printer)
	rtest.OK(t, err)

	_, err = Build(BuildOptions{SrcDir: dir, OutputDir: out}, printer)
	var existsErr *ArtifactExistsError
	rtest.Assert(t, errors.As(err, &existsErr), "expected an ArtifactExistsError, got %v", err)
	rtest.Assert(t, !existsErr.IsDir, "unexpected IsDir")
	rtest.Assert(t, strings.Contains(err.Error(), "--force"), "unexpected error message %q", err.Error())

	_, err = Build(BuildOptions{SrcDir: dir, OutputDir: out, Force: true}, printer)
	rtest.OK(t, err)

	// a directory at the artifact path always aborts
	rtest.OK(t, os.Remove(artifactPath))
	rtest.OK(t, os.Mkdir(artifactPath, 0755))
	_, err = Build(BuildOptions{SrcDir: dir, OutputDir: out, Force: true}, printer)
	rtest.Assert(t, errors.As(err, &existsErr), "expected an ArtifactExistsError, got %v", err)
	rtest.Assert(t, existsErr.IsDir, "expected IsDir")
}

func TestGetTarMemberNotFound(t *testing.T) {
	artifactPath, _ := buildTestArtifact(t)

	_, _, err := GetTarMember(artifactPath, "no/such/member")
	var notFoundErr *MemberNotFoundError
	rtest.Assert(t, errors.As(err, &notFoundErr), "expected a MemberNotFoundError, got %v", err)
	rtest.Equals(t, "no/such/member", notFoundErr.Member)
}

func TestGetJSONMemberMalformed(t *testing.T) {
	dir := rtest.TempDir(t)
	archivePath := filepath.Join(dir, "broken.tar.gz")
	writeRawArchive(t, archivePath, []rawEntry{
		{name: ManifestFilename, data: "not json"},
	})

	_, err := ReadManifest(archivePath)
	var malformedErr *MalformedArchiveError
	rtest.Assert(t, errors.As(err, &malformedErr), "expected a MalformedArchiveError, got %v", err)
	rtest.Equals(t, ManifestFilename, malformedErr.Member)
}

func TestOpenTarNotGzip(t *testing.T) {
	dir := rtest.TempDir(t)
	path := rtest.WriteFile(t, dir, "plain.tar.gz", "plain text")

	_, err := ReadManifest(path)
	rtest.Assert(t, err != nil, "expected an error for a non-gzip file")
	rtest.Assert(t, strings.Contains(err.Error(), "not a gzip archive"),
		"unexpected error message %q", err.Error())
}
