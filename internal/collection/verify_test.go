package collection

import (
	"os"
	"path/filepath"
	"testing"

	rtest "github.com/colpack/colpack/internal/test"
	"github.com/colpack/colpack/internal/ui"
)

// installTestArtifact builds an artifact and extracts it into a fresh
// directory, returning the artifact path and the installed directory.
func installTestArtifact(t testing.TB) (string, string) {
	artifactPath, _ := buildTestArtifact(t)
	installedDir := rtest.TempDir(t)
	rtest.OK(t, ExtractAll(artifactPath, installedDir, &ui.NoopPrinter{}))
	return artifactPath, installedDir
}

func TestVerifyFileHash(t *testing.T) {
	dir := rtest.TempDir(t)
	rtest.WriteFile(t, dir, "a.txt", "content")
	sum := HashBytes([]byte("content"))

	var mismatches []ChecksumMismatch
	VerifyFileHash(dir, "a.txt", sum, &mismatches)
	rtest.Equals(t, 0, len(mismatches))

	VerifyFileHash(dir, "a.txt", "deadbeef", &mismatches)
	rtest.Equals(t, 1, len(mismatches))
	rtest.Equals(t, ChecksumMismatch{Path: "a.txt", Expected: "deadbeef", Installed: sum}, mismatches[0])

	VerifyFileHash(dir, "missing.txt", sum, &mismatches)
	rtest.Equals(t, 2, len(mismatches))
	rtest.Equals(t, ChecksumMismatch{Path: "missing.txt", Expected: sum}, mismatches[1])
	rtest.Assert(t, mismatches[1].Err == nil, "a missing file must be recorded as absent, not unreadable")

	// a directory where a file is expected exists but cannot be hashed
	rtest.OK(t, os.Mkdir(filepath.Join(dir, "b.txt"), 0755))
	VerifyFileHash(dir, "b.txt", sum, &mismatches)
	rtest.Equals(t, 3, len(mismatches))
	rtest.Equals(t, "b.txt", mismatches[2].Path)
	rtest.Equals(t, "", mismatches[2].Installed)
	rtest.Assert(t, mismatches[2].Err != nil, "an unreadable file must carry the read error")
}

func TestVerifyCollection(t *testing.T) {
	artifactPath, installedDir := installTestArtifact(t)

	mismatches, err := VerifyCollection(artifactPath, installedDir, &ui.NoopPrinter{})
	rtest.OK(t, err)
	rtest.Equals(t, 0, len(mismatches))
}

func TestVerifyCollectionModifiedFile(t *testing.T) {
	artifactPath, installedDir := installTestArtifact(t)
	rtest.WriteFile(t, installedDir, "README.md", "modified content\n")

	mismatches, err := VerifyCollection(artifactPath, installedDir, &ui.NoopPrinter{})
	rtest.OK(t, err)

	rtest.Equals(t, 1, len(mismatches))
	rtest.Equals(t, "README.md", mismatches[0].Path)
	rtest.Equals(t, HashBytes([]byte("modified content\n")), mismatches[0].Installed)
}

func TestVerifyCollectionMissingFile(t *testing.T) {
	artifactPath, installedDir := installTestArtifact(t)
	rtest.OK(t, os.Remove(filepath.Join(installedDir, "plugins", "modules", "ping.py")))

	mismatches, err := VerifyCollection(artifactPath, installedDir, &ui.NoopPrinter{})
	rtest.OK(t, err)

	rtest.Equals(t, 1, len(mismatches))
	rtest.Equals(t, "plugins/modules/ping.py", mismatches[0].Path)
	rtest.Equals(t, "", mismatches[0].Installed)
}

func TestVerifyCollectionModifiedManifest(t *testing.T) {
	artifactPath, installedDir := installTestArtifact(t)

	manifestPath := filepath.Join(installedDir, ManifestFilename)
	data, err := os.ReadFile(manifestPath)
	rtest.OK(t, err)
	rtest.OK(t, os.WriteFile(manifestPath, append(data, '\n'), 0644))

	mismatches, err := VerifyCollection(artifactPath, installedDir, &ui.NoopPrinter{})
	rtest.OK(t, err)

	rtest.Equals(t, 1, len(mismatches))
	rtest.Equals(t, ManifestFilename, mismatches[0].Path)
}

func TestVerifyCollectionMissingManifests(t *testing.T) {
	artifactPath, installedDir := installTestArtifact(t)
	rtest.OK(t, os.Remove(filepath.Join(installedDir, ManifestFilename)))
	rtest.OK(t, os.Remove(filepath.Join(installedDir, FilesManifestFilename)))

	mismatches, err := VerifyCollection(artifactPath, installedDir, &ui.NoopPrinter{})
	rtest.OK(t, err)

	// both manifests are reported missing, per-file checks are impossible
	rtest.Equals(t, 2, len(mismatches))
	rtest.Equals(t, ManifestFilename, mismatches[0].Path)
	rtest.Equals(t, FilesManifestFilename, mismatches[1].Path)
	rtest.Equals(t, "", mismatches[0].Installed)
}
