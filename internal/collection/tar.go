package collection

import (
	"archive/tar"
	"io"
	"os"
	"path"

	"github.com/klauspost/compress/gzip"

	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/json"
)

// tarMember couples the reader positioned at a member's content with the
// file and gzip streams that back it.
type tarMember struct {
	io.Reader
	gz *gzip.Reader
	f  *os.File
}

func (m *tarMember) Close() error {
	err := m.gz.Close()
	if cerr := m.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// openTar opens the artifact at archivePath and returns the underlying
// file, the gzip stream and a tar reader over it.
func openTar(archivePath string) (*os.File, *gzip.Reader, *tar.Reader, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "Open")
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, nil, errors.Wrapf(err, "%v is not a gzip archive", archivePath)
	}

	return f, gz, tar.NewReader(gz), nil
}

// memberName normalizes a tar header name for comparison, stripping any
// leading "./".
func memberName(hdr *tar.Header) string {
	return path.Clean(hdr.Name)
}

// GetTarMember returns the header of the member called name together with a
// reader for its content. The caller must close the reader. A missing
// member yields a MemberNotFoundError.
func GetTarMember(archivePath, name string) (*tar.Header, io.ReadCloser, error) {
	f, gz, tr, err := openTar(archivePath)
	if err != nil {
		return nil, nil, err
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = gz.Close()
			_ = f.Close()
			return nil, nil, errors.Wrap(err, "Next")
		}

		if memberName(hdr) == name {
			return hdr, &tarMember{Reader: tr, gz: gz, f: f}, nil
		}
	}

	_ = gz.Close()
	_ = f.Close()
	return nil, nil, &MemberNotFoundError{Archive: archivePath, Member: name}
}

// GetTarFileHash returns the hex SHA-256 digest of the content of the
// member called name.
func GetTarFileHash(archivePath, name string) (string, error) {
	_, rd, err := GetTarMember(archivePath, name)
	if err != nil {
		return "", err
	}

	sum, err := HashReader(rd)
	if cerr := rd.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "Close")
	}
	return sum, err
}

// GetJSONMember decodes the member called name into v. A member that is not
// valid JSON yields a MalformedArchiveError.
func GetJSONMember(archivePath, name string, v interface{}) error {
	_, rd, err := GetTarMember(archivePath, name)
	if err != nil {
		return err
	}
	defer func() {
		_ = rd.Close()
	}()

	data, err := io.ReadAll(rd)
	if err != nil {
		return errors.Wrap(err, "ReadAll")
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &MalformedArchiveError{Archive: archivePath, Member: name, Err: err}
	}

	debug.Log("decoded %v from %v", name, archivePath)
	return nil
}

// ReadManifest returns the MANIFEST.json document of the artifact.
func ReadManifest(archivePath string) (*Manifest, error) {
	var manifest Manifest
	if err := GetJSONMember(archivePath, ManifestFilename, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ReadFilesManifest returns the FILES.json document of the artifact.
func ReadFilesManifest(archivePath string) (*FilesManifest, error) {
	var manifest FilesManifest
	if err := GetJSONMember(archivePath, FilesManifestFilename, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
