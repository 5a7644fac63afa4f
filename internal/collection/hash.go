package collection

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/hashing"
)

// HashBytes returns the hex SHA-256 digest of b.
func HashBytes(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}

// HashReader consumes r and returns the hex SHA-256 digest of the data read.
func HashReader(r io.Reader) (string, error) {
	hr := hashing.NewReader(r, sha256.New())
	if _, err := io.Copy(io.Discard, hr); err != nil {
		return "", errors.Wrap(err, "Copy")
	}
	return hex.EncodeToString(hr.Sum(nil)), nil
}

// HashFile returns the hex SHA-256 digest of the content of the file at
// path, following symlinks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "Open")
	}

	sum, err := HashReader(f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "Close")
	}
	return sum, err
}
