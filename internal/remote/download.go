package remote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/colpack/colpack/internal/collection"
	"github.com/colpack/colpack/internal/debug"
	"github.com/colpack/colpack/internal/errors"
	"github.com/colpack/colpack/internal/hashing"
	"github.com/colpack/colpack/internal/ui"
)

// downloadRetries bounds the retry attempts for transient failures.
const downloadRetries = 5

// DownloadFile fetches rawURL into destDir and returns the path of the
// downloaded file. The download is staged in a temporary file and renamed
// into place once complete; a non-empty expectedHash is verified against
// the downloaded content before the rename. Connection errors and server
// errors are retried with exponential backoff, client errors and digest
// mismatches are not.
func DownloadFile(ctx context.Context, client *http.Client, rawURL, destDir, expectedHash string, printer ui.Printer) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL %q", rawURL)
	}

	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" {
		return "", errors.Errorf("cannot derive a filename from URL %q", rawURL)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Wrap(err, "MkdirAll")
	}
	dest := filepath.Join(destDir, filename)

	printer.V("Downloading %s to %s", rawURL, destDir)

	op := func() error {
		return fetchOnce(ctx, client, rawURL, dest, expectedHash)
	}
	notify := func(err error, _ time.Duration) {
		printer.E("Retrying download of %s: %v", rawURL, err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}

	debug.Log("downloaded %v to %v", rawURL, dest)
	return dest, nil
}

// fetchOnce performs a single download attempt. Errors it returns wrapped
// in backoff.Permanent must not be retried.
func fetchOnce(ctx context.Context, client *http.Client, rawURL, dest, expectedHash string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "NewRequest"))
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "Do")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return errors.Errorf("server error %v returned for %v", resp.Status, rawURL)
	default:
		return backoff.Permanent(errors.Errorf("unexpected HTTP status %v returned for %v", resp.Status, rawURL))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-")
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "CreateTemp"))
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	hw := hashing.NewWriter(tmp, sha256.New())
	if _, err = io.Copy(hw, resp.Body); err != nil {
		return errors.Wrap(err, "Copy")
	}
	if err = tmp.Close(); err != nil {
		return backoff.Permanent(errors.Wrap(err, "Close"))
	}

	if expectedHash != "" {
		actual := hex.EncodeToString(hw.Sum(nil))
		if actual != expectedHash {
			err = backoff.Permanent(&collection.ChecksumMismatchError{
				Path:     rawURL,
				Expected: expectedHash,
				Actual:   actual,
			})
			return err
		}
	}

	if err = os.Rename(tmp.Name(), dest); err != nil {
		return backoff.Permanent(errors.Wrap(err, "Rename"))
	}
	return nil
}
