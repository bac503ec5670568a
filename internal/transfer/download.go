package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fetcher retrieves the bytes behind a prepared download or archive URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, string, error)
}

// SaveURL streams the content behind url into destDir. The filename comes
// from the server's Content-Disposition when present, otherwise fallback is
// used. Returns the path written and the byte count.
//
// In a browser the equivalent action is a plain top-level navigation — the
// host handles the byte stream. A terminal has no such machinery, so this
// helper is the CLI's stand-in; the URL builders themselves stay pure.
func SaveURL(ctx context.Context, fetcher Fetcher, url, destDir, fallback string) (string, int64, error) {
	body, filename, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	if filename == "" {
		filename = fallback
	}
	if filename == "" {
		return "", 0, fmt.Errorf("no filename for download")
	}
	// Never let a server-supplied name escape the destination directory.
	filename = filepath.Base(filename)

	dest := filepath.Join(destDir, filename)
	f, err := os.Create(dest)
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return "", 0, fmt.Errorf("save %s: %w", dest, err)
	}

	return dest, n, nil
}
