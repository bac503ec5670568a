package shareclient

import (
	"net/url"
	"strings"
)

// DownloadURL builds the single-file download URL for an entry. dir is the
// current directory ("" = share root) and name the entry name within it.
// The URL is meant to be handed to the host environment's native download
// machinery (or to Fetch); nothing here performs I/O.
func (c *Client) DownloadURL(token, dir, name string) string {
	return c.baseURL + "/api/" + pathEscape(token) + "/download/" + escapeRelPath(joinRelPath(dir, name))
}

// ArchiveURL builds the URL that returns the given directory ("" = share
// root) as a single zip archive.
func (c *Client) ArchiveURL(token, dir string) string {
	u := c.baseURL + "/api/" + pathEscape(token) + "/archive"
	if dir != "" {
		u += "/" + escapeRelPath(dir)
	}
	return u
}

// QRURL resolves the qr_link returned by share creation against the API
// base. The link already carries the encoded share URL as a query parameter.
func (c *Client) QRURL(qrLink string) string {
	if strings.HasPrefix(qrLink, "http://") || strings.HasPrefix(qrLink, "https://") {
		return qrLink
	}
	return c.baseURL + qrLink
}

// joinRelPath joins a directory path and an entry name, omitting the
// separator when the directory is the root.
func joinRelPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// escapeRelPath escapes each segment of a slash-separated relative path,
// preserving the separators themselves.
func escapeRelPath(relPath string) string {
	segments := strings.Split(relPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}

func queryEscape(s string) string {
	return url.QueryEscape(s)
}
