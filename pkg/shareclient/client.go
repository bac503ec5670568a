// Package shareclient provides the HTTP client for the Setu Sharing backend:
// share creation on the sender side, and status, password auth, directory
// listing, upload, download and archive retrieval on the receiver side.
//
// Share authentication is session-cookie bound, so every Client carries a
// cookie jar; the auth cookie set by a successful password check is sent
// automatically on all later requests for that share.
package shareclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"path"
	"strings"
	"time"

	"github.com/725aayush/setu-sharing/pkg/protocol"
	"github.com/725aayush/setu-sharing/pkg/retry"
)

// Client talks to one Setu Sharing server.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the API base (scheme + host + port), resolved once at
	// startup and injected here. No trailing slash.
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retryConfig: cfg.RetryConfig,
	}
}

// BaseURL returns the API base the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SuggestIP asks the server for a LAN address suitable for building share
// links.
func (c *Client) SuggestIP(ctx context.Context) (string, error) {
	var result protocol.SuggestIPResponse

	err := retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/suggest_ip", nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp)
		}

		return json.NewDecoder(resp.Body).Decode(&result)
	})

	return result.IP, err
}

// CreateShare publishes a directory as a password-protected share.
func (c *Client) CreateShare(ctx context.Context, req protocol.CreateShareRequest) (*protocol.CreateShareResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var result *protocol.CreateShareResponse

	err = retry.Do(ctx, c.retryConfig, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/share/create", bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode >= 500 {
				return retry.Retryable(statusError(resp))
			}
			// The create endpoint reports validation problems as
			// {"error": "..."}.
			var errResp protocol.ErrorResponse
			if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
				return &APIError{Status: resp.StatusCode, Message: errResp.Error}
			}
			return &APIError{Status: resp.StatusCode}
		}

		result = &protocol.CreateShareResponse{}
		return json.NewDecoder(resp.Body).Decode(result)
	})

	return result, err
}

// Status checks whether a share exists and whether this session is already
// authenticated for it. A 404 or 410 yields ErrShareNotFound.
func (c *Client) Status(ctx context.Context, token string) (*protocol.StatusResponse, error) {
	var result *protocol.StatusResponse

	err := retry.Do(ctx, c.retryConfig, func() error {
		url := c.baseURL + "/api/share/" + pathEscape(token) + "/status"
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return ErrShareNotFound
		case resp.StatusCode >= 500:
			return retry.Retryable(statusError(resp))
		default:
			return statusError(resp)
		}

		result = &protocol.StatusResponse{}
		return json.NewDecoder(resp.Body).Decode(result)
	})

	return result, err
}

// Authenticate submits the share password. On success the server binds this
// session to the share via a cookie held in the client's jar. A wrong
// password yields an *AuthError carrying the server's message.
func (c *Client) Authenticate(ctx context.Context, token, password string) error {
	body, err := json.Marshal(protocol.AuthRequest{Password: password})
	if err != nil {
		return err
	}

	return retry.Do(ctx, c.retryConfig, func() error {
		url := c.baseURL + "/api/share/" + pathEscape(token) + "/auth"
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized:
			// Both carry an {ok, message} body.
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return ErrShareNotFound
		case resp.StatusCode >= 500:
			return retry.Retryable(statusError(resp))
		default:
			return statusError(resp)
		}

		var authResp protocol.AuthResponse
		if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
			return fmt.Errorf("parse auth response: %w", err)
		}
		if !authResp.Ok {
			return &AuthError{Message: authResp.Message}
		}
		return nil
	})
}

// Info fetches share metadata (root directory, creation and expiry times).
// Requires an authenticated session.
func (c *Client) Info(ctx context.Context, token string) (*protocol.InfoResponse, error) {
	var result *protocol.InfoResponse

	err := retry.Do(ctx, c.retryConfig, func() error {
		url := c.baseURL + "/api/share/" + pathEscape(token) + "/info"
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			return ErrShareNotFound
		case resp.StatusCode >= 500:
			return retry.Retryable(statusError(resp))
		default:
			return statusError(resp)
		}

		result = &protocol.InfoResponse{}
		return json.NewDecoder(resp.Body).Decode(result)
	})

	return result, err
}

// List fetches the entries of one directory. relPath "" means the share
// root. The response's own path is authoritative: the server may normalize
// the requested path.
func (c *Client) List(ctx context.Context, token, relPath string) (*protocol.ListResponse, error) {
	return c.list(ctx, token, relPath, "")
}

// SearchRoot lists the share root filtered server-side by a name substring.
// Only the root listing supports the filter; deeper levels are filtered
// client-side by the view projection.
func (c *Client) SearchRoot(ctx context.Context, token, query string) (*protocol.ListResponse, error) {
	return c.list(ctx, token, "", query)
}

func (c *Client) list(ctx context.Context, token, relPath, query string) (*protocol.ListResponse, error) {
	var result *protocol.ListResponse

	err := retry.Do(ctx, c.retryConfig, func() error {
		url := c.baseURL + "/api/" + pathEscape(token) + "/list"
		if relPath != "" {
			url += "/" + escapeRelPath(relPath)
		}
		if query != "" {
			url += "?q=" + queryEscape(query)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode >= 500 {
				return retry.Retryable(statusError(resp))
			}
			return statusError(resp)
		}

		result = &protocol.ListResponse{}
		return json.NewDecoder(resp.Body).Decode(result)
	})

	return result, err
}

// Upload sends one file into the given directory of the share as a multipart
// form. relPath "" targets the share root. Uploads are never replayed: the
// body is a stream and the server write is not idempotent.
func (c *Client) Upload(ctx context.Context, token, relPath, filename string, content io.Reader) (*protocol.UploadResponse, error) {
	url := c.baseURL + "/api/" + pathEscape(token) + "/upload"
	if relPath != "" {
		url += "/" + escapeRelPath(relPath)
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", path.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, "POST", url, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var uploadResp protocol.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		// Response is not the expected acknowledgment shape.
		return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("upload failed (status %d)", resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusOK || !uploadResp.Ok {
		msg := uploadResp.Message
		if msg == "" {
			msg = fmt.Sprintf("upload failed (status %d)", resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return &uploadResp, nil
}

// Preview holds the result of a preview request: either streamed bytes for
// image/* and text/* content, or just name/mime metadata for anything else.
type Preview struct {
	Mime string
	Body io.ReadCloser         // nil when Info is set
	Info *protocol.PreviewInfo // nil when Body is set
}

// PreviewFile requests an inline preview of one file. The caller must close
// Body when it is non-nil.
func (c *Client) PreviewFile(ctx context.Context, token, relPath string) (*Preview, error) {
	url := c.baseURL + "/api/" + pathEscape(token) + "/preview/" + escapeRelPath(relPath)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preview request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, &APIError{Status: resp.StatusCode, Message: "file not found"}
		}
		return nil, statusError(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		defer resp.Body.Close()
		var info protocol.PreviewInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("parse preview response: %w", err)
		}
		return &Preview{Mime: info.Mime, Info: &info}, nil
	}

	return &Preview{Mime: mediaType, Body: resp.Body}, nil
}

// Fetch retrieves the bytes behind a download, archive or QR URL previously
// built for this client's server. The suggested filename is taken from the
// Content-Disposition header when present. The caller must close the reader.
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", statusError(resp)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	return resp.Body, filename, nil
}

// Revoke tears down a share on the server. Anyone holding the token may
// revoke it; the original backend does not gate this route.
func (c *Client) Revoke(ctx context.Context, token string) error {
	return retry.Do(ctx, c.retryConfig, func() error {
		url := c.baseURL + "/revoke/" + pathEscape(token)
		req, err := http.NewRequestWithContext(ctx, "POST", url, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode >= 500 {
				return retry.Retryable(statusError(resp))
			}
			return statusError(resp)
		}
		return nil
	})
}

func statusError(resp *http.Response) error {
	return &APIError{Status: resp.StatusCode}
}
