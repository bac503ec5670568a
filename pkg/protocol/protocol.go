// Package protocol defines the API request/response types for the Setu
// Sharing backend.
package protocol

// SuggestIPResponse is returned by GET /api/suggest_ip.
type SuggestIPResponse struct {
	IP string `json:"ip"`
}

// CreateShareRequest is the body for POST /api/share/create.
//
// ExpiryMinutes is a pointer because the server distinguishes three cases:
// absent (server default expiry), 0 or negative (no expiry), and a positive
// number of minutes.
type CreateShareRequest struct {
	DirPath       string `json:"dirpath"`
	Password      string `json:"password"`
	IP            string `json:"ip"`
	ExpiryMinutes *int   `json:"expiry_minutes,omitempty"`
}

// CreateShareResponse is returned by POST /api/share/create.
type CreateShareResponse struct {
	Token     string `json:"token"`
	ShareLink string `json:"share_link"`
	QRLink    string `json:"qr_link"`
	ExpiresAt string `json:"expires_at,omitempty"` // ISO 8601 UTC, empty = no expiry
}

// StatusResponse is returned by GET /api/share/{token}/status.
type StatusResponse struct {
	Token   string `json:"token"`
	Authed  bool   `json:"authed"`
	Created string `json:"created,omitempty"`
	Expires string `json:"expires,omitempty"`
}

// AuthRequest is the body for POST /api/share/{token}/auth.
type AuthRequest struct {
	Password string `json:"password"`
}

// AuthResponse is returned by POST /api/share/{token}/auth. Message carries
// the server's human-readable reason when Ok is false.
type AuthResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// InfoResponse is returned by GET /api/share/{token}/info.
type InfoResponse struct {
	Token   string `json:"token"`
	Root    string `json:"root"`
	Created string `json:"created,omitempty"`
	Expires string `json:"expires,omitempty"`
}

// FileEntry is one file or directory in a listing.
type FileEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
	MTime int64  `json:"mtime,omitempty"` // epoch seconds, 0 = unknown
	Mime  string `json:"mime,omitempty"`
}

// ListResponse is returned by GET /api/{token}/list[/{path}]. Path is the
// server's echoed directory path ("" = share root) and is authoritative over
// whatever path the client requested.
type ListResponse struct {
	Path  string      `json:"path"`
	Items []FileEntry `json:"items"`
}

// UploadResponse is returned by POST /api/{token}/upload[/{path}].
type UploadResponse struct {
	Ok       bool   `json:"ok"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// PreviewInfo is returned by GET /api/{token}/preview/{path} when the file is
// not directly previewable (neither image/* nor text/*).
type PreviewInfo struct {
	Name string `json:"name"`
	Mime string `json:"mime"`
}

// ErrorResponse is the generic error body used by the create endpoint and
// other non-share routes.
type ErrorResponse struct {
	Error string `json:"error"`
}
