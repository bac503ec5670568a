// Package transfer coordinates uploads and downloads against an
// authenticated share session.
package transfer

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

// ErrUploadInFlight is returned when an upload is attempted while another is
// still running. The exclusion is cooperative: callers disable their upload
// control for the duration rather than queueing.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// Uploader is the slice of the share client the coordinator needs.
type Uploader interface {
	Upload(ctx context.Context, token, relPath, filename string, content io.Reader) (*protocol.UploadResponse, error)
}

// Navigator is the directory context uploads land in. On success the
// coordinator asks it to reload the current listing; it never touches the
// entry list itself.
type Navigator interface {
	Path() string
	Refresh(ctx context.Context) error
}

// UploadCoordinator serializes single-file uploads into the navigator's
// current directory.
type UploadCoordinator struct {
	uploader Uploader
	nav      Navigator
	token    string
	inFlight atomic.Bool
}

// NewUploadCoordinator creates a coordinator bound to one share session.
func NewUploadCoordinator(uploader Uploader, nav Navigator, token string) *UploadCoordinator {
	return &UploadCoordinator{uploader: uploader, nav: nav, token: token}
}

// InFlight reports whether an upload is currently running, so the caller can
// disable its upload control.
func (u *UploadCoordinator) InFlight() bool {
	return u.inFlight.Load()
}

// Upload sends one file into the current directory and, on success,
// refreshes the listing. At most one upload runs at a time per session;
// overlapping calls fail with ErrUploadInFlight.
func (u *UploadCoordinator) Upload(ctx context.Context, filename string, content io.Reader) (*protocol.UploadResponse, error) {
	if !u.inFlight.CompareAndSwap(false, true) {
		return nil, ErrUploadInFlight
	}
	defer u.inFlight.Store(false)

	dir := u.nav.Path()
	resp, err := u.uploader.Upload(ctx, u.token, dir, filename, content)
	if err != nil {
		return nil, err
	}

	// The refresh keeps the listing current; if it fails the upload has
	// still succeeded and the stale listing is non-fatal.
	_ = u.nav.Refresh(ctx)
	return resp, nil
}
