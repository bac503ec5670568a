package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

// ErrSuperseded is returned when a listing response arrived after a newer
// request had already been issued. The response was discarded; the caller
// should simply drop the error.
var ErrSuperseded = errors.New("listing superseded by a newer request")

// Lister is the slice of the share client the navigator needs.
type Lister interface {
	List(ctx context.Context, token, relPath string) (*protocol.ListResponse, error)
}

// Navigator owns the current directory path and the most recently loaded
// listing for one authenticated share session. The path is a sequence of
// segments (empty = share root); segments never contain a separator.
//
// Every load carries a monotonically increasing sequence number taken at
// issue time. A response is applied only if no newer request has been issued
// since, so out-of-order arrivals can never overwrite fresher state.
type Navigator struct {
	lister Lister
	token  string

	mu       sync.Mutex
	issued   uint64
	segments []string
	entries  []protocol.FileEntry
}

// NewNavigator creates a navigator rooted at the top of the share.
func NewNavigator(lister Lister, token string) *Navigator {
	return &Navigator{lister: lister, token: token}
}

// Load fetches the listing for relPath ("" = root). On success the server's
// echoed path replaces the current one — the server may have normalized what
// we asked for. On failure the last good listing is preserved and the error
// returned.
func (n *Navigator) Load(ctx context.Context, relPath string) error {
	n.mu.Lock()
	n.issued++
	seq := n.issued
	n.mu.Unlock()

	resp, err := n.lister.List(ctx, n.token, relPath)

	n.mu.Lock()
	defer n.mu.Unlock()

	if seq != n.issued {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}

	n.segments = splitPath(resp.Path)
	n.entries = resp.Items
	return nil
}

// EnterFolder descends into a directory entry of the current listing.
func (n *Navigator) EnterFolder(ctx context.Context, name string) error {
	n.mu.Lock()
	var found *protocol.FileEntry
	for i := range n.entries {
		if n.entries[i].Name == name {
			found = &n.entries[i]
			break
		}
	}
	if found == nil {
		n.mu.Unlock()
		return fmt.Errorf("no such entry: %s", name)
	}
	if !found.IsDir {
		n.mu.Unlock()
		return fmt.Errorf("not a folder: %s", name)
	}
	target := joinPath(append(append([]string{}, n.segments...), name))
	n.mu.Unlock()

	return n.Load(ctx, target)
}

// Back moves up one directory. At the root it is a no-op.
func (n *Navigator) Back(ctx context.Context) error {
	n.mu.Lock()
	if len(n.segments) == 0 {
		n.mu.Unlock()
		return nil
	}
	target := joinPath(n.segments[:len(n.segments)-1])
	n.mu.Unlock()

	return n.Load(ctx, target)
}

// Refresh reloads the current directory.
func (n *Navigator) Refresh(ctx context.Context) error {
	return n.Load(ctx, n.Path())
}

// Path returns the current directory as a slash-joined relative path
// ("" = root).
func (n *Navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return joinPath(n.segments)
}

// Segments returns a copy of the current path segments.
func (n *Navigator) Segments() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.segments...)
}

// Entries returns a copy of the most recently loaded listing.
func (n *Navigator) Entries() []protocol.FileEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]protocol.FileEntry{}, n.entries...)
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func joinPath(segments []string) string {
	return strings.Join(segments, "/")
}
