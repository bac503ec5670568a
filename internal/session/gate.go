// Package session drives a share token from "unknown" to "authenticated".
//
// The gate is an explicit tagged state machine rather than a pile of
// loading/authed/error booleans, so unreachable flag combinations cannot
// exist. The server owns share expiry: re-entering the gate for a token
// always re-checks status instead of trusting prior in-memory state.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/725aayush/setu-sharing/pkg/protocol"
	"github.com/725aayush/setu-sharing/pkg/shareclient"
)

// State is the gate's position in the auth lifecycle.
type State int

const (
	// StateNoToken means no share token has been supplied yet.
	StateNoToken State = iota
	// StateChecking means a status request for the token is in flight.
	StateChecking
	// StatePasswordRequired means the share exists but this session has not
	// authenticated for it.
	StatePasswordRequired
	// StateAuthenticated is terminal for the gate; browsing takes over.
	StateAuthenticated
	// StateError is terminal for this screen. Whether it can be retried
	// depends on Reason.
	StateError
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no-token"
	case StateChecking:
		return "checking"
	case StatePasswordRequired:
		return "password-required"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorReason distinguishes the two terminal failure classes.
type ErrorReason int

const (
	ReasonNone ErrorReason = iota
	// ReasonExpiredOrMissing: the server reported the share gone. Retrying
	// with the same token cannot succeed.
	ReasonExpiredOrMissing
	// ReasonUnreachable: the status check failed for any other cause.
	// Re-invoking the gate retries it.
	ReasonUnreachable
)

// ErrSuperseded is returned when a status or auth response arrived after a
// newer request had been issued; the response was discarded.
var ErrSuperseded = errors.New("response superseded by a newer request")

// ErrNotAwaitingPassword is returned when a password is submitted while the
// gate is not in StatePasswordRequired.
var ErrNotAwaitingPassword = errors.New("gate is not awaiting a password")

// API is the slice of the share client the gate needs.
type API interface {
	Status(ctx context.Context, token string) (*protocol.StatusResponse, error)
	Authenticate(ctx context.Context, token, password string) error
}

// Gate validates a share token and collects a password when one is needed.
//
// OnAuthenticated, when set, runs on every transition into
// StateAuthenticated; the receiver flow uses it to trigger the initial root
// listing. Status and auth responses carry sequence numbers taken at issue
// time and are discarded when a newer request has been issued since.
type Gate struct {
	api             API
	OnAuthenticated func(ctx context.Context)

	mu      sync.Mutex
	issued  uint64
	token   string
	state   State
	reason  ErrorReason
	message string // last non-fatal auth failure message
	status  *protocol.StatusResponse
}

// NewGate creates a gate in StateNoToken.
func NewGate(api API) *Gate {
	return &Gate{api: api}
}

// SubmitToken binds the gate to a token and checks the share's status.
// The token, once bound, is immutable for the life of the gate.
func (g *Gate) SubmitToken(ctx context.Context, token string) (State, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return g.State(), errors.New("token must not be empty")
	}

	g.mu.Lock()
	if g.token != "" && g.token != token {
		g.mu.Unlock()
		return g.State(), errors.New("gate is already bound to a token")
	}
	g.token = token
	g.mu.Unlock()

	return g.check(ctx)
}

// Recheck re-runs the status check for the bound token. Used when the gate
// is re-entered (the route is revisited) after an unreachable error, and on
// every fresh visit: expiry is the server's call, never cached.
func (g *Gate) Recheck(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.token == "" {
		g.mu.Unlock()
		return StateNoToken, errors.New("no token bound")
	}
	g.mu.Unlock()

	return g.check(ctx)
}

func (g *Gate) check(ctx context.Context) (State, error) {
	g.mu.Lock()
	g.issued++
	seq := g.issued
	g.state = StateChecking
	g.reason = ReasonNone
	g.message = ""
	token := g.token
	g.mu.Unlock()

	status, err := g.api.Status(ctx, token)

	g.mu.Lock()
	if seq != g.issued {
		g.mu.Unlock()
		return g.State(), ErrSuperseded
	}

	switch {
	case errors.Is(err, shareclient.ErrShareNotFound):
		g.state = StateError
		g.reason = ReasonExpiredOrMissing
		g.mu.Unlock()
		return StateError, err
	case err != nil:
		g.state = StateError
		g.reason = ReasonUnreachable
		g.mu.Unlock()
		return StateError, err
	case status.Authed:
		g.state = StateAuthenticated
		g.status = status
		cb := g.OnAuthenticated
		g.mu.Unlock()
		if cb != nil {
			cb(ctx)
		}
		return StateAuthenticated, nil
	default:
		g.state = StatePasswordRequired
		g.status = status
		g.mu.Unlock()
		return StatePasswordRequired, nil
	}
}

// SubmitPassword attempts password authentication. A rejected password is
// non-fatal: the gate stays in StatePasswordRequired, the server's message
// is retained for display, and the caller may retry without limit.
func (g *Gate) SubmitPassword(ctx context.Context, password string) (State, error) {
	g.mu.Lock()
	if g.state != StatePasswordRequired {
		g.mu.Unlock()
		return g.State(), ErrNotAwaitingPassword
	}
	g.issued++
	seq := g.issued
	token := g.token
	g.mu.Unlock()

	err := g.api.Authenticate(ctx, token, password)

	g.mu.Lock()
	if seq != g.issued {
		g.mu.Unlock()
		return g.State(), ErrSuperseded
	}

	switch {
	case err == nil:
		g.state = StateAuthenticated
		g.message = ""
		cb := g.OnAuthenticated
		g.mu.Unlock()
		if cb != nil {
			cb(ctx)
		}
		return StateAuthenticated, nil
	case errors.Is(err, shareclient.ErrShareNotFound):
		g.state = StateError
		g.reason = ReasonExpiredOrMissing
		g.mu.Unlock()
		return StateError, err
	default:
		// Wrong password or a transient failure: stay on the prompt.
		g.message = err.Error()
		g.mu.Unlock()
		return StatePasswordRequired, err
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reason reports why the gate is in StateError.
func (g *Gate) Reason() ErrorReason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// Message returns the last non-fatal auth failure message, if any.
func (g *Gate) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

// Token returns the bound token ("" before SubmitToken).
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// ShareStatus returns the last successful status response, which carries the
// share's creation and expiry timestamps when the server reports them.
func (g *Gate) ShareStatus() *protocol.StatusResponse {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}
