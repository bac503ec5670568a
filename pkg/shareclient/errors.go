package shareclient

import (
	"errors"
	"fmt"
)

// ErrShareNotFound is returned when the server reports that a share token
// does not exist or has expired (404 or 410 on the status route). It is
// terminal for the session: retrying with the same token cannot succeed.
var ErrShareNotFound = errors.New("share not found or expired")

// AuthError is returned when the server rejects a password. It is
// user-correctable: the caller may prompt again and retry.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "incorrect password"
	}
	return e.Message
}

// AsAuthError checks if an error is an AuthError and returns it.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// APIError carries a non-success HTTP status together with the server's
// error message, when one could be extracted from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
