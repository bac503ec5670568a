// Package create implements the sender flow: collect share parameters,
// submit a creation request, and render the resulting share link.
package create

import (
	"context"
	"errors"
	"strings"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

// API is the slice of the share client the controller needs.
type API interface {
	SuggestIP(ctx context.Context) (string, error)
	CreateShare(ctx context.Context, req protocol.CreateShareRequest) (*protocol.CreateShareResponse, error)
}

// Params are the user-supplied creation inputs. ExpiryMinutes nil means
// "server default expiry"; zero or negative means "no expiry".
type Params struct {
	DirPath       string
	Password      string
	HostIP        string
	ExpiryMinutes *int
}

// ErrMissingFields is returned when directory path or password are absent.
// Validation happens client-side, before any request is issued.
var ErrMissingFields = errors.New("directory path and password are required")

// Controller runs one share creation. The suggested host address and the
// creation result live only as long as the confirmation is being shown.
type Controller struct {
	api         API
	suggestedIP string
	result      *protocol.CreateShareResponse
}

// NewController creates a controller.
func NewController(api API) *Controller {
	return &Controller{api: api}
}

// Prefill asks the server for a suggested LAN address. Failure is silent:
// the address stays empty and editable, nothing else is affected.
func (c *Controller) Prefill(ctx context.Context) {
	ip, err := c.api.SuggestIP(ctx)
	if err != nil {
		return
	}
	c.suggestedIP = ip
}

// SuggestedIP returns the prefetched host address ("" when Prefill failed
// or was never run).
func (c *Controller) SuggestedIP() string {
	return c.suggestedIP
}

// Submit validates the parameters and issues the creation request. When no
// host address was supplied the prefilled suggestion is used; the server
// falls back to its own detection if both are empty.
func (c *Controller) Submit(ctx context.Context, p Params) (*protocol.CreateShareResponse, error) {
	dirPath := strings.TrimSpace(p.DirPath)
	password := strings.TrimSpace(p.Password)
	if dirPath == "" || password == "" {
		return nil, ErrMissingFields
	}

	ip := strings.TrimSpace(p.HostIP)
	if ip == "" {
		ip = c.suggestedIP
	}

	result, err := c.api.CreateShare(ctx, protocol.CreateShareRequest{
		DirPath:       dirPath,
		Password:      password,
		IP:            ip,
		ExpiryMinutes: p.ExpiryMinutes,
	})
	if err != nil {
		return nil, err
	}

	c.result = result
	return result, nil
}

// Result returns the last successful creation response, nil before one.
func (c *Controller) Result() *protocol.CreateShareResponse {
	return c.result
}
