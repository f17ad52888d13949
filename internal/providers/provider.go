package providers

import (
	"context"
	"errors"
)

// ErrProviderFailure wraps every upstream failure: callers surface one
// generic provider error and never leak upstream detail.
var ErrProviderFailure = errors.New("social provider request failed")

// UserInfo is the normalized identity shape consumed from any provider
type UserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Provider abstracts one social identity provider's OAuth dialect
type Provider interface {
	Name() string
	AuthorizationURL(state string) string
	UserInfoFromCode(ctx context.Context, code string) (*UserInfo, error)
}

// Registry is a lookup table of providers by name; adding a provider
// means registering it here, not touching any dispatch logic.
type Registry map[string]Provider

// NewRegistry builds a Registry from the given providers
func NewRegistry(list ...Provider) Registry {
	r := make(Registry, len(list))
	for _, p := range list {
		r[p.Name()] = p
	}
	return r
}

// Lookup resolves a provider by name
func (r Registry) Lookup(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}
