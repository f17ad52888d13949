package models

import "slices"

// Client is a registered OAuth client application.
// Secret is empty for public clients.
type Client struct {
	ID           int64    `json:"id" db:"id"`
	ClientID     string   `json:"client_id" db:"client_id"`
	Secret       string   `json:"-" db:"client_secret"`
	Name         string   `json:"client_name" db:"client_name"`
	GrantTypes   []string `json:"grant_types" db:"grant_types"`
	Scopes       []string `json:"allowed_scopes" db:"allowed_scopes"`
	RedirectURIs []string `json:"redirect_uris" db:"redirect_uris"`
	AuthMethod   string   `json:"token_endpoint_auth_method" db:"token_endpoint_auth_method"`
}

// RedirectURIAllowed reports whether uri exactly matches a registered redirect URI
func (c *Client) RedirectURIAllowed(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// GrantTypeAllowed reports whether the client may use the given grant type
func (c *Client) GrantTypeAllowed(grantType string) bool {
	return slices.Contains(c.GrantTypes, grantType)
}

// ScopesAllowed reports whether every requested scope is within the client's allowed set
func (c *Client) ScopesAllowed(scopes []string) bool {
	if len(c.Scopes) == 0 {
		return false
	}
	for _, s := range scopes {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}
