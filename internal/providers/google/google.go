package google

import (
	"context"
	"encoding/json"
	"fmt"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"idp/internal/config"
	"idp/internal/providers"
)

const userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Provider exchanges Google authorization codes for verified identities
type Provider struct {
	conf *oauth2.Config
}

// New creates a Google provider from its configured credentials
func New(cfg config.SocialProviderConfig) *Provider {
	return &Provider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     goauth.Endpoint,
		},
	}
}

func (p *Provider) Name() string { return "google" }

// AuthorizationURL builds the URL the user agent is sent to for login
func (p *Provider) AuthorizationURL(state string) string {
	return p.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"))
}

// UserInfoFromCode exchanges the callback code and fetches the user's
// OIDC userinfo
func (p *Provider) UserInfoFromCode(ctx context.Context, code string) (*providers.UserInfo, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: google code exchange: %v", providers.ErrProviderFailure, err)
	}

	resp, err := p.conf.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: google userinfo: %v", providers.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: google userinfo status %d", providers.ErrProviderFailure, resp.StatusCode)
	}

	var payload struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: google userinfo decode: %v", providers.ErrProviderFailure, err)
	}
	if payload.Sub == "" {
		return nil, fmt.Errorf("%w: google userinfo missing subject", providers.ErrProviderFailure)
	}

	return &providers.UserInfo{
		ID:      payload.Sub,
		Email:   payload.Email,
		Name:    payload.Name,
		Picture: payload.Picture,
	}, nil
}
