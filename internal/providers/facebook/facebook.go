package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"golang.org/x/oauth2"
	fboauth "golang.org/x/oauth2/facebook"
	"idp/internal/config"
	"idp/internal/providers"
)

const userInfoURL = "https://graph.facebook.com/me?fields=id,name,email"

// Provider exchanges Facebook authorization codes for identities
type Provider struct {
	conf *oauth2.Config
}

// New creates a Facebook provider from its configured credentials
func New(cfg config.SocialProviderConfig) *Provider {
	return &Provider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     fboauth.Endpoint,
		},
	}
}

func (p *Provider) Name() string { return "facebook" }

// AuthorizationURL builds the URL the user agent is sent to for login
func (p *Provider) AuthorizationURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

// UserInfoFromCode exchanges the callback code and fetches the user's
// graph profile. Facebook omits email when the user declined that scope.
func (p *Provider) UserInfoFromCode(ctx context.Context, code string) (*providers.UserInfo, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook code exchange: %v", providers.ErrProviderFailure, err)
	}

	resp, err := p.conf.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook profile: %v", providers.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: facebook profile status %d", providers.ErrProviderFailure, resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: facebook profile decode: %v", providers.ErrProviderFailure, err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%w: facebook profile missing id", providers.ErrProviderFailure)
	}

	return &providers.UserInfo{
		ID:    payload.ID,
		Email: payload.Email,
		Name:  payload.Name,
	}, nil
}
