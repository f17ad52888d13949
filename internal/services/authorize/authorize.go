package authorize

import (
	"context"
	"errors"
	"fmt"
	"idp/internal/domain/models"
	"idp/internal/oauth"
	"idp/internal/storage"
	"log/slog"
	"slices"
	"strings"
)

// ClientProvider resolves registered clients by public identifier
type ClientProvider interface {
	ClientByClientID(ctx context.Context, clientID string) (*models.Client, error)
}

// Request carries the query parameters of an /oauth/authorize request
type Request struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// Validator checks an authorize request against the client registration
// and PKCE rules before anything else happens in the flow.
type Validator struct {
	log     *slog.Logger
	clients ClientProvider
}

// New returns a new instance of the authorize request Validator
func New(log *slog.Logger, clients ClientProvider) *Validator {
	return &Validator{log: log, clients: clients}
}

// Validate runs the checks in a fixed order. The first two failures are
// fatal: the redirect URI is not yet trustworthy, so they must never be
// sent back to it. Everything after may safely redirect.
func (v *Validator) Validate(ctx context.Context, req Request) (*models.Client, error) {
	const op = "authorize.Validate"
	logger := v.log.With(slog.String("op", op), slog.String("client_id", req.ClientID))

	if req.ClientID == "" {
		return nil, oauth.FatalInvalidClient()
	}
	client, err := v.clients.ClientByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			logger.Info("authorize request for unknown client")
			return nil, oauth.FatalInvalidClient()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.RedirectURI == "" || !client.RedirectURIAllowed(req.RedirectURI) {
		logger.Info("authorize request with unregistered redirect uri")
		return nil, oauth.FatalInvalidRedirectURI()
	}

	// from here on the redirect target is trusted

	if req.ResponseType == "" {
		return nil, oauth.InvalidRequest("response_type is missing")
	}
	if !slices.Contains(oauth.SupportedResponseTypes, req.ResponseType) {
		return nil, oauth.UnsupportedResponseType("")
	}

	if req.CodeChallenge != "" && req.CodeChallengeMethod == "" {
		return nil, oauth.InvalidRequest("code_challenge_method is required when code_challenge is provided.")
	}
	if req.CodeChallengeMethod != "" && req.CodeChallenge == "" {
		return nil, oauth.InvalidRequest("code_challenge is required when code_challenge_method is provided.")
	}
	if req.CodeChallengeMethod != "" && !slices.Contains(oauth.SupportedCodeChallengeMethods, req.CodeChallengeMethod) {
		return nil, oauth.InvalidRequest(fmt.Sprintf(
			"Unsupported code_challenge_method. Supported methods are %s.",
			strings.Join(oauth.SupportedCodeChallengeMethods, ", ")))
	}

	if !client.GrantTypeAllowed(oauth.GrantAuthorizationCode) {
		return nil, oauth.UnauthorizedClient("")
	}

	if req.Scope != "" {
		if !client.ScopesAllowed(strings.Fields(req.Scope)) {
			return nil, oauth.InvalidScope("")
		}
	}

	logger.Debug("authorize request validated")
	return client, nil
}
