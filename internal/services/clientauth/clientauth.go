package clientauth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"idp/internal/domain/models"
	"idp/internal/oauth"
	"idp/internal/storage"
	"log/slog"
	"strings"
)

// ClientProvider resolves registered clients by public identifier
type ClientProvider interface {
	ClientByClientID(ctx context.Context, clientID string) (*models.Client, error)
}

// Authenticator disambiguates and verifies the token endpoint's client
// authentication methods: Basic header, POST body credentials, or a bare
// client_id for public clients.
type Authenticator struct {
	log     *slog.Logger
	clients ClientProvider
}

// New returns a new instance of the Authenticator
func New(log *slog.Logger, clients ClientProvider) *Authenticator {
	return &Authenticator{log: log, clients: clients}
}

// Authenticate resolves and verifies the calling client. Supplying both
// a header and body credentials is rejected before any credential is
// checked; secret comparison is constant-time.
func (a *Authenticator) Authenticate(ctx context.Context, authorizationHeader, clientID, clientSecret string) (*models.Client, error) {
	const op = "clientauth.Authenticate"
	logger := a.log.With(slog.String("op", op))

	var id, secret, authMethod string

	switch {
	case authorizationHeader != "":
		if clientID != "" || clientSecret != "" {
			return nil, oauth.InvalidRequest("Client must not use more than one authentication method.")
		}
		if !strings.HasPrefix(strings.ToLower(authorizationHeader), "basic ") {
			return nil, oauth.InvalidRequest("Invalid Authorization header format.")
		}
		decoded, err := base64.StdEncoding.DecodeString(authorizationHeader[len("basic "):])
		if err != nil {
			return nil, oauth.InvalidRequest("Invalid Authorization header format.")
		}
		id, secret, _ = strings.Cut(string(decoded), ":")
		authMethod = oauth.AuthMethodBasic
	case clientID != "" && clientSecret != "":
		id, secret = clientID, clientSecret
		authMethod = oauth.AuthMethodPost
	case clientID != "":
		id = clientID
		authMethod = oauth.AuthMethodNone
	default:
		return nil, oauth.InvalidClient("Client authentication failed: No client credentials provided.")
	}

	if id == "" {
		return nil, oauth.InvalidClient("Client ID is missing.")
	}

	client, err := a.clients.ClientByClientID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrClientNotFound) {
			logger.Info("token request for unknown client", slog.String("client_id", id))
			return nil, oauth.InvalidClient("Client not found.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if authMethod == oauth.AuthMethodBasic || authMethod == oauth.AuthMethodPost {
		if subtle.ConstantTimeCompare([]byte(client.Secret), []byte(secret)) != 1 {
			logger.Info("client secret mismatch", slog.String("client_id", id))
			return nil, oauth.InvalidClient("Invalid client secret.")
		}
	}

	return client, nil
}
