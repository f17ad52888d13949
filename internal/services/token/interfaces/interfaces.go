package interfaces

import (
	"context"
	"idp/internal/domain/models"
)

// ClientAuthenticator verifies the calling client's credentials
type ClientAuthenticator interface {
	Authenticate(ctx context.Context, authorizationHeader, clientID, clientSecret string) (*models.Client, error)
}

// CodeRedeemer consumes an authorization code exactly once
type CodeRedeemer interface {
	Redeem(ctx context.Context, code, redirectURI, codeVerifier string) (*models.AuthorizationCode, error)
}

// UserProvider resolves users referenced by grants
type UserProvider interface {
	UserByID(ctx context.Context, userID int64) (*models.User, error)
}

// AccessTokenStorage persists audit records of issued access tokens
type AccessTokenStorage interface {
	SaveAccessToken(ctx context.Context, token *models.AccessToken) error
}

// RefreshTokenStorage perform db operations on refresh tokens.
// RevokeRefreshToken must be conditional on revoked_at being unset so
// concurrent rotations collapse to at most one success.
type RefreshTokenStorage interface {
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	RefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
