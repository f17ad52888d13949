package authcode

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"idp/internal/domain/models"
	"idp/internal/oauth"
	"idp/internal/storage"
	"log/slog"
	"time"
)

// CodeStorage perform db operations on authorization codes. MarkCodeUsed
// must be conditional on used_at being unset so concurrent redemptions
// collapse to at most one success.
type CodeStorage interface {
	SaveAuthCode(ctx context.Context, code *models.AuthorizationCode) error
	AuthCode(ctx context.Context, code string) (*models.AuthorizationCode, error)
	MarkCodeUsed(ctx context.Context, code string) error
}

// Manager creates, binds and single-use-consumes authorization codes
type Manager struct {
	log     *slog.Logger
	codes   CodeStorage
	codeTTL time.Duration
}

// New returns a new instance of the authorization code Manager
func New(log *slog.Logger, codes CodeStorage, codeTTL time.Duration) *Manager {
	return &Manager{log: log, codes: codes, codeTTL: codeTTL}
}

// Issue mints an opaque single-use code bound to the validated request
// and the user's session
func (m *Manager) Issue(ctx context.Context, userID, clientID, sessionID int64, redirectURI, codeChallenge, codeChallengeMethod string) (string, error) {
	const op = "authcode.Issue"

	authCode := &models.AuthorizationCode{
		Code:                uuid.NewString(),
		UserID:              userID,
		ClientID:            clientID,
		SessionID:           sessionID,
		RedirectURI:         redirectURI,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		ExpiresAt:           time.Now().Add(m.codeTTL),
	}
	if err := m.codes.SaveAuthCode(ctx, authCode); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	m.log.Debug("authorization code issued",
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.Int64("client_id", clientID))
	return authCode.Code, nil
}

// Redeem consumes a code exactly once. Unknown, expired and replayed
// codes all surface the same invalid_grant so a replay cannot be told
// apart from an expiry. On success used_at is set before the caller
// issues any token: if issuance fails afterwards the code stays burned.
func (m *Manager) Redeem(ctx context.Context, code, redirectURI, codeVerifier string) (*models.AuthorizationCode, error) {
	const op = "authcode.Redeem"
	logger := m.log.With(slog.String("op", op))

	authCode, err := m.codes.AuthCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrCodeNotFound) {
			return nil, oauth.InvalidGrant("Authorization code is invalid or expired.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if redirectURI == "" || authCode.RedirectURI != redirectURI {
		logger.Info("redemption with mismatched redirect uri")
		return nil, oauth.InvalidGrant("Authorization code is invalid or expired.")
	}

	if authCode.CodeChallenge != "" && codeVerifier == "" {
		return nil, oauth.InvalidRequest("code_verifier is required.")
	}
	if codeVerifier != "" && !oauth.VerifyCodeChallenge(authCode.CodeChallenge, authCode.CodeChallengeMethod, codeVerifier) {
		logger.Info("code challenge verification failed")
		return nil, oauth.InvalidGrant("Failed to verify code challenge.")
	}

	if authCode.Expired(time.Now()) {
		return nil, oauth.InvalidGrant("Authorization code is invalid or expired.")
	}
	if authCode.UsedAt != nil {
		logger.Warn("replayed authorization code", slog.Int64("user_id", authCode.UserID))
		return nil, oauth.InvalidGrant("Authorization code is invalid or expired.")
	}

	if err = m.codes.MarkCodeUsed(ctx, authCode.Code); err != nil {
		if errors.Is(err, storage.ErrCodeAlreadyUsed) {
			// lost the race against a concurrent redemption
			logger.Warn("concurrent redemption of authorization code", slog.Int64("user_id", authCode.UserID))
			return nil, oauth.InvalidGrant("Authorization code is invalid or expired.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return authCode, nil
}
