package token

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"idp/internal/domain/models"
	jwtlib "idp/internal/lib/jwt"
	"idp/internal/oauth"
	"idp/internal/services/token/interfaces"
	"idp/internal/storage"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Request carries the body parameters and Authorization header of a
// /oauth/token request
type Request struct {
	GrantType           string
	Code                string
	RedirectURI         string
	ClientID            string
	ClientSecret        string
	Scope               string
	RefreshToken        string
	CodeVerifier        string
	AuthorizationHeader string
}

// Response is the token endpoint's success body
type Response struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Service is the grant-type state machine of the token endpoint. Each
// request is one transition; no state is shared across requests beyond
// the persistence layer and the read-only signing key.
type Service struct {
	log           *slog.Logger
	clients       interfaces.ClientAuthenticator
	codes         interfaces.CodeRedeemer
	users         interfaces.UserProvider
	accessTokens  interfaces.AccessTokenStorage
	refreshTokens interfaces.RefreshTokenStorage
	signer        *jwtlib.Signer
	tokenTTL      time.Duration
	refreshTTL    time.Duration
	idTokenTTL    time.Duration
}

// New returns a new instance of the token Service
func New(
	log *slog.Logger,
	clients interfaces.ClientAuthenticator,
	codes interfaces.CodeRedeemer,
	users interfaces.UserProvider,
	accessTokens interfaces.AccessTokenStorage,
	refreshTokens interfaces.RefreshTokenStorage,
	signer *jwtlib.Signer,
	tokenTTL time.Duration,
	refreshTTL time.Duration,
	idTokenTTL time.Duration,
) *Service {
	return &Service{
		log:           log,
		clients:       clients,
		codes:         codes,
		users:         users,
		accessTokens:  accessTokens,
		refreshTokens: refreshTokens,
		signer:        signer,
		tokenTTL:      tokenTTL,
		refreshTTL:    refreshTTL,
		idTokenTTL:    idTokenTTL,
	}
}

// Exchange runs one transition of the grant machine. The order is fixed:
// grant_type well-formedness, then client authentication, then the
// client's grant whitelist, then grant-specific body validation.
func (s *Service) Exchange(ctx context.Context, req *Request) (*Response, error) {
	if req.GrantType == "" {
		return nil, oauth.InvalidRequest("The request body MUST include the grant_type parameter")
	}
	if !slices.Contains(oauth.SupportedGrantTypes, req.GrantType) {
		return nil, oauth.UnsupportedGrantType("")
	}

	client, err := s.clients.Authenticate(ctx, req.AuthorizationHeader, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	if !client.GrantTypeAllowed(req.GrantType) {
		return nil, oauth.UnauthorizedClient("The client is not authorized to use this grant type.")
	}

	switch req.GrantType {
	case oauth.GrantAuthorizationCode:
		return s.exchangeAuthorizationCode(ctx, client, req)
	case oauth.GrantClientCredentials:
		return s.exchangeClientCredentials(ctx, client, req)
	case oauth.GrantRefreshToken:
		return s.exchangeRefreshToken(ctx, client, req)
	default:
		// unreachable after the whitelist check, kept as the machine's sink state
		return nil, oauth.UnsupportedGrantType("")
	}
}

// exchangeAuthorizationCode redeems a single-use code for the full token
// set: access token, refresh token and ID token, all bound to the code's
// user, client and session. Only this grant produces an ID token.
func (s *Service) exchangeAuthorizationCode(ctx context.Context, client *models.Client, req *Request) (*Response, error) {
	const op = "token.exchangeAuthorizationCode"
	logger := s.log.With(slog.String("op", op), slog.String("client_id", client.ClientID))

	if req.Code == "" {
		return nil, oauth.InvalidRequest("The request body MUST include the code parameter.")
	}
	if req.RedirectURI == "" {
		return nil, oauth.InvalidRequest("The request body MUST include the redirect_uri.")
	}

	// marks the code used before any token exists: a failure below
	// leaves the code burned rather than replayable
	authCode, err := s.codes.Redeem(ctx, req.Code, req.RedirectURI, req.CodeVerifier)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UserByID(ctx, authCode.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jti := uuid.NewString()
	signedAccess, accessExpiry, err := s.signer.SignAccessToken(user.PublicID.String(), client.ClientID, req.Scope, jti, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessRecord := &models.AccessToken{
		Token:               jti,
		UserID:              &authCode.UserID,
		ClientID:            client.ID,
		SessionID:           &authCode.SessionID,
		Scope:               req.Scope,
		ExpiresAt:           accessExpiry,
		AuthorizationCodeID: &authCode.ID,
	}
	if err = s.accessTokens.SaveAccessToken(ctx, accessRecord); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.issueRefreshToken(ctx, authCode.UserID, client.ID, authCode.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idJTI := uuid.NewString()
	idToken, _, err := s.signer.SignIDToken(user.PublicID.String(), client.ClientID, idJTI, s.idTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("authorization code exchanged", slog.Int64("user_id", user.ID))
	return &Response{
		AccessToken:  signedAccess,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenTTL.Seconds()),
		RefreshToken: refresh.Token,
		IDToken:      idToken,
	}, nil
}

// exchangeClientCredentials issues a single access token for the client
// itself: no user, no session, no refresh token. An absent scope
// defaults to the client's full allowed set.
func (s *Service) exchangeClientCredentials(ctx context.Context, client *models.Client, req *Request) (*Response, error) {
	const op = "token.exchangeClientCredentials"
	logger := s.log.With(slog.String("op", op), slog.String("client_id", client.ClientID))

	if req.Scope != "" {
		if !client.ScopesAllowed(strings.Fields(req.Scope)) {
			return nil, oauth.InvalidScope("")
		}
	}
	scope := req.Scope
	if scope == "" {
		scope = strings.Join(client.Scopes, " ")
	}

	jti := uuid.NewString()
	signedAccess, accessExpiry, err := s.signer.SignAccessToken(client.ClientID, client.ClientID, scope, jti, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessRecord := &models.AccessToken{
		Token:     jti,
		ClientID:  client.ID,
		Scope:     req.Scope,
		ExpiresAt: accessExpiry,
	}
	if err = s.accessTokens.SaveAccessToken(ctx, accessRecord); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("client credentials grant issued")
	return &Response{
		AccessToken: signedAccess,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		Scope:       scope,
	}, nil
}

// exchangeRefreshToken rotates a refresh token: the old value is revoked
// before the successor exists, so every value redeems at most once.
// Missing, revoked and expired tokens collapse to one invalid_grant.
func (s *Service) exchangeRefreshToken(ctx context.Context, client *models.Client, req *Request) (*Response, error) {
	const op = "token.exchangeRefreshToken"
	logger := s.log.With(slog.String("op", op), slog.String("client_id", client.ClientID))

	if req.RefreshToken == "" {
		return nil, oauth.InvalidRequest("The request body MUST include the refresh_token parameter.")
	}

	oldToken, err := s.refreshTokens.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, oauth.InvalidGrant("Refresh token is invalid, revoked, or expired.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if oldToken.Revoked() || oldToken.Expired(time.Now()) {
		return nil, oauth.InvalidGrant("Refresh token is invalid, revoked, or expired.")
	}

	if err = s.refreshTokens.RevokeRefreshToken(ctx, oldToken.Token); err != nil {
		if errors.Is(err, storage.ErrTokenRevoked) {
			// lost the race against a concurrent rotation
			logger.Warn("concurrent rotation of refresh token", slog.Int64("user_id", oldToken.UserID))
			return nil, oauth.InvalidGrant("Refresh token is invalid, revoked, or expired.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.UserByID(ctx, oldToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jti := uuid.NewString()
	signedAccess, accessExpiry, err := s.signer.SignAccessToken(user.PublicID.String(), client.ClientID, req.Scope, jti, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessRecord := &models.AccessToken{
		Token:                jti,
		UserID:               &oldToken.UserID,
		ClientID:             client.ID,
		SessionID:            &oldToken.SessionID,
		Scope:                req.Scope,
		ExpiresAt:            accessExpiry,
		SourceRefreshTokenID: &oldToken.ID,
	}
	if err = s.accessTokens.SaveAccessToken(ctx, accessRecord); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newToken, err := s.issueRefreshToken(ctx, oldToken.UserID, client.ID, oldToken.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("refresh token rotated", slog.Int64("user_id", oldToken.UserID))
	return &Response{
		AccessToken:  signedAccess,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenTTL.Seconds()),
		RefreshToken: newToken.Token,
	}, nil
}

func (s *Service) issueRefreshToken(ctx context.Context, userID, clientID, sessionID int64) (*models.RefreshToken, error) {
	value, err := jwtlib.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	refresh := &models.RefreshToken{
		Token:     value,
		UserID:    userID,
		ClientID:  clientID,
		SessionID: sessionID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err = s.refreshTokens.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}
	return refresh, nil
}
