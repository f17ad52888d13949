package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp/internal/domain/models"
	"idp/internal/keys"
	jwtlib "idp/internal/lib/jwt"
	"idp/internal/oauth"
	"idp/internal/services/authcode"
	"idp/internal/storage"
)

const (
	testIssuer   = "https://idp.example.com"
	redirectURI  = "https://app/cb"
	testTokenTTL = time.Hour
)

type fakeClientAuth struct {
	client *models.Client
	calls  int
}

func (f *fakeClientAuth) Authenticate(_ context.Context, _, _, _ string) (*models.Client, error) {
	f.calls++
	if f.client == nil {
		return nil, oauth.InvalidClient("")
	}
	return f.client, nil
}

type memUsers struct {
	byID map[int64]*models.User
}

func (s *memUsers) UserByID(_ context.Context, userID int64) (*models.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

type accessRecorder struct {
	mu    sync.Mutex
	saved []*models.AccessToken
}

func (s *accessRecorder) SaveAccessToken(_ context.Context, token *models.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.saved = append(s.saved, &cp)
	return nil
}

func (s *accessRecorder) last(t *testing.T) *models.AccessToken {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.saved)
	return s.saved[len(s.saved)-1]
}

type memRefreshStore struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
	nextID  int64
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{byToken: map[string]*models.RefreshToken{}}
}

func (s *memRefreshStore) SaveRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token.ID = s.nextID
	stored := *token
	s.byToken[token.Token] = &stored
	return nil
}

func (s *memRefreshStore) RefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byToken[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	cp := *stored
	return &cp, nil
}

func (s *memRefreshStore) RevokeRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byToken[token]
	if !ok {
		return storage.ErrTokenNotFound
	}
	if stored.RevokedAt != nil {
		return storage.ErrTokenRevoked
	}
	now := time.Now()
	stored.RevokedAt = &now
	return nil
}

type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.AuthorizationCode
	next  int64
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[string]*models.AuthorizationCode{}}
}

func (s *memCodeStore) SaveAuthCode(_ context.Context, code *models.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	code.ID = s.next
	stored := *code
	s.codes[code.Code] = &stored
	return nil
}

func (s *memCodeStore) AuthCode(_ context.Context, code string) (*models.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[code]
	if !ok {
		return nil, storage.ErrCodeNotFound
	}
	cp := *stored
	return &cp, nil
}

func (s *memCodeStore) MarkCodeUsed(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[code]
	if !ok {
		return storage.ErrCodeNotFound
	}
	if stored.UsedAt != nil {
		return storage.ErrCodeAlreadyUsed
	}
	now := time.Now()
	stored.UsedAt = &now
	return nil
}

type fixture struct {
	service   *Service
	auth      *fakeClientAuth
	codes     *authcode.Manager
	access    *accessRecorder
	refresh   *memRefreshStore
	client    *models.Client
	user      *models.User
	publicKey *rsa.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider, err := keys.New(map[string]*rsa.PrivateKey{"test-key": key}, "test-key")
	require.NoError(t, err)
	signer := jwtlib.NewSigner(provider, testIssuer)

	client := &models.Client{
		ID:       1,
		ClientID: "web-app",
		Secret:   "s3cret",
		GrantTypes: []string{
			oauth.GrantAuthorizationCode,
			oauth.GrantClientCredentials,
			oauth.GrantRefreshToken,
		},
		Scopes:       []string{"openid", "profile", "email"},
		RedirectURIs: []string{redirectURI},
	}
	user := &models.User{ID: 7, PublicID: uuid.New(), Email: "user@example.com"}

	auth := &fakeClientAuth{client: client}
	codeManager := authcode.New(log, newMemCodeStore(), 10*time.Minute)
	access := &accessRecorder{}
	refresh := newMemRefreshStore()

	service := New(
		log,
		auth,
		codeManager,
		&memUsers{byID: map[int64]*models.User{user.ID: user}},
		access,
		refresh,
		signer,
		testTokenTTL,
		720*time.Hour,
		time.Hour,
	)

	return &fixture{
		service:   service,
		auth:      auth,
		codes:     codeManager,
		access:    access,
		refresh:   refresh,
		client:    client,
		user:      user,
		publicKey: &key.PublicKey,
	}
}

func (f *fixture) parseClaims(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return f.publicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func (f *fixture) issueCode(t *testing.T, challenge, method string) string {
	t.Helper()
	code, err := f.codes.Issue(context.Background(), f.user.ID, f.client.ID, 3, redirectURI, challenge, method)
	require.NoError(t, err)
	return code
}

func requireOAuthError(t *testing.T, err error, code string) {
	t.Helper()
	oe, ok := oauth.AsError(err)
	require.True(t, ok, "expected a protocol error, got %v", err)
	assert.Equal(t, code, oe.Code)
}

func TestExchange_MissingGrantType(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Exchange(context.Background(), &Request{})
	requireOAuthError(t, err, oauth.CodeInvalidRequest)
	assert.Zero(t, f.auth.calls)
}

func TestExchange_UnknownGrantTypePrecedesClientAuth(t *testing.T) {
	// the well-formedness check fires before any credentials are examined
	f := newFixture(t)

	_, err := f.service.Exchange(context.Background(), &Request{GrantType: "password"})
	requireOAuthError(t, err, oauth.CodeUnsupportedGrantType)
	assert.Zero(t, f.auth.calls)
}

func TestExchange_GrantNotAllowedForClient(t *testing.T) {
	f := newFixture(t)
	f.client.GrantTypes = []string{oauth.GrantAuthorizationCode}

	_, err := f.service.Exchange(context.Background(), &Request{GrantType: oauth.GrantClientCredentials})
	requireOAuthError(t, err, oauth.CodeUnauthorizedClient)
	assert.Equal(t, 1, f.auth.calls)
}

func TestExchange_AuthorizationCode_HappyPath(t *testing.T) {
	f := newFixture(t)
	code := f.issueCode(t, "", "")

	resp, err := f.service.Exchange(context.Background(), &Request{
		GrantType:   oauth.GrantAuthorizationCode,
		Code:        code,
		RedirectURI: redirectURI,
		Scope:       "openid profile",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(testTokenTTL.Seconds()), resp.ExpiresIn)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.IDToken)

	claims := f.parseClaims(t, resp.AccessToken)
	assert.Equal(t, testIssuer, claims["iss"])
	assert.Equal(t, f.user.PublicID.String(), claims["sub"])
	assert.Equal(t, f.client.ClientID, claims["aud"])
	assert.Equal(t, "openid profile", claims["scope"])

	idClaims := f.parseClaims(t, resp.IDToken)
	assert.Equal(t, f.user.PublicID.String(), idClaims["sub"])
	assert.Equal(t, f.client.ClientID, idClaims["aud"])

	record := f.access.last(t)
	require.NotNil(t, record.UserID)
	assert.Equal(t, f.user.ID, *record.UserID)
	assert.NotNil(t, record.AuthorizationCodeID)
	assert.Nil(t, record.SourceRefreshTokenID)
	assert.Equal(t, claims["jti"], record.Token)
}

func TestExchange_AuthorizationCode_MissingParams(t *testing.T) {
	f := newFixture(t)
	code := f.issueCode(t, "", "")

	_, err := f.service.Exchange(context.Background(), &Request{
		GrantType:   oauth.GrantAuthorizationCode,
		RedirectURI: redirectURI,
	})
	requireOAuthError(t, err, oauth.CodeInvalidRequest)

	_, err = f.service.Exchange(context.Background(), &Request{
		GrantType: oauth.GrantAuthorizationCode,
		Code:      code,
	})
	requireOAuthError(t, err, oauth.CodeInvalidRequest)
}

func TestExchange_AuthorizationCode_DoubleRedemption(t *testing.T) {
	f := newFixture(t)
	code := f.issueCode(t, "", "")

	req := &Request{
		GrantType:   oauth.GrantAuthorizationCode,
		Code:        code,
		RedirectURI: redirectURI,
	}
	_, err := f.service.Exchange(context.Background(), req)
	require.NoError(t, err)

	_, err = f.service.Exchange(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidGrant)
}

func TestExchange_AuthorizationCode_PKCERoundTrip(t *testing.T) {
	f := newFixture(t)
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	code := f.issueCode(t, oauth.ComputeS256Challenge(verifier), oauth.MethodS256)

	_, err := f.service.Exchange(context.Background(), &Request{
		GrantType:    oauth.GrantAuthorizationCode,
		Code:         code,
		RedirectURI:  redirectURI,
		CodeVerifier: verifier,
	})
	require.NoError(t, err)

	code = f.issueCode(t, oauth.ComputeS256Challenge(verifier), oauth.MethodS256)
	_, err = f.service.Exchange(context.Background(), &Request{
		GrantType:    oauth.GrantAuthorizationCode,
		Code:         code,
		RedirectURI:  redirectURI,
		CodeVerifier: "the-wrong-verifier",
	})
	requireOAuthError(t, err, oauth.CodeInvalidGrant)
}

func TestExchange_ClientCredentials_HappyPath(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Exchange(context.Background(), &Request{
		GrantType: oauth.GrantClientCredentials,
		Scope:     "openid email",
	})
	require.NoError(t, err)

	assert.Empty(t, resp.RefreshToken)
	assert.Empty(t, resp.IDToken)
	assert.Equal(t, "openid email", resp.Scope)

	claims := f.parseClaims(t, resp.AccessToken)
	assert.Equal(t, f.client.ClientID, claims["sub"])
	assert.Equal(t, f.client.ClientID, claims["aud"])

	record := f.access.last(t)
	assert.Nil(t, record.UserID)
	assert.Nil(t, record.SessionID)
}

func TestExchange_ClientCredentials_DefaultScopeIsFullSet(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Exchange(context.Background(), &Request{
		GrantType: oauth.GrantClientCredentials,
	})
	require.NoError(t, err)
	assert.Equal(t, "openid profile email", resp.Scope)
}

func TestExchange_ClientCredentials_ScopeOutsideAllowedSet(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Exchange(context.Background(), &Request{
		GrantType: oauth.GrantClientCredentials,
		Scope:     "openid admin",
	})
	requireOAuthError(t, err, oauth.CodeInvalidScope)
}

func TestExchange_RefreshToken_Rotation(t *testing.T) {
	f := newFixture(t)
	code := f.issueCode(t, "", "")

	initial, err := f.service.Exchange(context.Background(), &Request{
		GrantType:   oauth.GrantAuthorizationCode,
		Code:        code,
		RedirectURI: redirectURI,
	})
	require.NoError(t, err)
	first := initial.RefreshToken

	rotated, err := f.service.Exchange(context.Background(), &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: first,
	})
	require.NoError(t, err)
	second := rotated.RefreshToken
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	// the consumed token is dead
	_, err = f.service.Exchange(context.Background(), &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: first,
	})
	requireOAuthError(t, err, oauth.CodeInvalidGrant)

	// its successor works
	_, err = f.service.Exchange(context.Background(), &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: second,
	})
	require.NoError(t, err)

	record := f.access.last(t)
	assert.NotNil(t, record.SourceRefreshTokenID)
	assert.Nil(t, record.AuthorizationCodeID)
}

func TestExchange_RefreshToken_MissingParam(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Exchange(context.Background(), &Request{
		GrantType: oauth.GrantRefreshToken,
	})
	requireOAuthError(t, err, oauth.CodeInvalidRequest)
}

func TestExchange_RefreshToken_UnknownRevokedAndExpiredCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Exchange(ctx, &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: "no-such-token",
	})
	requireOAuthError(t, err, oauth.CodeInvalidGrant)
	unknownMsg := err.Error()

	revokedAt := time.Now()
	require.NoError(t, f.refresh.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "revoked-token",
		UserID:    f.user.ID,
		ClientID:  f.client.ID,
		SessionID: 3,
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: &revokedAt,
	}))
	_, err = f.service.Exchange(ctx, &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: "revoked-token",
	})
	requireOAuthError(t, err, oauth.CodeInvalidGrant)
	assert.Equal(t, unknownMsg, err.Error())

	require.NoError(t, f.refresh.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "expired-token",
		UserID:    f.user.ID,
		ClientID:  f.client.ID,
		SessionID: 3,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	_, err = f.service.Exchange(ctx, &Request{
		GrantType:    oauth.GrantRefreshToken,
		RefreshToken: "expired-token",
	})
	requireOAuthError(t, err, oauth.CodeInvalidGrant)
	assert.Equal(t, unknownMsg, err.Error())
}
