package authorize

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp/internal/domain/models"
	"idp/internal/oauth"
	"idp/internal/storage"
)

type fakeClients struct {
	clients map[string]*models.Client
}

func (f *fakeClients) ClientByClientID(_ context.Context, clientID string) (*models.Client, error) {
	c, ok := f.clients[clientID]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	return c, nil
}

func newValidator(clients ...*models.Client) *Validator {
	byID := make(map[string]*models.Client)
	for _, c := range clients {
		byID[c.ClientID] = c
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, &fakeClients{clients: byID})
}

func testClient() *models.Client {
	return &models.Client{
		ID:           1,
		ClientID:     "abc",
		Secret:       "secret",
		GrantTypes:   []string{oauth.GrantAuthorizationCode, oauth.GrantRefreshToken},
		Scopes:       []string{"openid", "profile", "email"},
		RedirectURIs: []string{"https://app/cb"},
	}
}

func validRequest() Request {
	return Request{
		ClientID:     "abc",
		RedirectURI:  "https://app/cb",
		ResponseType: oauth.ResponseTypeCode,
		Scope:        "openid profile",
		State:        "xyz",
	}
}

func requireOAuthError(t *testing.T, err error, code string, fatal bool) *oauth.Error {
	t.Helper()
	oe, ok := oauth.AsError(err)
	require.True(t, ok, "expected a protocol error, got %v", err)
	assert.Equal(t, code, oe.Code)
	assert.Equal(t, fatal, oe.Fatal)
	return oe
}

func TestValidate_HappyPath(t *testing.T) {
	v := newValidator(testClient())

	client, err := v.Validate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "abc", client.ClientID)
}

func TestValidate_UnknownClientIsFatal(t *testing.T) {
	v := newValidator()

	_, err := v.Validate(context.Background(), validRequest())
	requireOAuthError(t, err, oauth.CodeInvalidClient, true)
}

func TestValidate_MissingClientIDIsFatal(t *testing.T) {
	v := newValidator(testClient())

	req := validRequest()
	req.ClientID = ""
	_, err := v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidClient, true)
}

func TestValidate_UnregisteredRedirectURIIsFatal(t *testing.T) {
	v := newValidator(testClient())

	for _, uri := range []string{"", "https://evil/cb", "https://app/cb/extra"} {
		req := validRequest()
		req.RedirectURI = uri
		_, err := v.Validate(context.Background(), req)
		requireOAuthError(t, err, "invalid_redirect_uri", true)
	}
}

func TestValidate_ResponseType(t *testing.T) {
	v := newValidator(testClient())

	req := validRequest()
	req.ResponseType = ""
	_, err := v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidRequest, false)

	req.ResponseType = "token"
	_, err = v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeUnsupportedResponseType, false)
}

func TestValidate_PKCEPairing(t *testing.T) {
	v := newValidator(testClient())

	req := validRequest()
	req.CodeChallenge = oauth.ComputeS256Challenge("verifier")
	_, err := v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidRequest, false)

	req = validRequest()
	req.CodeChallengeMethod = oauth.MethodS256
	_, err = v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidRequest, false)

	req = validRequest()
	req.CodeChallenge = "challenge"
	req.CodeChallengeMethod = "S512"
	_, err = v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidRequest, false)

	req = validRequest()
	req.CodeChallenge = oauth.ComputeS256Challenge("verifier")
	req.CodeChallengeMethod = oauth.MethodS256
	_, err = v.Validate(context.Background(), req)
	require.NoError(t, err)
}

func TestValidate_GrantNotAllowed(t *testing.T) {
	client := testClient()
	client.GrantTypes = []string{oauth.GrantClientCredentials}
	v := newValidator(client)

	_, err := v.Validate(context.Background(), validRequest())
	requireOAuthError(t, err, oauth.CodeUnauthorizedClient, false)
}

func TestValidate_ScopeOutsideAllowedSet(t *testing.T) {
	v := newValidator(testClient())

	req := validRequest()
	req.Scope = "openid admin"
	_, err := v.Validate(context.Background(), req)
	requireOAuthError(t, err, oauth.CodeInvalidScope, false)
}

func TestValidate_EmptyScopeIsAccepted(t *testing.T) {
	v := newValidator(testClient())

	req := validRequest()
	req.Scope = ""
	_, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
}
