package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp/internal/keys"
)

const testIssuer = "https://idp.example.com"

func newTestSigner(t *testing.T) (*Signer, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	provider, err := keys.New(map[string]*rsa.PrivateKey{"test-key": key}, "test-key")
	require.NoError(t, err)

	return NewSigner(provider, testIssuer), key
}

func TestSignAccessToken(t *testing.T) {
	signer, key := newTestSigner(t)

	signed, expiresAt, err := signer.SignAccessToken("user-123", "client-abc", "openid profile", "jti-1", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "test-key", parsed.Header["kid"])
	assert.Equal(t, "RS256", parsed.Header["alg"])

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, testIssuer, claims["iss"])
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "client-abc", claims["aud"])
	assert.Equal(t, "openid profile", claims["scope"])
	assert.Equal(t, "jti-1", claims["jti"])
}

func TestSignAccessToken_NoScopeClaimWhenEmpty(t *testing.T) {
	signer, key := newTestSigner(t)

	signed, _, err := signer.SignAccessToken("user-123", "client-abc", "", "jti-2", time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	_, present := claims["scope"]
	assert.False(t, present)
}

func TestSignIDToken(t *testing.T) {
	signer, key := newTestSigner(t)

	signed, _, err := signer.SignIDToken("user-123", "client-abc", "jti-3", time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, testIssuer, claims["iss"])
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "client-abc", claims["aud"])
}

func TestNewOpaqueToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewOpaqueToken()
		require.NoError(t, err)
		// 32 random bytes base64url-encoded without padding
		assert.Len(t, token, 43)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
