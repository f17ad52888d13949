package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"idp/internal/keys"
	"time"
)

// Signer mints RS256-signed tokens with the active key; the kid header
// lets verifiers pick the matching public key from the published set.
type Signer struct {
	keys   *keys.Provider
	issuer string
}

// NewSigner creates a Signer bound to the service base URL as issuer
func NewSigner(provider *keys.Provider, issuer string) *Signer {
	return &Signer{keys: provider, issuer: issuer}
}

// SignAccessToken mints a signed access token.
//
// Returns the compact JWT and its expiry.
func (s *Signer) SignAccessToken(sub, aud, scope, jti string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": jti,
	}
	if scope != "" {
		claims["scope"] = scope
	}
	signed, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// SignIDToken mints a signed OIDC ID token for an authenticated user
func (s *Signer) SignIDToken(sub, aud, jti string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": jti,
	}
	signed, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *Signer) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keys.ActiveKID()

	signed, err := token.SignedString(s.keys.ActiveKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// NewOpaqueToken creates an unguessable 256-bit token value for refresh
// tokens and sessions
func NewOpaqueToken() (string, error) {
	token := make([]byte, 32)
	_, err := rand.Read(token)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}
