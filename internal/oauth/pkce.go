package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// VerifyCodeChallenge checks a PKCE verifier against the stored challenge.
// For S256 the challenge must equal the base64url (no padding) encoding of
// the verifier's SHA-256 digest; for plain the verifier must match the
// challenge byte for byte. Comparison is constant-time in both cases.
func VerifyCodeChallenge(challenge, method, verifier string) bool {
	if challenge == "" || method == "" {
		return true
	}

	switch method {
	case MethodPlain:
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	case MethodS256:
		digest := sha256.Sum256([]byte(verifier))
		hashed := base64.RawURLEncoding.EncodeToString(digest[:])
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(hashed)) == 1
	}
	return false
}

// ComputeS256Challenge derives the S256 challenge for a verifier
func ComputeS256Challenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
