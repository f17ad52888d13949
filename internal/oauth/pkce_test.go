package oauth

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestVerifyCodeChallenge_S256(t *testing.T) {
	verifier := gofakeit.LetterN(43)
	challenge := ComputeS256Challenge(verifier)

	assert.True(t, VerifyCodeChallenge(challenge, MethodS256, verifier))
	assert.False(t, VerifyCodeChallenge(challenge, MethodS256, verifier+"x"))
	assert.False(t, VerifyCodeChallenge(challenge, MethodS256, ""))
	// the raw verifier is not a valid challenge value for S256
	assert.False(t, VerifyCodeChallenge(verifier, MethodS256, verifier))
}

func TestVerifyCodeChallenge_Plain(t *testing.T) {
	verifier := gofakeit.LetterN(43)

	assert.True(t, VerifyCodeChallenge(verifier, MethodPlain, verifier))
	assert.False(t, VerifyCodeChallenge(verifier, MethodPlain, verifier+"x"))
	assert.False(t, VerifyCodeChallenge(verifier, MethodPlain, ComputeS256Challenge(verifier)))
}

func TestVerifyCodeChallenge_NoChallengeStored(t *testing.T) {
	// a code issued without PKCE accepts any verifier
	assert.True(t, VerifyCodeChallenge("", "", ""))
	assert.True(t, VerifyCodeChallenge("", "", "anything"))
}

func TestVerifyCodeChallenge_UnknownMethod(t *testing.T) {
	verifier := gofakeit.LetterN(43)
	assert.False(t, VerifyCodeChallenge(verifier, "S512", verifier))
}
