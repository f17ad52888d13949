package keys

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"sort"
)

// Provider holds the active signing key and the full published
// verification key set. It is built once at startup and shared read-only
// afterwards; rotation means restarting with a new active key while the
// retired public keys stay in the set.
type Provider struct {
	kid string
	key *rsa.PrivateKey
	set jwk.Set
}

// New builds a Provider from private keys keyed by kid. Every public
// half is published; activeKID selects the signing key. With a single
// key activeKID may be left empty.
func New(privateKeys map[string]*rsa.PrivateKey, activeKID string) (*Provider, error) {
	if len(privateKeys) == 0 {
		return nil, fmt.Errorf("no signing keys provided")
	}
	if activeKID == "" {
		if len(privateKeys) != 1 {
			return nil, fmt.Errorf("active_kid is required when more than one key is loaded")
		}
		for kid := range privateKeys {
			activeKID = kid
		}
	}
	active, ok := privateKeys[activeKID]
	if !ok {
		return nil, fmt.Errorf("active key %q not found among loaded keys", activeKID)
	}

	kids := make([]string, 0, len(privateKeys))
	for kid := range privateKeys {
		kids = append(kids, kid)
	}
	sort.Strings(kids)

	set := jwk.NewSet()
	for _, kid := range kids {
		jwkKey, err := jwk.New(privateKeys[kid].Public())
		if err != nil {
			return nil, fmt.Errorf("failed to create JWK for %q: %w", kid, err)
		}
		_ = jwkKey.Set(jwk.KeyIDKey, kid)
		_ = jwkKey.Set(jwk.AlgorithmKey, jwa.RS256)
		_ = jwkKey.Set(jwk.KeyUsageKey, string(jwk.ForSignature))
		set.Add(jwkKey)
	}

	return &Provider{kid: activeKID, key: active, set: set}, nil
}

// ActiveKID returns the key identifier placed in signed token headers
func (p *Provider) ActiveKID() string {
	return p.kid
}

// ActiveKey returns the private key used for signing
func (p *Provider) ActiveKey() *rsa.PrivateKey {
	return p.key
}

// PublicKeys returns the published verification key set
func (p *Provider) PublicKeys() jwk.Set {
	return p.set
}

// parsePrivateKeyPEM accepts PKCS1 and PKCS8 encoded RSA keys
func parsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("invalid private key format")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return key, nil
}
