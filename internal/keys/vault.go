package keys

import (
	"context"
	"crypto/rsa"
	"fmt"
	"github.com/hashicorp/vault-client-go"
	"idp/internal/config"
	"time"
)

// FromVault loads signing keys from a Vault KV v2 secret. Every field of
// the secret except active_kid is a kid mapped to a PEM-encoded private
// key; active_kid names the signing key. Retired keys stay listed so
// their public halves remain published for verification.
func FromVault(ctx context.Context, conf config.VaultConfig) (*Provider, error) {
	client, err := vault.New(
		vault.WithAddress(conf.Address),
		vault.WithRequestTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating new vault client instance: %w", err)
	}
	if err = client.SetToken(conf.Token); err != nil {
		return nil, fmt.Errorf("error while setting token: %w", err)
	}

	resp, err := client.Secrets.KvV2Read(ctx, conf.Path, vault.WithMountPath(conf.Mount))
	if err != nil {
		return nil, fmt.Errorf("failed to read signing keys: %w", err)
	}
	if resp == nil || resp.Data.Data == nil {
		return nil, fmt.Errorf("empty response from vault")
	}

	var activeKID string
	privateKeys := make(map[string]*rsa.PrivateKey)
	for field, raw := range resp.Data.Data {
		value, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value for field %q", field)
		}
		if field == "active_kid" {
			activeKID = value
			continue
		}
		key, err := parsePrivateKeyPEM([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("failed to parse key %q: %w", field, err)
		}
		privateKeys[field] = key
	}

	return New(privateKeys, activeKID)
}
