package keys

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FromDir loads every *.pem private key in dir; the file name without
// extension becomes the key's kid.
func FromDir(dir string, activeKID string) (*Provider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	privateKeys := make(map[string]*rsa.PrivateKey)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pem") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", entry.Name(), err)
		}
		key, err := parsePrivateKeyPEM(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key file %s: %w", entry.Name(), err)
		}
		kid := strings.TrimSuffix(entry.Name(), ".pem")
		privateKeys[kid] = key
	}

	return New(privateKeys, activeKID)
}
