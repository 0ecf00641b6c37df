// Package security manages the signing secret for JWT auth mode.
// The secret is generated once on first run and persisted with owner-only
// permissions under the data directory.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const secretBytes = 32

// GenerateSecret creates a new random HMAC secret, hex-encoded.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// LoadOrCreateSecret loads the signing secret from disk, generating and
// persisting a new one on first run. Stored in dataDir/keys/jwt.secret.
func LoadOrCreateSecret(dataDir string) (string, error) {
	keyDir := filepath.Join(dataDir, "keys")
	path := filepath.Join(keyDir, "jwt.secret")

	if raw, err := os.ReadFile(path); err == nil {
		secret := strings.TrimSpace(string(raw))
		if _, err := hex.DecodeString(secret); err != nil {
			return "", fmt.Errorf("decode secret: %w", err)
		}
		return secret, nil
	}

	secret, err := GenerateSecret()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return "", fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}

	return secret, nil
}
