package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

const (
	PrivateKeyFile = "ecdsa_private.pem"
	PublicKeyFile  = "ecdsa_public.pem"
)

// WriteKeyPair generates a P-256 key pair and stores it in dir as
// PrivateKeyFile (owner only) and PublicKeyFile. Existing files are replaced.
func WriteKeyPair(dir string) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(filepath.Join(dir, PrivateKeyFile), "EC PRIVATE KEY", der, 0o600); err != nil {
		return err
	}

	der, err = x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	return writePEM(filepath.Join(dir, PublicKeyFile), "PUBLIC KEY", der, 0o644)
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
