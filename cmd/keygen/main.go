// Command keygen writes the ES256 key pair that signs and verifies access
// tokens. The API only needs the public half (jwt.public_key_path).
package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"taskhub/pkg/jwt"
)

func main() {
	log := zap.Must(zap.NewDevelopment())
	defer func() { _ = log.Sync() }()

	var dir string

	flag.StringVar(&dir, "dir", "certs", "Directory to write the key pair to")
	flag.Parse()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatal("Failed to create key directory", zap.String("dir", dir), zap.Error(err))
	}

	if err := jwt.WriteKeyPair(dir); err != nil {
		log.Fatal("Failed to write key pair", zap.Error(err))
	}

	log.Info("Key pair written",
		zap.String("private", jwt.PrivateKeyFile),
		zap.String("public", jwt.PublicKeyFile),
		zap.String("dir", dir),
	)
}
