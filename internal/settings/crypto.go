package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const encPrefix = "enc:"

// SecretBox seals API keys with AES-256-GCM before they reach the database.
type SecretBox struct {
	key []byte
}

// NewSecretBox derives the sealing key from secret. When secret is empty the
// key is read from <dataDir>/secret.key, generating and persisting a random
// one on first use.
func NewSecretBox(secret, dataDir string) (*SecretBox, error) {
	if secret != "" {
		h := sha256.Sum256([]byte(secret))
		return &SecretBox{key: h[:]}, nil
	}

	keyPath := filepath.Join(dataDir, "secret.key")
	data, err := os.ReadFile(keyPath)
	switch {
	case err == nil && len(data) >= 32:
		return &SecretBox{key: data[:32]}, nil
	case err == nil:
		return nil, fmt.Errorf("secret key file %s is %d bytes, want at least 32", keyPath, len(data))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading secret key: %w", err)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating secret key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("writing secret key: %w", err)
	}
	return &SecretBox{key: key}, nil
}

func (b *SecretBox) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext and returns it base64 encoded behind the "enc:"
// prefix. The empty string is stored as is.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal. Values without the prefix are returned unchanged.
func (b *SecretBox) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, encPrefix) {
		return sealed, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, encPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}
