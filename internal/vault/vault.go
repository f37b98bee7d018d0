package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/clients"
)

// Vault encrypts and decrypts OAuth tokens at rest with AES-GCM. Callers
// never see ciphertext semantics beyond an opaque base64 string, so the
// scheme can be swapped by touching this package alone.
type Vault struct {
	key []byte
}

// New creates a Vault from the process-wide encryption key. The key must be
// 16, 24 or 32 bytes; an empty key is tolerated until a non-empty token has
// to be processed.
func New(key string) *Vault {
	return &Vault{key: []byte(key)}
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext). The
// empty string passes through without invoking the cipher, since tokens are
// optional for never-connected accounts.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if len(v.key) == 0 {
		return "", &clients.ConfigurationError{Message: "token encryption key is not set"}
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		slog.Info(err.Error())
		return "", &clients.ConfigurationError{Message: "invalid token encryption key"}
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	ciphertext := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)
	finalData := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(finalData), nil
}

// Decrypt reverses Encrypt. The empty string passes through.
func (v *Vault) Decrypt(encryptedData string) (string, error) {
	if encryptedData == "" {
		return "", nil
	}
	if len(v.key) == 0 {
		return "", &clients.ConfigurationError{Message: "token encryption key is not set"}
	}

	data, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		slog.Info(err.Error())
		return "", &clients.ConfigurationError{Message: "invalid token encryption key"}
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return string(plaintext), nil
}
