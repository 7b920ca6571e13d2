package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// TokenCipher seals OAuth tokens before they reach the database.
// The 32-byte key is derived from the configured key string via SHA-256.
// Nonce is prepended to the ciphertext; output is hex-encoded.
type TokenCipher struct {
	key [32]byte
}

func NewTokenCipher(key string) (*TokenCipher, error) {
	if key == "" {
		return nil, fmt.Errorf("token cipher key is empty")
	}
	return &TokenCipher{key: sha256.Sum256([]byte(key))}, nil
}

// Seal encrypts a token. Empty input stays empty so that "no refresh token"
// survives the round-trip as an empty column value.
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Open decrypts a token sealed by Seal.
func (c *TokenCipher) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	data, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("hex decode: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.key[:])
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}

	nonceSize := aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plaintext), nil
}
