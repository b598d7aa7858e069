// Package credstore persists merchant OAuth credentials. Refresh tokens are
// encrypted at rest with a per-merchant key derived from a master key.
package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const masterKeySize = 32

// Cipher encrypts and decrypts refresh tokens with AES-256-GCM.
// The per-merchant data key is derived from the master key with HKDF,
// so a leaked row for one merchant does not expose the others' key.
type Cipher struct {
	masterKey []byte
}

// NewCipher creates a Cipher from a raw 32-byte master key.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes (AES-256)", masterKeySize)
	}
	return &Cipher{masterKey: masterKey}, nil
}

// NewCipherFromBase64 creates a Cipher from a base64-encoded master key.
func NewCipherFromBase64(encoded string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}
	return NewCipher(key)
}

// deriveKey derives the AES key for one merchant using HKDF with SHA-256.
func (c *Cipher) deriveKey(merchantID string) ([]byte, error) {
	info := []byte("pos-credential-" + merchantID)
	hkdfReader := hkdf.New(sha256.New, c.masterKey, nil, info)

	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		return nil, fmt.Errorf("failed to derive credential key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts plaintext for merchantID. The result is base64 encoded
// and contains: nonce || ciphertext || tag
func (c *Cipher) Encrypt(merchantID, plaintext string) (string, error) {
	key, err := c.deriveKey(merchantID)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a value produced by Encrypt for the same merchantID.
func (c *Cipher) Decrypt(merchantID, encrypted string) (string, error) {
	key, err := c.deriveKey(merchantID)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// GenerateMasterKey generates a new random 32-byte master key.
// This should be stored securely (environment variable, secrets manager, etc.)
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}
