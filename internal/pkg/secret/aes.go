package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// Ciphertext layout: version (1 byte) | nonce (12 bytes) | sealed payload + tag.
const (
	aesGCMVersion byte = 1
	aesKeyLen          = 32
)

// AESGCM is a Sealer using AES-256-GCM with a single static key.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds an AES-256-GCM sealer from a 32 byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) == 0 {
		return nil, ErrNotConfigured
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secret: aes init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secret: gcm init: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

// Seal encrypts plaintext bound to scope.
func (a *AESGCM) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	nonceSize := a.aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+a.aead.Overhead())
	out[0] = aesGCMVersion
	if _, err := rand.Read(out[1 : 1+nonceSize]); err != nil {
		return nil, fmt.Errorf("secret: nonce: %w", err)
	}

	return a.aead.Seal(out, out[1:1+nonceSize], plaintext, scopeAAD(scope)), nil
}

// Open decrypts ciphertext produced by Seal with the same scope.
func (a *AESGCM) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	nonceSize := a.aead.NonceSize()
	if len(ciphertext) < 1+nonceSize+a.aead.Overhead() || ciphertext[0] != aesGCMVersion {
		return nil, ErrMalformed
	}

	plain, err := a.aead.Open(nil, ciphertext[1:1+nonceSize], ciphertext[1+nonceSize:], scopeAAD(scope))
	if err != nil {
		return nil, ErrOpenFailed
	}

	return plain, nil
}

func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256([]byte("subject=" + s.Subject + "\npurpose=" + string(s.Purpose) + "\n"))
	return sum[:]
}
