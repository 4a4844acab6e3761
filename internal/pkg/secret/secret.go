// Package secret seals values at rest and mints random opaque tokens.
package secret

import "errors"

var (
	// ErrNotConfigured indicates a missing or zero key.
	ErrNotConfigured = errors.New("secret: sealer not configured")
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("secret: key must be 32 bytes")
	// ErrEmptyPlaintext indicates nothing to seal.
	ErrEmptyPlaintext = errors.New("secret: plaintext is empty")
	// ErrMalformed indicates a truncated or foreign ciphertext.
	ErrMalformed = errors.New("secret: malformed ciphertext")
	// ErrOpenFailed hides whether the key, the scope or the payload was wrong.
	ErrOpenFailed = errors.New("secret: open failed")
)

// Purpose separates ciphertexts of different kinds so one can never be opened as another.
type Purpose string

// PurposeAPIKey scopes sealed API keys.
const PurposeAPIKey Purpose = "api_key"

// Scope is bound into the ciphertext as additional authenticated data.
type Scope struct {
	Subject string
	Purpose Purpose
}

// Sealer encrypts and authenticates small values.
type Sealer interface {
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}
