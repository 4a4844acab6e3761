package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt implements Hash using bcrypt.
//
// When a pepper is configured the plaintext is first keyed through
// HMAC-SHA256 with the pepper, so the input to bcrypt stays at 44 bytes no
// matter how long the password is (bcrypt rejects more than 72 bytes).
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt returns a bcrypt-based hasher. A cost below bcrypt.MinCost falls
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	return &Bcrypt{cost: cost, pepper: []byte(pepper)}
}

// Hash hashes plaintext using bcrypt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}

func (h *Bcrypt) input(plaintext string) []byte {
	if len(h.pepper) == 0 {
		return []byte(plaintext)
	}

	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))

	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
