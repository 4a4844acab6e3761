package secret

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultTokenBytes yields 43 url-safe characters.
const DefaultTokenBytes = 32

// TokenGenerator mints opaque random tokens.
type TokenGenerator interface {
	Token(prefix string) (string, error)
}

// Random implements TokenGenerator with crypto/rand and unpadded base64url.
type Random struct {
	size int
}

// NewRandom returns a generator reading size random bytes per token.
func NewRandom(size int) *Random {
	if size <= 0 {
		size = DefaultTokenBytes
	}

	return &Random{size: size}
}

// Token returns prefix followed by the encoded random bytes.
func (r *Random) Token(prefix string) (string, error) {
	buf := make([]byte, r.size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
