package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math"
	"math/big"

	"github.com/pquerna/otp"
)

// Bounds on code width. Nine digits still fits the int32 that otp.Digits formats.
const (
	MinDigits = 4
	MaxDigits = 9
)

// ErrDigitsOutOfRange is returned by New for unsupported widths.
var ErrDigitsOutOfRange = errors.New("otp: digits out of range")

// Generator produces fixed-width numeric codes.
type Generator interface {
	Generate() (string, error)
	Digits() int
}

// Numeric implements Generator over a cryptographically secure source.
type Numeric struct {
	digits otp.Digits
	max    *big.Int
	rand   io.Reader
}

// New returns a Numeric generator producing codes of the given width.
func New(digits int) (*Numeric, error) {
	if digits < MinDigits || digits > MaxDigits {
		return nil, ErrDigitsOutOfRange
	}

	return &Numeric{
		digits: otp.Digits(digits),
		max:    big.NewInt(int64(math.Pow10(digits))),
		rand:   rand.Reader,
	}, nil
}

// Generate returns a zero padded code in [0, 10^digits).
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.max)
	if err != nil {
		return "", err
	}

	return n.digits.Format(int32(v.Int64())), nil //nolint:gosec // bounded by MaxDigits
}

// Digits returns the code width.
func (n *Numeric) Digits() int {
	return n.digits.Length()
}
