package jwt

import (
	"errors"
	"strings"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric implements JWT signing and verification using an HMAC secret.
type Symmetric struct {
	method    *libJWT.SigningMethodHMAC
	secret    []byte
	issuer    string
	audiences []string
	ttl       time.Duration
	clock     clocker
	uuid      generator
}

// NewSymmetric constructs an HMAC JWT implementation.
//
// The secret must be at least as long as the algorithm's digest: 32 bytes for
// HS256 and 64 bytes for HS512.
func NewSymmetric(cfg Config) (*Symmetric, error) {
	var method *libJWT.SigningMethodHMAC
	switch strings.ToUpper(strings.TrimSpace(cfg.Algorithm)) {
	case "", libJWT.SigningMethodHS256.Alg():
		method = libJWT.SigningMethodHS256
	case libJWT.SigningMethodHS512.Alg():
		method = libJWT.SigningMethodHS512
	default:
		return nil, ErrInvalidSigningMethod
	}

	if len(cfg.Secret) < method.Hash.Size() {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		method:    method,
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       cfg.TTL,
		clock:     cfg.Clock,
		uuid:      cfg.UUID,
	}, nil
}

// Generate creates a signed JWT whose subject is userID.
func (s *Symmetric) Generate(userID, email string) (string, error) {
	now := s.clock.Now()

	return libJWT.
		NewWithClaims(s.method, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        s.uuid.Generate(),
				Subject:   userID,
				Issuer:    s.issuer,
				Audience:  s.audiences,
				IssuedAt:  libJWT.NewNumericDate(now),
				NotBefore: libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
			},
			Email: email,
		}).
		SignedString(s.secret)
}

// Verify parses and validates a JWT string against the configured clock.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{s.method.Alg()}),
		libJWT.WithIssuer(s.issuer),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	}
	if len(s.audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(s.audiences...))
	}

	token, err := libJWT.ParseWithClaims(tokenStr, &claims, func(*libJWT.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
