package router

import (
	"context"
	"net/http"
)

// AuthMethod tells which credential authenticated the request.
type AuthMethod string

// Supported authentication methods.
const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Method AuthMethod
	// Credential is the raw API key for AuthMethodAPIKey; rate limiting keys on it.
	Credential string
}

// Authenticator turns request credentials into a Principal.
//
// Implementations return *goerror.Error values so the caller sees a uniform
// {"detail": ...} body with the right status.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (Principal, error)

// Authenticate calls f(r).
func (f AuthenticatorFunc) Authenticate(r *http.Request) (Principal, error) {
	return f(r)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticate rejects requests that a does not accept and stores the
// resulting Principal in the request context.
func Authenticate(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
