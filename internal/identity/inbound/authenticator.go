package inbound

import (
	"context"
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

// HeaderAPIKey carries integrator credentials.
const HeaderAPIKey = "X-API-KEY"

type authUsecase interface {
	AuthenticateByToken(ctx context.Context, token string) (*usecase.AuthOutput, error)
	AuthenticateByAPIKey(ctx context.Context, key string) (*usecase.AuthOutput, error)
}

// SessionAuthenticator accepts "Authorization: Bearer <jwt>".
func SessionAuthenticator(uc authUsecase) router.Authenticator {
	return router.AuthenticatorFunc(func(r *http.Request) (router.Principal, error) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			return router.Principal{}, errNotAuthenticated
		}

		out, err := uc.AuthenticateByToken(r.Context(), token)
		if err != nil {
			return router.Principal{}, err
		}

		return router.Principal{UserID: out.UserID, Email: out.Email, Method: router.AuthMethodSession}, nil
	})
}

// APIKeyAuthenticator accepts the X-API-KEY header.
func APIKeyAuthenticator(uc authUsecase) router.Authenticator {
	return router.AuthenticatorFunc(func(r *http.Request) (router.Principal, error) {
		key := strings.TrimSpace(r.Header.Get(HeaderAPIKey))

		out, err := uc.AuthenticateByAPIKey(r.Context(), key)
		if err != nil {
			return router.Principal{}, err
		}

		return router.Principal{
			UserID:     out.UserID,
			Email:      out.Email,
			Method:     router.AuthMethodAPIKey,
			Credential: key,
		}, nil
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
