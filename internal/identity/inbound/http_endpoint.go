package inbound

import (
	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

// HTTPEndpoint exposes account and credential handlers.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(*resp), nil
}

// Login takes the OAuth2 password form: username carries the email.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	form, err := r.FormValues()
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username: form["username"],
		Password: form["password"],
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		User:        toUserResponse(resp.User),
	}, nil
}

func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return MessageResponse{Message: msgPasswordForgot}, nil
}

func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return MessageResponse{Message: msgPasswordReset}, nil
}

func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	userID, err := sessionUser(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Me(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(*resp), nil
}

func (h *HTTPEndpoint) RegenerateAPIKey(r *router.Request) (any, error) {
	userID, err := sessionUser(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.RegenerateAPIKey(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(*resp), nil
}

func sessionUser(r *router.Request) (string, error) {
	p, ok := r.Principal()
	if !ok || p.Method != router.AuthMethodSession {
		return "", errNotAuthenticated
	}

	return p.UserID, nil
}

var errNotAuthenticated = goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)
