package inbound

import (
	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

var errMissingAPIKey = goerror.NewBusiness("API Key header missing", goerror.CodeForbidden)

// HTTPEndpoint exposes the OTP handlers.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	userID, err := apiKeyUser(r)
	if err != nil {
		return nil, err
	}

	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Send(r.Context(), usecase.SendInput{UserID: userID, Email: req.Email})
	if err != nil {
		return nil, err
	}

	return MessageResponse{Message: resp.Message}, nil
}

func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	userID, err := apiKeyUser(r)
	if err != nil {
		return nil, err
	}

	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: userID,
		Email:  req.Email,
		OTP:    req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return MessageResponse{Message: resp.Message}, nil
}

func apiKeyUser(r *router.Request) (string, error) {
	p, ok := r.Principal()
	if !ok || p.Method != router.AuthMethodAPIKey {
		return "", errMissingAPIKey
	}

	return p.UserID, nil
}
