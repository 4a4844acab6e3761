package inbound

import (
	"github.com/shandysiswandi/otpify/internal/dashboard/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

var errNotAuthenticated = goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)

// HTTPEndpoint exposes the dashboard read handlers.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Stats(r *router.Request) (any, error) {
	userID, err := sessionUser(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Stats(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return toStatsResponse(*resp), nil
}

func (h *HTTPEndpoint) Logs(r *router.Request) (any, error) {
	userID, err := sessionUser(r)
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt("limit", usecase.DefaultLogsLimit)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Logs(r.Context(), usecase.LogsInput{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}

	return toLogResponses(resp), nil
}

func sessionUser(r *router.Request) (string, error) {
	p, ok := r.Principal()
	if !ok || p.Method != router.AuthMethodSession {
		return "", errNotAuthenticated
	}

	return p.UserID, nil
}
