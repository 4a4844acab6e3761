package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpify/internal/pkg/config"
)

// middlewareMaintenance answers 503 for route patterns listed in
// app.maintenance.endpoints, e.g. "/api/otp/send".
func middlewareMaintenance(cfg config.Config) Middleware {
	var endpoints map[string]struct{}
	if cfg != nil {
		endpoints = lo.SliceToMap(cfg.GetArray("app.maintenance.endpoints"), func(e string) (string, struct{}) {
			return e, struct{}{}
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			if _, blocked := endpoints[route]; blocked {
				w.Header().Set(HeaderRetryAfter, "300")
				writeJSON(w, errorResponse{Detail: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
