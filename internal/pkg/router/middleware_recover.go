package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/otpify/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a logged 500.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				//nolint:err113,errorlint // this must compare directly
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(r.Context(), "panic recovered", "panic", rvr, "stack", paths)
				} else {
					slog.ErrorContext(r.Context(), "panic recovered", "panic", rvr, "stack", string(stack))
				}

				writeJSON(w, errorResponse{Detail: "Internal server error"}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
