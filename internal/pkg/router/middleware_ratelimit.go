package router

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

var errRateLimited = goerror.NewBusiness("Rate limit exceeded", goerror.CodeTooManyRequest)

type clocker interface {
	Now() time.Time
}

// RateLimit admits the request through l under class before the handler runs.
// It must be installed after Authenticate: the window is keyed by the
// principal's API key, or by user id for session callers.
//
// A limiter failure rejects the request; limits are never skipped. A positive
// timeout bounds each admission check.
func RateLimit(l ratelimit.Limiter, class ratelimit.Class, clock clocker, timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if p, ok := PrincipalFrom(r.Context()); ok {
				key = p.Credential
				if key == "" {
					key = "user:" + p.UserID
				}
			}

			ctx, cancel := r.Context(), context.CancelFunc(func() {})
			if timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
			}
			d, err := l.Admit(ctx, key, class)
			cancel()
			if err != nil {
				writeError(r.Context(), w, goerror.NewServer(err))
				return
			}

			h := w.Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
			h.Set(HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := math.Ceil(d.RetryAfter(clock.Now()).Seconds())
				h.Set(HeaderRetryAfter, strconv.Itoa(int(retry)))
				writeError(r.Context(), w, errRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimitByIP is a coarse per-client guard for unauthenticated endpoints.
// It runs in memory on each replica.
func LimitByIP(requests int, window time.Duration) Middleware {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(r.Context(), w, goerror.NewBusiness("Too many requests", goerror.CodeTooManyRequest))
		}),
	)
}
