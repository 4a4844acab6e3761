package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestRouter(checks map[string]HealthCheck) *Router {
	return NewRouter(Config{
		UUID:         fixedID("cid-test"),
		Instrument:   instrument.NewNoop(),
		HealthChecks: checks,
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}

	return out
}

func TestRouter_Welcome(t *testing.T) {
	// Arrange
	ro := newTestRouter(nil)
	rec := httptest.NewRecorder()

	// Act
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != WelcomeMessage {
		t.Fatalf("body = %v", body)
	}
	if rec.Header().Get(HeaderCorrelationID) != "cid-test" {
		t.Fatalf("correlation id header missing")
	}
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		want   int
	}{
		{
			name:   "no dependencies",
			checks: nil,
			want:   http.StatusOK,
		},
		{
			name: "database down",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return errors.New("refused") },
				"redis":    func(context.Context) error { return nil },
			},
			want: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ro := newTestRouter(tt.checks)
			rec := httptest.NewRecorder()

			// Act
			ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			// Assert
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouter_ErrorsUseDetail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "business error",
			err:        goerror.NewBusiness("OTP expired", goerror.CodeInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantDetail: "OTP expired",
		},
		{
			name:       "not found",
			err:        goerror.NewBusiness("No active OTP found for this email", goerror.CodeNotFound),
			wantStatus: http.StatusNotFound,
			wantDetail: "No active OTP found for this email",
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ro := newTestRouter(nil)
			ro.POST("/fail", func(*Request) (any, error) { return nil, tt.err })
			rec := httptest.NewRecorder()

			// Act
			ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fail", nil))

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeBody(t, rec); body["detail"] != tt.wantDetail {
				t.Fatalf("detail = %v, want %q", body["detail"], tt.wantDetail)
			}
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	ro := newTestRouter(nil)
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound || decodeBody(t, rec)["detail"] != "Not Found" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	ro := newTestRouter(nil)
	ro.GET("/boom", func(*Request) (any, error) { panic("boom") })
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthenticate(t *testing.T) {
	auth := AuthenticatorFunc(func(r *http.Request) (Principal, error) {
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			return Principal{}, goerror.NewBusiness("API Key header missing", goerror.CodeForbidden)
		}
		return Principal{UserID: "u1", Method: AuthMethodAPIKey, Credential: key}, nil
	})

	ro := newTestRouter(nil)
	ro.GET("/me", func(r *Request) (any, error) {
		p, _ := r.Principal()
		return map[string]string{"user_id": p.UserID}, nil
	}, Authenticate(auth))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d", rec.Code)
		}
		if decodeBody(t, rec)["detail"] != "API Key header missing" {
			t.Fatalf("body = %s", rec.Body.String())
		}
	})

	t.Run("principal reaches handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-API-KEY", "otp_abc")
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || decodeBody(t, rec)["user_id"] != "u1" {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRateLimit(t *testing.T) {
	// Arrange
	clk := clock.NewManual(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	limiter := ratelimit.NewMemory(clk, ratelimit.Policies{
		ratelimit.ClassSend: {Limit: 2, Window: time.Hour},
	})
	auth := AuthenticatorFunc(func(r *http.Request) (Principal, error) {
		return Principal{UserID: "u1", Method: AuthMethodAPIKey, Credential: r.Header.Get("X-API-KEY")}, nil
	})

	ro := newTestRouter(nil)
	ro.POST("/send", func(*Request) (any, error) {
		return map[string]string{"message": "ok"}, nil
	}, Authenticate(auth), RateLimit(limiter, ratelimit.ClassSend, clk, time.Second))

	call := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/send", nil)
		req.Header.Set("X-API-KEY", key)
		rec := httptest.NewRecorder()
		ro.ServeHTTP(rec, req)
		return rec
	}

	// Act
	first := call("key-a")
	second := call("key-a")
	third := call("key-a")
	other := call("key-b")

	// Assert
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("first two calls should pass, got %d and %d", first.Code, second.Code)
	}
	if second.Header().Get(HeaderRateLimitRemaining) != "0" {
		t.Fatalf("remaining = %q", second.Header().Get(HeaderRateLimitRemaining))
	}
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("third call status = %d", third.Code)
	}
	if third.Header().Get(HeaderRetryAfter) != "3600" {
		t.Fatalf("Retry-After = %q", third.Header().Get(HeaderRetryAfter))
	}
	if other.Code != http.StatusOK {
		t.Fatalf("other key should have its own window, got %d", other.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Admit(context.Context, string, ratelimit.Class) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsClosed(t *testing.T) {
	ro := newTestRouter(nil)
	ro.POST("/send", func(*Request) (any, error) {
		t.Fatalf("handler must not run")
		return nil, nil
	}, RateLimit(failingLimiter{}, ratelimit.ClassSend, clock.New(), 0))
	rec := httptest.NewRecorder()

	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

// hangingLimiter answers only when the caller gives up.
type hangingLimiter struct{}

func (hangingLimiter) Admit(ctx context.Context, _ string, _ ratelimit.Class) (ratelimit.Decision, error) {
	<-ctx.Done()
	return ratelimit.Decision{}, ctx.Err()
}

func TestRateLimit_Timeout(t *testing.T) {
	// Arrange
	ro := newTestRouter(nil)
	ro.POST("/send", func(*Request) (any, error) {
		t.Fatalf("handler must not run")
		return nil, nil
	}, RateLimit(hangingLimiter{}, ratelimit.ClassSend, clock.New(), 50*time.Millisecond))
	rec := httptest.NewRecorder()
	started := time.Now()

	// Act
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send", nil))

	// Assert
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Fatalf("limiter call returned after %v", elapsed)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
}

func TestLimitByIP(t *testing.T) {
	// Arrange
	ro := newTestRouter(nil)
	ro.POST("/login", func(*Request) (any, error) {
		return map[string]string{"message": "ok"}, nil
	}, LimitByIP(2, time.Minute))

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		ro.ServeHTTP(rec, req)
		return rec
	}

	// Act
	call("192.0.2.1:1000")
	call("192.0.2.1:1001")
	limited := call("192.0.2.1:1002")
	other := call("192.0.2.2:1000")

	// Assert
	if limited.Code != http.StatusTooManyRequests {
		t.Fatalf("third call status = %d", limited.Code)
	}
	if decodeBody(t, limited)["detail"] != "Too many requests" {
		t.Fatalf("body = %s", limited.Body.String())
	}
	if other.Code != http.StatusOK {
		t.Fatalf("other client should pass, got %d", other.Code)
	}
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"email":"a@b.com"}`},
		{name: "unknown field", body: `{"email":"a@b.com","x":1}`, wantErr: true},
		{name: "trailing document", body: `{"email":"a@b.com"}{}`, wantErr: true},
		{name: "malformed", body: `{"email":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}

			var dst payload
			err := req.DecodeBody(&dst)

			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && goerror.CodeOf(err) != goerror.CodeInvalidFormat {
				t.Fatalf("code = %v", goerror.CodeOf(err))
			}
		})
	}
}

func TestRequest_FormValues(t *testing.T) {
	// Arrange
	httpReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("username=a%40b.com&password=secret"))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req := &Request{Request: httpReq}

	// Act
	form, err := req.FormValues()

	// Assert
	if err != nil {
		t.Fatalf("FormValues() error = %v", err)
	}
	if form["username"] != "a@b.com" || form["password"] != "secret" {
		t.Fatalf("form = %v", form)
	}
}

func TestRequest_GetQueryInt(t *testing.T) {
	req := &Request{Request: httptest.NewRequest(http.MethodGet, "/?limit=25&bad=x", nil)}

	if v, err := req.GetQueryInt("limit", 10); err != nil || v != 25 {
		t.Fatalf("limit = %d, %v", v, err)
	}
	if v, err := req.GetQueryInt("missing", 10); err != nil || v != 10 {
		t.Fatalf("default = %d, %v", v, err)
	}
	if _, err := req.GetQueryInt("bad", 10); err == nil {
		t.Fatalf("expected error for non-integer")
	}
}
