package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/otp/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/clock"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fakeUC struct {
	lastSend   usecase.SendInput
	lastVerify usecase.VerifyInput
	sendErr    error
}

func (f *fakeUC) Send(_ context.Context, in usecase.SendInput) (*usecase.SendOutput, error) {
	f.lastSend = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &usecase.SendOutput{Message: "OTP sent successfully"}, nil
}

func (f *fakeUC) Verify(_ context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	f.lastVerify = in
	if in.OTP != "123456" {
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput)
	}
	return &usecase.VerifyOutput{Message: "OTP verified successfully"}, nil
}

var apiKeyAuth = router.AuthenticatorFunc(func(r *http.Request) (router.Principal, error) {
	switch key := r.Header.Get("X-API-KEY"); key {
	case "":
		return router.Principal{}, goerror.NewBusiness("API Key header missing", goerror.CodeForbidden)
	case "otp_key", "otp_other":
		return router.Principal{UserID: "u-1", Method: router.AuthMethodAPIKey, Credential: key}, nil
	default:
		return router.Principal{}, goerror.NewBusiness("Invalid API Key", goerror.CodeForbidden)
	}
})

func setup(sendLimit int) (*router.Router, *fakeUC) {
	f := &fakeUC{}
	clk := clock.NewManual(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	limiter := ratelimit.NewMemory(clk, ratelimit.Policies{
		ratelimit.ClassSend:   {Limit: sendLimit, Window: time.Hour},
		ratelimit.ClassVerify: {Limit: 1000, Window: time.Hour},
	})

	r := router.NewRouter(router.Config{UUID: fixedID("cid"), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f, apiKeyAuth, limiter, time.Second, clk)
	return r, f
}

func post(r http.Handler, path, key, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-KEY", key)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHTTP_Send(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		body       string
		sendErr    error
		wantStatus int
		wantDetail string
	}{
		{name: "sent", key: "otp_key", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusOK},
		{name: "missing key", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusForbidden, wantDetail: "API Key header missing"},
		{name: "unknown key", key: "otp_nope", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusForbidden, wantDetail: "Invalid API Key"},
		{name: "malformed", key: "otp_key", body: `{"email"`, wantStatus: http.StatusBadRequest},
		{
			name: "delivery failure", key: "otp_key", body: `{"email":"ada@example.com"}`,
			sendErr:    goerror.NewDelivery(context.DeadlineExceeded, "Failed to send OTP email"),
			wantStatus: http.StatusInternalServerError, wantDetail: "Failed to send OTP email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, f := setup(10)
			f.sendErr = tt.sendErr

			// Act
			rec, body := post(r, "/api/otp/send", tt.key, tt.body)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantDetail != "" && body["detail"] != tt.wantDetail {
				t.Fatalf("detail = %v", body["detail"])
			}
			if tt.wantStatus == http.StatusOK {
				if body["message"] != "OTP sent successfully" {
					t.Fatalf("body = %v", body)
				}
				if f.lastSend.UserID != "u-1" || f.lastSend.Email != "ada@example.com" {
					t.Fatalf("send input = %+v", f.lastSend)
				}
			}
		})
	}
}

func TestHTTP_Verify(t *testing.T) {
	r, f := setup(10)

	rec, body := post(r, "/api/otp/verify", "otp_key", `{"email":"ada@example.com","otp":"000000"}`)
	if rec.Code != http.StatusBadRequest || body["detail"] != "Invalid OTP" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}

	rec, body = post(r, "/api/otp/verify", "otp_key", `{"email":"ada@example.com","otp":"123456"}`)
	if rec.Code != http.StatusOK || body["message"] != "OTP verified successfully" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if f.lastVerify.UserID != "u-1" || f.lastVerify.OTP != "123456" {
		t.Fatalf("verify input = %+v", f.lastVerify)
	}
	if got := rec.Header().Get(router.HeaderRateLimitLimit); got != "1000" {
		t.Fatalf("limit header = %q", got)
	}
}

func TestHTTP_Send_RateLimitedPerKey(t *testing.T) {
	// Arrange
	r, _ := setup(2)
	body := `{"email":"ada@example.com"}`

	// Act
	for i := range 2 {
		if rec, _ := post(r, "/api/otp/send", "otp_key", body); rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i, rec.Code)
		}
	}
	blocked, detail := post(r, "/api/otp/send", "otp_key", body)
	other, _ := post(r, "/api/otp/send", "otp_other", body)
	verify, _ := post(r, "/api/otp/verify", "otp_key", `{"email":"ada@example.com","otp":"123456"}`)

	// Assert
	if blocked.Code != http.StatusTooManyRequests || detail["detail"] != "Rate limit exceeded" {
		t.Fatalf("status = %d, body = %v", blocked.Code, detail)
	}
	if blocked.Header().Get(router.HeaderRetryAfter) != "3600" {
		t.Fatalf("Retry-After = %q", blocked.Header().Get(router.HeaderRetryAfter))
	}
	if other.Code != http.StatusOK {
		t.Fatalf("another key should have its own window, status = %d", other.Code)
	}
	if verify.Code != http.StatusOK {
		t.Fatalf("verify class should be independent, status = %d", verify.Code)
	}
}
