package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpify/internal/identity/usecase"
	"github.com/shandysiswandi/otpify/internal/pkg/goerror"
	"github.com/shandysiswandi/otpify/internal/pkg/instrument"
	"github.com/shandysiswandi/otpify/internal/pkg/router"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

var created = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeUC struct {
	lastLogin  usecase.LoginInput
	lastReset  usecase.PasswordResetInput
	forgotErr  error
	regenCalls int
}

func (f *fakeUC) user(id string) *usecase.UserOutput {
	return &usecase.UserOutput{ID: id, Name: "Ada", Email: "ada@example.com", APIKey: "otp_key", IsActive: true, CreatedAt: created}
}

func (f *fakeUC) Register(_ context.Context, in usecase.RegisterInput) (*usecase.UserOutput, error) {
	if in.Email == "taken@example.com" {
		return nil, goerror.NewBusiness("The user with this email already exists in the system", goerror.CodeConflict)
	}
	return f.user("u-1"), nil
}

func (f *fakeUC) Login(_ context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
	f.lastLogin = in
	if in.Password != "Str0ngPass!" {
		return nil, goerror.NewBusiness("Incorrect email or password", goerror.CodeUnauthorized)
	}
	return &usecase.LoginOutput{AccessToken: "jwt", TokenType: usecase.TokenTypeBearer, User: *f.user("u-1")}, nil
}

func (f *fakeUC) PasswordForgot(context.Context, usecase.PasswordForgotInput) error {
	return f.forgotErr
}

func (f *fakeUC) PasswordReset(_ context.Context, in usecase.PasswordResetInput) error {
	f.lastReset = in
	return nil
}

func (f *fakeUC) Me(_ context.Context, userID string) (*usecase.UserOutput, error) {
	return f.user(userID), nil
}

func (f *fakeUC) RegenerateAPIKey(_ context.Context, userID string) (*usecase.UserOutput, error) {
	f.regenCalls++
	u := f.user(userID)
	u.APIKey = "otp_new"
	return u, nil
}

func (f *fakeUC) AuthenticateByToken(_ context.Context, token string) (*usecase.AuthOutput, error) {
	if token != "good" {
		return nil, goerror.NewBusiness("Could not validate credentials", goerror.CodeUnauthorized)
	}
	return &usecase.AuthOutput{UserID: "u-1", Email: "ada@example.com"}, nil
}

func (f *fakeUC) AuthenticateByAPIKey(_ context.Context, key string) (*usecase.AuthOutput, error) {
	switch key {
	case "":
		return nil, goerror.NewBusiness("API Key header missing", goerror.CodeForbidden)
	case "otp_key":
		return &usecase.AuthOutput{UserID: "u-1", Email: "ada@example.com"}, nil
	default:
		return nil, goerror.NewBusiness("Invalid API Key", goerror.CodeForbidden)
	}
}

func setup() (*router.Router, *fakeUC) {
	f := &fakeUC{}
	r := router.NewRouter(router.Config{UUID: fixedID("cid"), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f, SessionAuthenticator(f))
	return r, f
}

func serve(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHTTP_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{name: "created", body: `{"name":"Ada","email":"ada@example.com","password":"Str0ngPass!"}`, wantStatus: http.StatusOK},
		{name: "duplicate", body: `{"email":"taken@example.com","password":"Str0ngPass!"}`, wantStatus: http.StatusBadRequest, wantDetail: "The user with this email already exists in the system"},
		{name: "malformed", body: `{"email":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, _ := setup()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			// Act
			rec, body := serve(r, req)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantDetail != "" && body["detail"] != tt.wantDetail {
				t.Fatalf("detail = %v", body["detail"])
			}
			if tt.wantStatus == http.StatusOK {
				for _, key := range []string{"id", "name", "email", "api_key", "is_active", "created_at"} {
					if _, ok := body[key]; !ok {
						t.Fatalf("user json lacks %q: %v", key, body)
					}
				}
			}
		})
	}
}

func TestHTTP_Login_Form(t *testing.T) {
	// Arrange
	r, f := setup()
	form := url.Values{"username": {"ada@example.com"}, "password": {"Str0ngPass!"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// Act
	rec, body := serve(r, req)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if body["access_token"] != "jwt" || body["token_type"] != "bearer" {
		t.Fatalf("body = %v", body)
	}
	if f.lastLogin.Username != "ada@example.com" {
		t.Fatalf("username not forwarded: %+v", f.lastLogin)
	}
}

func TestHTTP_Login_WrongPassword(t *testing.T) {
	r, _ := setup()
	form := url.Values{"username": {"ada@example.com"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, body := serve(r, req)

	if rec.Code != http.StatusUnauthorized || body["detail"] != "Incorrect email or password" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestHTTP_PasswordFlows(t *testing.T) {
	r, f := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"ada@example.com"}`))
	rec, body := serve(r, req)
	if rec.Code != http.StatusOK || body["message"] != msgPasswordForgot {
		t.Fatalf("forgot: status = %d, body = %v", rec.Code, body)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", strings.NewReader(`{"token":"abc","new_password":"N3wPassword!"}`))
	rec, body = serve(r, req)
	if rec.Code != http.StatusOK || body["message"] != msgPasswordReset {
		t.Fatalf("reset: status = %d, body = %v", rec.Code, body)
	}
	if f.lastReset.Token != "abc" || f.lastReset.NewPassword != "N3wPassword!" {
		t.Fatalf("reset input = %+v", f.lastReset)
	}
}

func TestHTTP_SessionRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		wantStatus int
		wantDetail string
	}{
		{name: "me without header", method: http.MethodGet, path: "/api/auth/me", wantStatus: http.StatusUnauthorized, wantDetail: "Not authenticated"},
		{name: "me with bad token", method: http.MethodGet, path: "/api/auth/me", auth: "Bearer bad", wantStatus: http.StatusUnauthorized, wantDetail: "Could not validate credentials"},
		{name: "me with basic scheme", method: http.MethodGet, path: "/api/auth/me", auth: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "me", method: http.MethodGet, path: "/api/auth/me", auth: "Bearer good", wantStatus: http.StatusOK},
		{name: "regenerate", method: http.MethodPost, path: "/api/auth/regenerate-api-key", auth: "bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, _ := setup()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			// Act
			rec, body := serve(r, req)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantDetail != "" && body["detail"] != tt.wantDetail {
				t.Fatalf("detail = %v", body["detail"])
			}
		})
	}
}

func TestAPIKeyAuthenticator(t *testing.T) {
	f := &fakeUC{}
	auth := APIKeyAuthenticator(f)

	tests := []struct {
		name     string
		key      string
		wantCode goerror.Code
		wantOK   bool
	}{
		{name: "missing", key: "", wantCode: goerror.CodeForbidden},
		{name: "unknown", key: "otp_other", wantCode: goerror.CodeForbidden},
		{name: "valid", key: " otp_key ", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/otp/send", nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}

			p, err := auth.Authenticate(req)

			if tt.wantOK {
				if err != nil {
					t.Fatalf("Authenticate() error = %v", err)
				}
				if p.Method != router.AuthMethodAPIKey || p.Credential != "otp_key" || p.UserID != "u-1" {
					t.Fatalf("principal = %+v", p)
				}
				return
			}
			if goerror.CodeOf(err) != tt.wantCode {
				t.Fatalf("Authenticate() error = %v, want code %v", err, tt.wantCode)
			}
		})
	}
}
