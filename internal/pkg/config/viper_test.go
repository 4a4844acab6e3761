package config

import (
	"testing"
	"time"
)

const sampleYAML = `
app:
  server:
    cors: "http://localhost:3000, http://localhost:3001,,"
otp:
  ttl_seconds: 300
  digits: 6
mail:
  headers: "X-Mailer:otpify, X-Env:test"
`

func TestNewViperFromBytes(t *testing.T) {
	// Arrange
	defaults := map[string]any{
		"otp.max_attempts": 5,
		"otp.digits":       8,
	}

	// Act
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), defaults)

	// Assert
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	if got := cfg.GetSecond("otp.ttl_seconds"); got != 5*time.Minute {
		t.Fatalf("GetSecond() = %v", got)
	}
	if got := cfg.GetInt("otp.digits"); got != 6 {
		t.Fatalf("file value should win over default, got %d", got)
	}
	if got := cfg.GetInt("otp.max_attempts"); got != 5 {
		t.Fatalf("default not applied, got %d", got)
	}
	if got := cfg.GetArray("app.server.cors"); len(got) != 2 || got[1] != "http://localhost:3001" {
		t.Fatalf("GetArray() = %#v", got)
	}
	if got := cfg.GetMap("mail.headers"); got["X-Env"] != "test" {
		t.Fatalf("GetMap() = %#v", got)
	}
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("OTPIFY_OTP_TTL_SECONDS", "60")

	// Act
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), nil)

	// Assert
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	if got := cfg.GetSecond("otp.ttl_seconds"); got != time.Minute {
		t.Fatalf("env override ignored, got %v", got)
	}
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil, nil); err == nil {
		t.Fatalf("expected error for empty config type")
	}
}
