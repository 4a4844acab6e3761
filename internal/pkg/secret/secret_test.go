package secret

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newSealer(t *testing.T) *AESGCM {
	t.Helper()

	s, err := NewAESGCM(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	return s
}

func TestNewAESGCM_KeyLength(t *testing.T) {
	if _, err := NewAESGCM(nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("nil key error = %v", err)
	}
	if _, err := NewAESGCM([]byte("short")); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("short key error = %v", err)
	}
}

func TestAESGCM_SealOpen(t *testing.T) {
	// Arrange
	s := newSealer(t)
	scope := Scope{Subject: "user-1", Purpose: PurposeAPIKey}

	// Act
	ct, err := s.Seal([]byte("otp_abc"), scope)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	pt, err := s.Open(ct, scope)

	// Assert
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(pt) != "otp_abc" {
		t.Fatalf("Open() = %q", pt)
	}
}

func TestAESGCM_OpenRejects(t *testing.T) {
	// Arrange
	s := newSealer(t)
	scope := Scope{Subject: "user-1", Purpose: PurposeAPIKey}
	ct, _ := s.Seal([]byte("otp_abc"), scope)

	tampered := bytes.Clone(ct)
	tampered[len(tampered)-1] ^= 0xff

	tests := []struct {
		name  string
		ct    []byte
		scope Scope
		want  error
	}{
		{name: "other subject", ct: ct, scope: Scope{Subject: "user-2", Purpose: PurposeAPIKey}, want: ErrOpenFailed},
		{name: "tampered", ct: tampered, scope: scope, want: ErrOpenFailed},
		{name: "truncated", ct: ct[:5], scope: scope, want: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.ct, tt.scope); !errors.Is(err, tt.want) {
				t.Fatalf("Open() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRandom_Token(t *testing.T) {
	// Arrange
	r := NewRandom(0)

	// Act
	a, errA := r.Token("otp_")
	b, errB := r.Token("otp_")

	// Assert
	if errA != nil || errB != nil {
		t.Fatalf("Token() errors = %v, %v", errA, errB)
	}
	if !strings.HasPrefix(a, "otp_") || len(a) != len("otp_")+43 {
		t.Fatalf("Token() = %q", a)
	}
	if a == b {
		t.Fatalf("tokens must differ")
	}
	if strings.ContainsAny(a, "+/=") {
		t.Fatalf("token is not url safe: %q", a)
	}
}
