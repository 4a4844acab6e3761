package hash

import (
	"strings"
	"testing"
)

func TestBcrypt_HashVerify(t *testing.T) {
	tests := []struct {
		name   string
		pepper string
		pass   string
	}{
		{name: "no pepper", pepper: "", pass: "password123"},
		{name: "with pepper", pepper: "pepper", pass: "password123"},
		{name: "long password with pepper", pepper: "pepper", pass: strings.Repeat("x", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := NewBcrypt(4, tt.pepper)

			// Act
			hashed, err := h.Hash(tt.pass)

			// Assert
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if !h.Verify(string(hashed), tt.pass) {
				t.Fatalf("Verify() = false for correct password")
			}
			if h.Verify(string(hashed), tt.pass+"!") {
				t.Fatalf("Verify() = true for wrong password")
			}
		})
	}
}

func TestBcrypt_PepperMatters(t *testing.T) {
	hashed, err := NewBcrypt(4, "a").Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if NewBcrypt(4, "b").Verify(string(hashed), "password123") {
		t.Fatalf("different pepper must not verify")
	}
}

func TestHMACSHA256(t *testing.T) {
	// Arrange
	h := NewHMACSHA256("secret")

	// Act
	a := h.Sum("otp_key")
	b, _ := h.Hash("otp_key")

	// Assert
	if string(a) != string(b) {
		t.Fatalf("digest must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("hex digest length = %d", len(a))
	}
	if !h.Verify(string(a), "otp_key") || h.Verify(string(a), "otp_kez") {
		t.Fatalf("Verify() mismatch")
	}
	if string(NewHMACSHA256("other").Sum("otp_key")) == string(a) {
		t.Fatalf("secret must change digest")
	}
}
