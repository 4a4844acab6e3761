package validator

import (
	"errors"
	"testing"
)

type registerInput struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	NewCode  string `validate:"required"`
}

func TestNewV10Validator(t *testing.T) {
	// Act
	v, err := NewV10Validator()

	// Assert
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}
	if v == nil {
		t.Fatalf("NewV10Validator() returned nil validator")
	}
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		if err := v.Validate(registerInput{Email: "a@b.com", Password: "password123"}); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	})

	t.Run("json field names", func(t *testing.T) {
		// Act
		err := v.Validate(registerInput{Email: "nope", Password: "short"})

		// Assert
		var verr V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate() error = %T, want V10ValidationError", err)
		}
		if _, ok := verr["email"]; !ok {
			t.Fatalf("email missing from %v", verr)
		}
		if got := verr["password"]; got != "password must be 8-72 characters" {
			t.Fatalf("password message = %q", got)
		}
		if verr.First() != verr["email"] {
			t.Fatalf("First() = %q", verr.First())
		}
	})

	t.Run("form and fallback names", func(t *testing.T) {
		var verr V10ValidationError
		if !errors.As(v.Validate(loginForm{}), &verr) {
			t.Fatalf("expected validation error")
		}
		if _, ok := verr["username"]; !ok {
			t.Fatalf("username missing from %v", verr)
		}
		if _, ok := verr["new_code"]; !ok {
			t.Fatalf("new_code missing from %v", verr)
		}
	})
}

type profileInput struct {
	Name string `json:"name" validate:"omitempty,max=100,alphaspace"`
}

func TestV10Validator_AlphaSpace(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	if err := v.Validate(profileInput{Name: "Ana María O'Neil-Smith"}); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}

	err = v.Validate(profileInput{Name: "robert'); DROP TABLE"})
	var verr V10ValidationError
	if !errors.As(err, &verr) || verr["name"] != "name can only contain letters and spaces" {
		t.Fatalf("Validate() error = %v", err)
	}
}
