package goerror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(nil, "email", "required"), want: http.StatusBadRequest},
		{name: "conflict", err: NewBusiness("dup", CodeConflict), want: http.StatusBadRequest},
		{name: "unauthorized", err: NewBusiness("no", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "forbidden", err: NewBusiness("no", CodeForbidden), want: http.StatusForbidden},
		{name: "not found", err: NewBusiness("gone", CodeNotFound), want: http.StatusNotFound},
		{name: "rate limited", err: NewBusiness("slow", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "delivery", err: NewDelivery(errors.New("smtp down"), "failed"), want: http.StatusInternalServerError},
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "server deadline", err: NewServer(fmt.Errorf("query: %w", context.DeadlineExceeded)), want: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}

			// Act
			got := gerr.StatusCode()

			// Assert
			if got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewInvalidInput_Fields(t *testing.T) {
	// Act
	err := NewInvalidInput(nil, "email", "email is required", "password")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error")
	}
	if gerr.Msg() != "Invalid request body" {
		t.Fatalf("odd kv should yield invalid body, got %q", gerr.Msg())
	}

	err = NewInvalidInput(nil, "email", "email is required")
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error")
	}
	if gerr.Fields()["email"] != "email is required" {
		t.Fatalf("unexpected fields: %v", gerr.Fields())
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewDelivery(nil, "x")); got != CodeDeliveryFailure {
		t.Fatalf("CodeOf() = %v", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Fatalf("CodeOf(plain) = %v", got)
	}
	if !errors.Is(NewServer(ErrStale), ErrStale) {
		t.Fatalf("server error should unwrap")
	}
}
