package entity

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	active := func(attempts int) *Challenge {
		return &Challenge{
			ID:                "c-1",
			Email:             "a@b.com",
			State:             StateActive,
			AttemptsRemaining: attempts,
			ExpiresAt:         now.Add(time.Minute),
		}
	}

	tests := []struct {
		name      string
		c         *Challenge
		now       time.Time
		match     bool
		want      Outcome
		wantNext  State
		wantLeft  int
		wantWrite bool
	}{
		{name: "missing", c: nil, now: now, want: OutcomeNotFound},
		{name: "superseded", c: &Challenge{State: StateSuperseded}, now: now, want: OutcomeNotFound},
		{name: "expired state", c: &Challenge{State: StateExpired}, now: now, match: true, want: OutcomeNotFound},
		{name: "consumed", c: &Challenge{State: StateConsumed}, now: now, match: true, want: OutcomeAlreadyUsed},
		{name: "exhausted", c: &Challenge{State: StateExhausted}, now: now, match: true, want: OutcomeExhausted},
		{name: "past expiry with correct code", c: active(5), now: now.Add(2 * time.Minute), match: true, want: OutcomeExpired, wantNext: StateExpired, wantLeft: 5, wantWrite: true},
		{name: "zero attempts left", c: active(0), now: now, match: true, want: OutcomeExhausted, wantNext: StateExhausted, wantWrite: true},
		{name: "wrong code", c: active(5), now: now, want: OutcomeInvalid, wantNext: StateActive, wantLeft: 4, wantWrite: true},
		{name: "last wrong code", c: active(1), now: now, want: OutcomeInvalid, wantNext: StateExhausted, wantLeft: 0, wantWrite: true},
		{name: "correct code", c: active(3), now: now, match: true, want: OutcomeVerified, wantNext: StateConsumed, wantLeft: 3, wantWrite: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, tr := Decide(tt.c, tt.now, tt.match)

			// Assert
			if got != tt.want {
				t.Fatalf("Decide() = %v, want %v", got, tt.want)
			}
			if (tr != nil) != tt.wantWrite {
				t.Fatalf("transition = %+v, want write %v", tr, tt.wantWrite)
			}
			if tr == nil {
				return
			}
			if tr.NextState != tt.wantNext || tr.NextAttempts != tt.wantLeft {
				t.Fatalf("transition = %+v", tr)
			}
			if tr.ExpectAttempts != tt.c.AttemptsRemaining || tr.ID != tt.c.ID {
				t.Fatalf("transition guard = %+v", tr)
			}
		})
	}
}
