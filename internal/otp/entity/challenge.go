package entity

import "time"

// State is the lifecycle position of a challenge. Only StateActive accepts
// codes; every other state is terminal until a new send replaces the row.
type State string

const (
	StateActive     State = "active"
	StateSuperseded State = "superseded"
	StateConsumed   State = "consumed"
	StateExpired    State = "expired"
	StateExhausted  State = "exhausted"
)

// Challenge is the single stored OTP for an email.
type Challenge struct {
	ID                string    `db:"id"`
	Email             string    `db:"email"`
	CodeDigest        string    `db:"code_digest"`
	State             State     `db:"state"`
	AttemptsRemaining int       `db:"attempts_remaining"`
	CreatedAt         time.Time `db:"created_at"`
	ExpiresAt         time.Time `db:"expires_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Transition is a conditional update: it applies only while the row still
// matches Email, ID, StateActive and ExpectAttempts.
type Transition struct {
	Email          string
	ID             string
	ExpectAttempts int
	NextState      State
	NextAttempts   int
	At             time.Time
}

// Outcome is the result of presenting a code to a challenge.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeAlreadyUsed
	OutcomeExpired
	OutcomeExhausted
	OutcomeInvalid
	OutcomeVerified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAlreadyUsed:
		return "already_used"
	case OutcomeExpired:
		return "expired"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Decide evaluates a verification attempt. match must already be computed in
// constant time by the caller. A nil Transition means nothing is written.
func Decide(c *Challenge, now time.Time, match bool) (Outcome, *Transition) {
	if c == nil {
		return OutcomeNotFound, nil
	}

	switch c.State {
	case StateConsumed:
		return OutcomeAlreadyUsed, nil
	case StateExhausted:
		return OutcomeExhausted, nil
	case StateActive:
	default:
		return OutcomeNotFound, nil
	}

	if now.After(c.ExpiresAt) {
		return OutcomeExpired, c.transition(StateExpired, c.AttemptsRemaining, now)
	}

	if c.AttemptsRemaining <= 0 {
		return OutcomeExhausted, c.transition(StateExhausted, 0, now)
	}

	if !match {
		left := c.AttemptsRemaining - 1
		next := StateActive
		if left == 0 {
			next = StateExhausted
		}
		return OutcomeInvalid, c.transition(next, left, now)
	}

	return OutcomeVerified, c.transition(StateConsumed, c.AttemptsRemaining, now)
}

func (c *Challenge) transition(next State, attempts int, now time.Time) *Transition {
	return &Transition{
		Email:          c.Email,
		ID:             c.ID,
		ExpectAttempts: c.AttemptsRemaining,
		NextState:      next,
		NextAttempts:   attempts,
		At:             now,
	}
}
