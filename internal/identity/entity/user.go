package entity

import (
	"errors"
	"time"
)

// ErrAPIKeyTaken is returned by the store when a freshly minted API key
// digest collides with an existing one.
var ErrAPIKeyTaken = errors.New("identity: api key digest already in use")

// APIKeyPrefix marks keys issued by this service.
const APIKeyPrefix = "otp_"

// User is an account as stored. The API key is kept sealed.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	APIKeySealed []byte    `db:"api_key_sealed"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type NewUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	APIKeyDigest string
	APIKeySealed []byte
	CreatedAt    time.Time
}

type APIKeyRotation struct {
	UserID    string
	Digest    string
	Sealed    []byte
	UpdatedAt time.Time
}

// ResetTicket is a pending password reset.
type ResetTicket struct {
	UserID    string    `db:"id"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"reset_expires_at"`
}
