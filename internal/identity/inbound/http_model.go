package inbound

import (
	"time"

	"github.com/shandysiswandi/otpify/internal/identity/usecase"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	APIKey    string    `json:"api_key"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u usecase.UserOutput) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		APIKey:    u.APIKey,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PasswordForgotRequest struct {
	Email string `json:"email"`
}

type PasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

const (
	msgPasswordForgot = "If an account exists with that email, a password reset link has been sent."
	msgPasswordReset  = "Password has been reset successfully. You can now login with your new password."
)
