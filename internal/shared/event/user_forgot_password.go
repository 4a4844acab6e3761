package event

const UserForgotPasswordDestination string = "user_forgot_password"
const UserForgotPasswordConsumerNotification string = "user_forgot_password_notification"

// UserForgotPasswordMessage carries the raw reset token to the mailer. Only
// its digest is stored.
type UserForgotPasswordMessage struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ResetToken string `json:"reset_token"`
}
