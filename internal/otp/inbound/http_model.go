package inbound

type SendRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
