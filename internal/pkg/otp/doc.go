// Package otp generates numeric one-time codes for email delivery.
//
// Codes are drawn uniformly from crypto/rand and always rendered at full width,
// so "004217" is a valid six digit code and is never shortened to "4217".
package otp
