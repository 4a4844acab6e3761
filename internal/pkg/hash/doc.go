// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt is used for passwords. HMACSHA256 is used where the digest must be
// deterministic so it can be looked up by value: API keys, reset tokens and
// OTP codes.
package hash
