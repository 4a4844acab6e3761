// Package jwt issues and verifies the stateless session tokens used by the
// dashboard. Tokens are HMAC signed (HS256 or HS512) and carry the user id as
// subject. There is no server side revocation.
package jwt
