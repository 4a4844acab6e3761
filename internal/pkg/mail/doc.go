// Package mail sends transactional email through a pluggable provider.
//
// Drivers: "smtp" (net/smtp with STARTTLS or implicit TLS), "brevo" (Brevo
// transactional HTTP API) and "log" (writes the message to slog, for local
// development). Every driver honours the context deadline.
package mail
