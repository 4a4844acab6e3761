// Package clock provides a tiny time abstraction.
//
// Expiry and rate window logic read time through Clocker so tests can freeze
// and advance it with Manual.
package clock
