// Package ratelimit implements fixed window admission control keyed by
// (caller key, operation class).
//
// The first call in a window opens it with a count of one. Later calls
// increment the count and are admitted while it stays within the class
// limit. The window is replaced, not slid, once its length has elapsed.
package ratelimit
