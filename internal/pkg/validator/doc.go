// Package validator validates request structs and reports failures as a
// field-to-message map keyed by the field's JSON (or form) name.
package validator
