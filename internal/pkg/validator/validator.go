package validator

// Validator validates a struct using its tags.
type Validator interface {
	Validate(data any) error
}
