package validator

// Validator validates annotated structs.
type Validator interface {
	// Validate returns nil when data passes all struct tag rules, or an error
	// describing the failed fields.
	Validate(data any) error
}
