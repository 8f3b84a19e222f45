package model

// ValidationError reports a draft field that failed the form rules.
// Code is the machine-readable value returned to API clients.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}
