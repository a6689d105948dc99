package models

import "fmt"

// ValidationError reports a missing or malformed field on create.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ParseError reports a timestamp that is not valid ISO-8601.
// Field names the input that carried the value.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid ISO-8601 timestamp %q", e.Value)
	}
	return fmt.Sprintf("invalid ISO-8601 timestamp for %s: %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
