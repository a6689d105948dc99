package models

import (
	"errors"
	"strings"
	"time"
)

var errUnrecognizedLayout = errors.New("unrecognized timestamp layout")

// Layouts tried in order. Values without a zone offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or date-time.
// The returned time is normalized to UTC at microsecond precision.
func ParseTimestamp(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, &ParseError{Field: field, Value: value, Err: errors.New("empty value")}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return Normalize(parsed), nil
		}
	}
	return time.Time{}, &ParseError{Field: field, Value: value, Err: errUnrecognizedLayout}
}

// ParseOptionalTimestamp parses value when present; an empty value yields nil.
func ParseOptionalTimestamp(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
