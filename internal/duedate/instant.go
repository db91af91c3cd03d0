package duedate

import (
	"fmt"
	"time"
)

// FormatError reports a value that is not an absolute instant. It signals a
// data or programming error, never a user-facing condition.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed instant %q: %v", e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ParseInstant parses an RFC 3339 timestamp. Values without a zone offset
// are rejected: they name a wall clock, not an instant.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &FormatError{Value: s, Err: err}
	}
	return t.UTC(), nil
}

// FormatInstant renders t in the canonical UTC wire form
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
