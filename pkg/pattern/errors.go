package pattern

import (
	"errors"
	"fmt"
)

// ErrMalformedPattern is matched by every [MalformedPatternError].
var ErrMalformedPattern = errors.New("malformed target pattern")

// MalformedPatternError reports a syntactically invalid pattern.
type MalformedPatternError struct {
	// Pattern is the offending input, verbatim.
	Pattern string
	// Reason says what is wrong with it.
	Reason string
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrMalformedPattern, e.Pattern, e.Reason)
}

func (e *MalformedPatternError) Unwrap() error {
	return ErrMalformedPattern
}

func malformed(raw, format string, args ...any) *MalformedPatternError {
	return &MalformedPatternError{
		Pattern: raw,
		Reason:  fmt.Sprintf(format, args...),
	}
}
