package query

import (
	"errors"
	"fmt"
)

// ErrNoLabels is returned when evaluation is attempted against a snapshot
// with no registered labels.
var ErrNoLabels = errors.New("query: no labels registered")

// ErrEmptyExpression is returned for an empty or whitespace-only expression.
var ErrEmptyExpression = errors.New("query: empty expression")

// SyntaxError describes a malformed expression. Offset counts runes in the
// whitespace-stripped expression; Excerpt holds up to ten runes starting at
// the offending position.
type SyntaxError struct {
	Offset  int
	Excerpt string
	Reason  string
}

func (e *SyntaxError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("query: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("query: %s at offset %d: %q", e.Reason, e.Offset, e.Excerpt)
}

// IsSyntax reports whether err wraps a SyntaxError.
func IsSyntax(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsInputError reports whether err is a caller input problem (a malformed,
// empty, or unanswerable expression) as opposed to an internal failure.
func IsInputError(err error) bool {
	return IsSyntax(err) || errors.Is(err, ErrEmptyExpression) || errors.Is(err, ErrNoLabels)
}
