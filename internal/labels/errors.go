package labels

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup of an item or label that was never
// registered. It signals a broken caller contract rather than bad user
// input: callers must register before setting or reading values.
type NotFoundError struct {
	Kind string // "item" or "label"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("labels: unknown %s %q", e.Kind, e.Name)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
