package labels

import (
	"fmt"
	"strings"
)

// Value is the tri-state assignment of a label to an item.
type Value uint8

const (
	// Unset means the label holds no recorded opinion for the item.
	Unset Value = iota
	// Yes marks the label explicitly present.
	Yes
	// No marks the label explicitly absent.
	No
)

// String returns the canonical spelling of the value.
func (v Value) String() string {
	switch v {
	case Yes:
		return "YES"
	case No:
		return "NO"
	default:
		return "UNSET"
	}
}

// ParseValue converts the wire spelling of a tri-state value. Matching is
// case-insensitive and tolerates surrounding whitespace.
func ParseValue(raw string) (Value, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES":
		return Yes, nil
	case "NO":
		return No, nil
	case "UNSET":
		return Unset, nil
	default:
		return Unset, fmt.Errorf("labels: invalid value %q (want YES, NO, or UNSET)", raw)
	}
}

// Assignment pairs a label name with its tri-state value for one item.
type Assignment struct {
	Label string
	Value Value
}
