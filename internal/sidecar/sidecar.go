// Package sidecar encodes an item's label state as the compact text record
// stored next to its video file.
//
// A record is the concatenation of one entry per non-UNSET label: '+' plus
// the label name for YES, '-' plus the name for NO, no separators, UNSET
// omitted entirely. "+🥗+🐈-👎" marks 🥗 and 🐈 YES and 👎 NO. The empty
// record is valid and means no opinions at all.
package sidecar

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"mosaic/internal/labels"
)

// Ext is the record file extension.
const Ext = ".txt"

// FormatError reports a malformed record. Offset counts runes in the
// whitespace-stripped record text.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sidecar: %s at position %d", e.Reason, e.Offset)
}

// Encode renders assignments in order. Unset assignments are skipped, so
// encoding a store Record reproduces the on-disk form byte for byte.
func Encode(rec []labels.Assignment) string {
	var b strings.Builder
	for _, a := range rec {
		switch a.Value {
		case labels.Yes:
			b.WriteByte('+')
			b.WriteString(a.Label)
		case labels.No:
			b.WriteByte('-')
			b.WriteString(a.Label)
		}
	}
	return b.String()
}

// Decode parses a record into assignments, preserving encounter order so a
// valid record re-encodes byte-identically. Whitespace anywhere in the
// record is ignored. A label repeated in the record is returned once per
// occurrence; appliers take the last value.
func Decode(text string) ([]labels.Assignment, error) {
	src := []rune(stripSpace(text))
	var rec []labels.Assignment
	i := 0
	for i < len(src) {
		var v labels.Value
		switch src[i] {
		case '+':
			v = labels.Yes
		case '-':
			v = labels.No
		default:
			return nil, &FormatError{Offset: i, Reason: "expected '+' or '-'"}
		}
		i++
		start := i
		for i < len(src) && src[i] != '+' && src[i] != '-' {
			i++
		}
		if i == start {
			return nil, &FormatError{Offset: start, Reason: "empty label name"}
		}
		name := string(src[start:i])
		if err := labels.ValidateName(name); err != nil {
			return nil, &FormatError{Offset: start, Reason: fmt.Sprintf("invalid label %q", name)}
		}
		rec = append(rec, labels.Assignment{Label: name, Value: v})
	}
	return rec, nil
}

// PathFor returns the record path for a video file: the video path with its
// extension replaced by ".txt".
func PathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + Ext
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
