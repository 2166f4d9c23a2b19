package table

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by every table loader.
var (
	// ErrMalformedRecord marks a line that has too few fields or an
	// unparseable numeric value. It aborts the whole table load.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingFile marks an expected input file that does not exist.
	ErrMissingFile = errors.New("missing file")
)

// ParseError represents a malformed line with file and line context.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s at line %d: %s", e.File, e.Line, e.Message)
}

// Unwrap lets errors.Is match ErrMalformedRecord.
func (e *ParseError) Unwrap() error {
	return ErrMalformedRecord
}

// Field returns fields[i] with surrounding whitespace removed.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
