package dataset

import (
	"errors"
	"fmt"
)

// ErrNoTable is returned by operations handed a nil table, typically after a failed load.
var ErrNoTable = errors.New("no table loaded")

// ErrMissingColumn matches every *MissingColumnError via errors.Is.
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError reports an optional column a computation needed.
type MissingColumnError struct {
	Column string
	// Message is the user-facing explanation, e.g. "No genre information available".
	Message string
}

func (e *MissingColumnError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing column %q", e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// LoadError wraps any failure while reading a source file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error loading data from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
