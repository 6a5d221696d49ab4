package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyFile indicates a source file yielded zero data rows. Fatal for
// that file only; the run continues with the remaining files.
var ErrEmptyFile = errors.New("file contains no data rows")

// ErrUnsupportedFormat indicates the file extension is not recognized
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SchemaError reports required columns missing after alias resolution.
// Whether it aborts the file or is downgraded to a warning depends on the
// reader's schema policy.
type SchemaError struct {
	Entity  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns for %s: %s", e.Entity, strings.Join(e.Missing, ", "))
}
