package numtext

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrFormat = errors.New("malformed numeric text")

// FormatError reports the text a parser refused.
type FormatError struct {
	Kind string // "number", "duration", "percent", "rate"
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Text, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Text, ErrFormat)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(kind, text string, err error) error {
	return errors.WithStack(&FormatError{Kind: kind, Text: text, Err: err})
}
