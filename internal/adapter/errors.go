package adapter

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
)

// ErrMalformed is the cause recorded when text does not match any
// representation the adapter understands.
var ErrMalformed = errors.New("malformed value")

// ConversionError reports text that could not be parsed into a value.
type ConversionError struct {
	Text string       // offending input
	Type reflect.Type // target type
	Err  error        // underlying parse failure
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Text, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(text string, typ reflect.Type, err error) error {
	if err == nil {
		err = ErrMalformed
	}
	return &ConversionError{Text: text, Type: typ, Err: err}
}
