package aspect

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTypeMismatch marks members whose accessor type cannot be converted
	// to the adapter type.
	ErrTypeMismatch = errors.New("accessor type does not match adapter")
	// ErrInvalidEntity marks entities of the wrong type, nil entities, and
	// non-pointer entities passed to Read.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrInvalidTag marks aspect struct tags that cannot be parsed.
	ErrInvalidTag = errors.New("invalid aspect tag")
	// ErrDuplicateMember marks mappings with two members of the same name.
	ErrDuplicateMember = errors.New("duplicate member")
)

// ReadError reports a member whose node text could not be parsed.
type ReadError struct {
	Member string
	Text   string
	Err    error // usually *adapter.ConversionError
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read member %q from %q: %v", e.Member, e.Text, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
