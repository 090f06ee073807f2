package pathnorm

import (
	"errors"
	"fmt"
)

// ErrMalformedReference is wrapped by every MalformedReferenceError.
var ErrMalformedReference = errors.New("malformed reference")

// MalformedReferenceError reports a reference with no usable path. Callers
// leave the original text in place.
type MalformedReferenceError struct {
	Raw    string
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference %q: %s", e.Raw, e.Reason)
}

func (e *MalformedReferenceError) Unwrap() error {
	return ErrMalformedReference
}
