package fidji

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================
// Every kind is fatal to the read or write call that produced it.

var (
	ErrMalformedXML       = errors.New("malformed_xml")
	ErrMissingAttribute   = errors.New("missing_required_attribute")
	ErrUnparseableValue   = errors.New("unparseable_value")
	ErrUnsupportedVersion = errors.New("unsupported_version")
	ErrStream             = errors.New("stream_failure")
)

// Error is a converter failure located at an element path.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error

	// Path is the element path being processed, empty when not applicable.
	Path string

	// Detail names the offending attribute or value.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Errorf builds an *Error of the given kind.
func Errorf(kind error, path, detail string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Detail: detail, Err: cause}
}
