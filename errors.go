package streamcsv

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error produced by this package.
type ErrorKind int

const (
	// KindIO is a failure of the underlying byte source or sink.
	KindIO ErrorKind = iota
	// KindNotFound means a path resource does not exist.
	KindNotFound
	// KindInvalidResourceKind means the resource is not a raw byte stream.
	KindInvalidResourceKind
	// KindMalformedQuoting is an unescaped quote mid-field or an unterminated quoted field.
	KindMalformedQuoting
	// KindInvalidUTF8 means a field is not valid UTF-8.
	KindInvalidUTF8
	// KindWidthMismatch means a record's field count differs from the first record's.
	KindWidthMismatch
	// KindInvalidConfiguration is raised at construction, before any I/O.
	KindInvalidConfiguration
)

// Sentinel errors, one per ErrorKind. Use them with [errors.Is].
var (
	ErrIO                  = errors.New("i/o failure")
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidResourceKind = errors.New("resource is not a byte stream")
	ErrMalformedQuoting    = errors.New("malformed quoting")
	ErrInvalidUTF8         = errors.New("invalid UTF-8")
	ErrWidthMismatch       = errors.New("wrong number of fields")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindNotFound:
		return "not_found"
	case KindInvalidResourceKind:
		return "invalid_resource_kind"
	case KindMalformedQuoting:
		return "malformed_quoting"
	case KindInvalidUTF8:
		return "invalid_utf8"
	case KindWidthMismatch:
		return "width_mismatch"
	case KindInvalidConfiguration:
		return "invalid_configuration"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidResourceKind:
		return ErrInvalidResourceKind
	case KindMalformedQuoting:
		return ErrMalformedQuoting
	case KindInvalidUTF8:
		return ErrInvalidUTF8
	case KindWidthMismatch:
		return ErrWidthMismatch
	case KindInvalidConfiguration:
		return ErrInvalidConfig
	default:
		return ErrIO
	}
}

// Error is the single error type returned by readers, writers and constructors.
// Pos is set for errors tied to a location in the input.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  *Position

	// Field and Offset locate an invalid UTF-8 sequence: the 0-based index of
	// the field within the record and the byte offset inside the decoded field
	// up to which the content is valid. Zero for other kinds.
	Field  int
	Offset int

	// Err is the underlying cause, if any.
	Err error
}

// Error returns a formatted error message with location information.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Pos != nil {
		return fmt.Sprintf("streamcsv: %s (%s)", msg, e.Pos)
	}
	return "streamcsv: " + msg
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err and whether err carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// PositionOf returns the input position attached to err, if any.
func PositionOf(err error) (Position, bool) {
	var e *Error
	if errors.As(err, &e) && e.Pos != nil {
		return *e.Pos, true
	}
	return Position{}, false
}

func newError(kind ErrorKind, pos *Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...any) *Error {
	return newError(KindInvalidConfiguration, nil, format, args...)
}

func ioError(op string, err error) *Error {
	return &Error{Kind: KindIO, Msg: op + " failed", Err: err}
}
