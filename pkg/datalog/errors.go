package datalog

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrBadSignature       = errors.New("bad signature")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncated          = errors.New("truncated data")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrMalformedControl   = errors.New("malformed control record")
	ErrMalformedPayload   = errors.New("payload does not match declared type")
	ErrUnknownEntry       = errors.New("record for unknown entry")
	ErrDuplicateEntry     = errors.New("entry already active")
)

// FormatError reports a framing or signature inconsistency. It is fatal to
// the decode that produced it.
type FormatError struct {
	Offset int64 // byte offset of the frame (or header) that failed
	Err    error // one of the sentinel errors above
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("datalog: invalid log at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("datalog: invalid log at offset %d: %v: %s", e.Offset, e.Err, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(offset int64, err error, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is (or wraps) a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
