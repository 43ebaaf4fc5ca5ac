// Package errs defines the sentinel errors shared by all savcodec packages.
//
// Errors are wrapped with context using fmt.Errorf and the %w verb, so callers
// match them with errors.Is. Errors tied to a dictionary position are wrapped
// in a *SlotError, which carries the zero-based dictionary index.
package errs

import (
	"errors"
	"fmt"
)

// Case data stream errors.
var (
	// ErrFormatTruncated indicates that a control block, a literal payload or a
	// case record ended before the bytes it promised were available.
	ErrFormatTruncated = errors.New("case data truncated")
	// ErrUnexpectedSlotKind indicates a continuation slot where a head or numeric
	// slot was expected, or a head/numeric slot inside an unfinished string.
	ErrUnexpectedSlotKind = errors.New("unexpected variable slot kind")
	// ErrSegmentLengthMismatch indicates that the slots of a very long string do
	// not add up to the length declared in the registry.
	ErrSegmentLengthMismatch = errors.New("very long string segment length mismatch")
	// ErrEncodingOverflow indicates a string that was truncated to fit its byte
	// budget. It is only returned in strict mode and the row is still written.
	ErrEncodingOverflow = errors.New("encoded string exceeds variable width")
)

// Dictionary and row errors.
var (
	ErrInvalidSlot     = errors.New("invalid variable slot")
	ErrInvalidRegistry = errors.New("invalid very long string registry entry")
	ErrEmptyDictionary = errors.New("dictionary has no variables")
	ErrRowLength       = errors.New("row value count does not match variable count")
	ErrValueKind       = errors.New("value kind does not match variable kind")
	ErrInvalidLength   = errors.New("invalid string length")
	ErrDuplicateName   = errors.New("duplicate variable name")
)

// Session and transport errors.
var (
	ErrClosed                 = errors.New("codec already closed")
	ErrNotSeekable            = errors.New("underlying source does not support seeking")
	ErrUnknownEncoding        = errors.New("unknown character encoding")
	ErrUnsupportedCompression = errors.New("unsupported compression")
	ErrInvalidBlockSize       = errors.New("invalid block size")
	ErrBlockTooLarge          = errors.New("block inflates past its declared size")
)

// Container errors.
var (
	ErrInvalidZHeader      = errors.New("invalid zlib data header")
	ErrInvalidZTrailer     = errors.New("invalid zlib data trailer")
	ErrInvalidSpoolHeader  = errors.New("invalid spool header")
	ErrInvalidSpoolFrame   = errors.New("invalid spool frame")
	ErrFingerprintMismatch = errors.New("dictionary fingerprint mismatch")
)

// SlotError annotates an error with the dictionary index it was detected at.
type SlotError struct {
	Index int
	Err   error
	Msg   string
}

// NewSlotError wraps err with a dictionary index and a detail message.
func NewSlotError(index int, err error, format string, args ...any) *SlotError {
	return &SlotError{Index: index, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *SlotError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%v: dictionary index %d", e.Err, e.Index)
	}

	return fmt.Sprintf("%v: %s (dictionary index %d)", e.Err, e.Msg, e.Index)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}
