package dict

import (
	"fmt"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/geometry"
)

// SlotKind tags the variant of a VariableSlot.
type SlotKind uint8

const (
	KindNumeric      SlotKind = iota // KindNumeric is an 8-byte double slot.
	KindStringHead                   // KindStringHead starts a string and declares its width.
	KindContinuation                 // KindContinuation extends the preceding string head.
)

func (k SlotKind) String() string {
	switch k {
	case KindNumeric:
		return "Numeric"
	case KindStringHead:
		return "StringHead"
	case KindContinuation:
		return "StringContinuation"
	default:
		return "Unknown"
	}
}

// Type codes used by variable records in the file dictionary.
const (
	TypeCodeNumeric      int32 = 0
	TypeCodeContinuation int32 = -1
)

// VariableSlot is one physical 8-byte dictionary position.
//
// Width is the declared byte width of a string head (1..255) and zero for the
// other kinds. Name is the short variable name; continuation slots have none.
type VariableSlot struct {
	Name  string
	Kind  SlotKind
	Width int
}

// Numeric returns a numeric slot.
func Numeric(name string) VariableSlot {
	return VariableSlot{Name: name, Kind: KindNumeric}
}

// StringHead returns a string head slot of the given declared width.
func StringHead(name string, width int) VariableSlot {
	return VariableSlot{Name: name, Kind: KindStringHead, Width: width}
}

// Continuation returns a string continuation slot.
func Continuation() VariableSlot {
	return VariableSlot{Kind: KindContinuation}
}

// FromTypeCode converts the signed type code of a variable record
// (0 numeric, 1..255 string width, -1 continuation) into a slot.
func FromTypeCode(name string, code int32) (VariableSlot, error) {
	switch {
	case code == TypeCodeNumeric:
		return Numeric(name), nil
	case code == TypeCodeContinuation:
		return Continuation(), nil
	case code > 0 && code <= geometry.MaxSegmentWidth:
		return StringHead(name, int(code)), nil
	default:
		return VariableSlot{}, fmt.Errorf("%w: type code %d", errs.ErrInvalidSlot, code)
	}
}

// TypeCode returns the variable record type code of the slot.
func (s VariableSlot) TypeCode() int32 {
	switch s.Kind {
	case KindNumeric:
		return TypeCodeNumeric
	case KindStringHead:
		return int32(s.Width) //nolint:gosec
	default:
		return TypeCodeContinuation
	}
}

func (s VariableSlot) validate() error {
	switch s.Kind {
	case KindNumeric, KindContinuation:
		if s.Width != 0 {
			return fmt.Errorf("%w: %s slot with width %d", errs.ErrInvalidSlot, s.Kind, s.Width)
		}
	case KindStringHead:
		if s.Width < 1 || s.Width > geometry.MaxSegmentWidth {
			return fmt.Errorf("%w: string head %q with width %d", errs.ErrInvalidSlot, s.Name, s.Width)
		}
	default:
		return fmt.Errorf("%w: unknown slot kind %d", errs.ErrInvalidSlot, s.Kind)
	}

	return nil
}

func (s VariableSlot) String() string {
	switch s.Kind {
	case KindStringHead:
		return fmt.Sprintf("%s(%s, %d)", s.Kind, s.Name, s.Width)
	case KindNumeric:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
	default:
		return s.Kind.String()
	}
}

// StringSlots returns the slots a dictionary must declare for a string
// variable of length bytes: one head per segment followed by its
// continuations. Segments after the first are named by SegmentName.
//
// Parameters:
//   - name: short name of the variable, used for the first segment
//   - length: logical byte length of the string (1..32767)
//
// Returns:
//   - []VariableSlot: slots in dictionary order
//   - error: ErrInvalidLength for non-positive lengths
func StringSlots(name string, length int) ([]VariableSlot, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidLength, length)
	}

	slots := make([]VariableSlot, 0, geometry.VLSTotalSlotCount(length))
	for i, width := range geometry.SegmentWidths(length) {
		segName := name
		if i > 0 {
			segName = SegmentName(name, i)
		}
		slots = append(slots, StringHead(segName, width))
		for range geometry.ContinuationBlocks(width) - 1 {
			slots = append(slots, Continuation())
		}
	}

	return slots, nil
}

// SegmentName returns the short name given to segment index (1-based after the
// head segment) of a very long string. Names are at most 8 bytes: the first 5
// bytes of name followed by the segment index in base 36.
func SegmentName(name string, index int) string {
	const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	prefix := name
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}

	suffix := ""
	for n := index; n > 0 || suffix == ""; n /= len(digits) {
		suffix = string(digits[n%len(digits)]) + suffix
	}

	return prefix + suffix
}
