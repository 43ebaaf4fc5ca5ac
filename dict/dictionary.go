// Package dict models the case layout handed to the codec by the dictionary
// parser: the ordered list of 8-byte variable slots and the registry of very
// long string lengths.
//
// New validates the slot list once and precomputes a plan of logical
// variables. Every structural error (a continuation out of place, a string
// that ends before its continuations, a very long string whose slots do not
// add up to its registered length) is reported here with the offending
// dictionary index, so per-case decoding and encoding only walk the plan.
package dict

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/geometry"
	"github.com/arloliu/savcodec/internal/collision"
)

// Segment is one head slot plus its continuations.
type Segment struct {
	Head  int // dictionary index of the head slot
	Width int // declared width of the head slot
	Slots int // slot count, head included
}

// Variable is one logical variable of the case layout.
type Variable struct {
	Name     string
	Index    int       // position among logical variables
	Slot     int       // dictionary index of the first slot
	Numeric  bool      // false for strings
	Length   int       // logical byte length for strings, 0 for numerics
	VLS      bool      // registered very long string
	Segments []Segment // nil for numerics
}

// SlotCount returns the number of dictionary slots the variable occupies.
func (v Variable) SlotCount() int {
	if v.Numeric {
		return 1
	}

	n := 0
	for _, seg := range v.Segments {
		n += seg.Slots
	}

	return n
}

// ByteBudget returns the physical byte size of a string variable.
func (v Variable) ByteBudget() int {
	if v.Numeric {
		return format.ElementSize
	}

	return v.SlotCount() * format.ElementSize
}

// Dictionary is a validated, immutable case layout.
type Dictionary struct {
	slots          []VariableSlot
	registry       *Registry
	vars           []Variable
	maxStringBytes int
}

// New validates slots against registry and builds the logical variable plan.
//
// Parameters:
//   - slots: variable slots in dictionary order
//   - registry: very long string lengths, may be nil when there are none
//
// Returns:
//   - *Dictionary: the validated layout
//   - error: ErrEmptyDictionary, ErrInvalidSlot, or a *errs.SlotError wrapping
//     ErrUnexpectedSlotKind, ErrSegmentLengthMismatch or ErrDuplicateName
func New(slots []VariableSlot, registry *Registry) (*Dictionary, error) {
	if len(slots) == 0 {
		return nil, errs.ErrEmptyDictionary
	}
	if registry == nil {
		registry = NewRegistry()
	}

	for i, s := range slots {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("dictionary index %d: %w", i, err)
		}
	}

	d := &Dictionary{
		slots:    slices.Clone(slots),
		registry: registry,
	}
	if err := d.plan(); err != nil {
		return nil, err
	}
	if err := d.checkNames(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Dictionary) plan() error {
	n := len(d.slots)
	for i := 0; i < n; {
		slot := d.slots[i]
		switch slot.Kind {
		case KindNumeric:
			d.vars = append(d.vars, Variable{Name: slot.Name, Index: len(d.vars), Slot: i, Numeric: true})
			i++
		case KindContinuation:
			return errs.NewSlotError(i, errs.ErrUnexpectedSlotKind,
				"continuation slot where a numeric or string head was expected")
		case KindStringHead:
			v, next, err := d.planString(i)
			if err != nil {
				return err
			}
			v.Index = len(d.vars)
			d.vars = append(d.vars, v)
			if budget := v.ByteBudget(); budget > d.maxStringBytes {
				d.maxStringBytes = budget
			}
			i = next
		}
	}

	return nil
}

// checkNames rejects two named slots whose names are equal ignoring case.
// Segment heads of very long strings carry names of their own and take part.
func (d *Dictionary) checkNames() error {
	tracker := collision.NewTracker()
	for i, s := range d.slots {
		if s.Kind == KindContinuation || s.Name == "" {
			continue
		}
		if err := tracker.Track(s.Name); err != nil {
			return errs.NewSlotError(i, errs.ErrDuplicateName, "variable %q", s.Name)
		}
	}

	return nil
}

// planString walks the segments of the string variable whose head is at start
// and returns the variable and the dictionary index following it.
func (d *Dictionary) planString(start int) (Variable, int, error) {
	head := d.slots[start]
	v := Variable{Name: head.Name, Slot: start, Length: head.Width}
	if length, ok := d.registry.Lookup(head.Name); ok {
		v.Length = length
		v.VLS = true
	}

	segments := geometry.VLSSegmentCount(v.Length)
	v.Segments = make([]Segment, 0, segments)

	i := start
	for seg := range segments {
		if i >= len(d.slots) {
			return v, 0, errs.NewSlotError(i, errs.ErrSegmentLengthMismatch,
				"variable %q of length %d needs %d segments, dictionary ends after %d", v.Name, v.Length, segments, seg)
		}
		if d.slots[i].Kind != KindStringHead {
			return v, 0, errs.NewSlotError(i, errs.ErrUnexpectedSlotKind,
				"segment %d of variable %q must start with a string head, found %s", seg+1, v.Name, d.slots[i].Kind)
		}

		width := d.slots[i].Width
		blocks := geometry.ContinuationBlocks(width)
		for j := 1; j < blocks; j++ {
			if i+j >= len(d.slots) || d.slots[i+j].Kind != KindContinuation {
				return v, 0, errs.NewSlotError(i+j, errs.ErrUnexpectedSlotKind,
					"string %q of width %d terminated early after %d of %d slots", d.slots[i].Name, width, j, blocks)
			}
		}

		v.Segments = append(v.Segments, Segment{Head: i, Width: width, Slots: blocks})
		i += blocks
	}

	if v.VLS {
		if want, got := geometry.VLSTotalSlotCount(v.Length), i-start; want != got {
			return v, 0, errs.NewSlotError(start, errs.ErrSegmentLengthMismatch,
				"variable %q of length %d occupies %d slots, expected %d", v.Name, v.Length, got, want)
		}
	}

	return v, i, nil
}

// Slots returns the variable slots in dictionary order. The slice must not be modified.
func (d *Dictionary) Slots() []VariableSlot {
	return d.slots
}

// SlotCount returns the number of 8-byte elements in one case.
func (d *Dictionary) SlotCount() int {
	return len(d.slots)
}

// Variables returns the logical variables in dictionary order. The slice must not be modified.
func (d *Dictionary) Variables() []Variable {
	return d.vars
}

// VariableCount returns the number of logical variables, which is the length of a decoded row.
func (d *Dictionary) VariableCount() int {
	return len(d.vars)
}

// Registry returns the very long string registry.
func (d *Dictionary) Registry() *Registry {
	return d.registry
}

// MaxStringBytes returns the largest physical byte size of any string
// variable, used to size per-session scratch buffers once.
func (d *Dictionary) MaxStringBytes() int {
	return d.maxStringBytes
}

// Fingerprint returns a 64-bit xxHash of the case layout. Two dictionaries
// with the same fingerprint encode and decode cases identically.
func (d *Dictionary) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [4]byte

	for _, s := range d.slots {
		buf[0] = byte(s.Kind)
		binary.LittleEndian.PutUint16(buf[1:3], uint16(s.Width)) //nolint:gosec
		buf[3] = byte(len(s.Name))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(s.Name)
	}

	for _, name := range d.registry.Names() {
		length, _ := d.registry.Lookup(name)
		_, _ = h.WriteString(name)
		binary.LittleEndian.PutUint32(buf[:], uint32(length)) //nolint:gosec
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
