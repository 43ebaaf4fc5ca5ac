package row

import (
	"strconv"
)

// Kind tags the variant of a Value.
type Kind uint8

const (
	KindMissing Kind = iota // KindMissing is the system-missing value or a null string.
	KindNumber              // KindNumber is a numeric value.
	KindText                // KindText is a string value.
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "Missing"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Value is one decoded logical value: Missing, Number or Text.
//
// The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing returns the missing value.
func Missing() Value {
	return Value{}
}

// Number returns a numeric value.
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Text returns a string value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether v is the missing value.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float returns the number held by v and whether v is a Number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the string held by v and whether v is a Text.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// String formats v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.text)
	default:
		return "."
	}
}
