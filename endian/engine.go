// Package endian provides byte order utilities for case elements.
//
// A SAV file is written in the byte order of the machine that produced it.
// Numeric case elements are IEEE-754 doubles in that order, and the header's
// layout code (2 or 3) is the only reliable way to detect it. This package
// combines encoding/binary's ByteOrder and AppendByteOrder into EndianEngine
// and adds the double conversions used by the codec.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	v := endian.Float64(engine, elem[:])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"errors"
	"math"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// ErrUnknownLayoutCode is returned when a layout code matches neither byte order.
var ErrUnknownLayoutCode = errors.New("unknown layout code")

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100: a little-endian host stores the 0x00 byte first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromLayoutCode detects the byte order of a file from the raw 4-byte layout
// code field of its header. Producers write 2 or 3 in their native order.
//
// Parameters:
//   - raw: the layout code bytes exactly as stored in the file
//
// Returns:
//   - EndianEngine: the engine that decodes raw to 2 or 3
//   - error: ErrUnknownLayoutCode if neither byte order does
func FromLayoutCode(raw [4]byte) (EndianEngine, error) {
	for _, engine := range []EndianEngine{binary.LittleEndian, binary.BigEndian} {
		if code := engine.Uint32(raw[:]); code == 2 || code == 3 {
			return engine, nil
		}
	}

	return nil, ErrUnknownLayoutCode
}

// Float64 decodes the first 8 bytes of b as a double.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// PutFloat64 encodes v into the first 8 bytes of b.
func PutFloat64(engine EndianEngine, b []byte, v float64) {
	engine.PutUint64(b, math.Float64bits(v))
}

// AppendFloat64 appends the 8-byte encoding of v to b.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}
