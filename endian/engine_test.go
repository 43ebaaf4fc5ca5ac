package endian

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
		require.False(IsNativeLittleEndian())
	case 0x02:
		require.Equal(binary.LittleEndian, result)
		require.True(IsNativeLittleEndian())
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
	}
}

func TestFromLayoutCode(t *testing.T) {
	tests := []struct {
		name string
		raw  [4]byte
		want EndianEngine
	}{
		{"little endian 2", [4]byte{2, 0, 0, 0}, binary.LittleEndian},
		{"little endian 3", [4]byte{3, 0, 0, 0}, binary.LittleEndian},
		{"big endian 2", [4]byte{0, 0, 0, 2}, binary.BigEndian},
		{"big endian 3", [4]byte{0, 0, 0, 3}, binary.BigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := FromLayoutCode(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, engine)
		})
	}

	_, err := FromLayoutCode([4]byte{1, 0, 0, 0})
	require.ErrorIs(t, err, ErrUnknownLayoutCode)
}

func TestFloat64Conversions(t *testing.T) {
	values := []float64{0, 1, -1, 151.5, 1000, math.Inf(1), -math.MaxFloat64}

	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		for _, v := range values {
			var b [8]byte
			PutFloat64(engine, b[:], v)
			require.Equal(t, math.Float64bits(v), math.Float64bits(Float64(engine, b[:])))

			appended := AppendFloat64(engine, nil, v)
			require.Equal(t, b[:], appended)
		}
	}

	t.Run("sysmis bit pattern", func(t *testing.T) {
		var b [8]byte
		PutFloat64(GetLittleEndianEngine(), b[:], -math.MaxFloat64)
		require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xef, 0xff}, b[:])
	})
}
