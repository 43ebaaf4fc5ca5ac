package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSysMissingBits(t *testing.T) {
	require.Equal(t, uint64(0xFFEFFFFFFFFFFFFF), math.Float64bits(SysMissing))
}

func TestSpaceElement(t *testing.T) {
	require.True(t, SpaceElement.IsSpaces())
	require.Equal(t, "        ", string(SpaceElement[:]))

	e := SpaceElement
	e[7] = 'x'
	require.False(t, e.IsSpaces())
	require.False(t, Element{}.IsSpaces())
}

func TestCompressionEnums(t *testing.T) {
	tests := []struct {
		c     CompressionType
		name  string
		valid bool
	}{
		{CompressionNone, "None", true},
		{CompressionZstd, "Zstd", true},
		{CompressionS2, "S2", true},
		{CompressionLZ4, "LZ4", true},
		{CompressionZlib, "Zlib", true},
		{0, "Unknown", false},
		{0x6, "Unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.name, tt.c.String())
			require.Equal(t, tt.valid, tt.c.IsValid())
		})
	}

	require.Equal(t, "Bytecode", CaseBytecode.String())
	require.True(t, CaseZlib.IsValid())
	require.False(t, CaseCompression(3).IsValid())
	require.Equal(t, "Unknown", CaseCompression(-1).String())
}
