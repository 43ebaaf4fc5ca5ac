package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContinuationBlocks(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
		{248, 31},
		{249, 32},
		{255, 32},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ContinuationBlocks(tt.length), "length %d", tt.length)
	}

	require.Panics(t, func() { ContinuationBlocks(-1) })
}

func TestVLSSegmentCount(t *testing.T) {
	require.Equal(t, 1, VLSSegmentCount(0))
	require.Equal(t, 1, VLSSegmentCount(255))
	require.Equal(t, 2, VLSSegmentCount(256))
	require.Equal(t, 2, VLSSegmentCount(504))
	require.Equal(t, 3, VLSSegmentCount(505))
	require.Equal(t, 3, VLSSegmentCount(600))
	require.Equal(t, 131, VLSSegmentCount(32767))
	require.Panics(t, func() { VLSSegmentCount(-10) })
}

func TestFinalSegmentLength(t *testing.T) {
	require.Equal(t, 96, FinalSegmentLength(600, 3))
	require.Equal(t, 252, FinalSegmentLength(504, 2))
	require.Equal(t, 4, FinalSegmentLength(256, 2))
	require.Equal(t, 100, FinalSegmentLength(100, 1))
	require.Panics(t, func() { FinalSegmentLength(100, 0) })
}

func TestVLSTotalSlotCount(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"short string", 10, 2},
		{"max ordinary", 255, 32},
		{"smallest vls", 256, 33},
		{"two full segments", 504, 64},
		{"three segments", 600, 2*32 + 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, VLSTotalSlotCount(tt.length))
		})
	}
}

func TestSegmentWidths(t *testing.T) {
	require.Equal(t, []int{40}, SegmentWidths(40))
	require.Equal(t, []int{255, 255, 96}, SegmentWidths(600))
	require.Equal(t, []int{255, 4}, SegmentWidths(256))
}

func TestByteBudgetAndCapacity(t *testing.T) {
	t.Run("ordinary string keeps whole blocks", func(t *testing.T) {
		require.Equal(t, 16, ByteBudget(10))
		require.Equal(t, 16, ContentCapacity(10))
	})

	t.Run("width 255 loses its 256th byte", func(t *testing.T) {
		require.Equal(t, 256, ByteBudget(255))
		require.Equal(t, 255, ContentCapacity(255))
	})

	t.Run("very long string loses one byte per full segment", func(t *testing.T) {
		require.Equal(t, 608, ByteBudget(600))
		require.Equal(t, 606, ContentCapacity(600))
		require.Equal(t, 512, ByteBudget(504))
		require.Equal(t, 510, ContentCapacity(504))
	})
}

func TestIsPadPosition(t *testing.T) {
	require.False(t, IsPadPosition(-1))
	require.False(t, IsPadPosition(0))
	require.False(t, IsPadPosition(254))
	require.True(t, IsPadPosition(255))
	require.False(t, IsPadPosition(256))
	require.True(t, IsPadPosition(511))
}
