package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ByteBuffer Tests
// =============================================================================

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, bb.Cap(), "new buffer should have specified capacity")
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(16)

	n, err := bb.Write([]byte("control"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	_, _ = bb.Write([]byte(" block"))
	require.Equal(t, []byte("control block"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Available(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write(make([]byte, 6))

	require.Equal(t, 4, bb.Available(10))
	require.Equal(t, 0, bb.Available(6))
	require.Equal(t, 0, bb.Available(3))
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte{1, 2, 3})

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, []byte{1, 2, 3}, out.Bytes())

	_, err = bb.WriteTo(errWriter{})
	require.Error(t, err)
}

// =============================================================================
// ByteBuffer Grow Tests
// =============================================================================

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(100)
		bb.Grow(50)
		require.Equal(t, 100, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(10)
		_, _ = bb.Write(make([]byte, 10))
		bb.Grow(1)
		require.Equal(t, 10+FrameBufferDefaultSize, bb.Cap())
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * FrameBufferDefaultSize
		bb := NewByteBuffer(size)
		_, _ = bb.Write(make([]byte, size))
		bb.Grow(1)
		require.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("large request", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(FrameBufferDefaultSize * 3)
		require.GreaterOrEqual(t, bb.Cap(), FrameBufferDefaultSize*3)
	})

	t.Run("preserves data", func(t *testing.T) {
		bb := NewByteBuffer(4)
		_, _ = bb.Write([]byte("abcd"))
		bb.Grow(100)
		require.Equal(t, []byte("abcd"), bb.Bytes())
	})
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestFrameAndBlockPools(t *testing.T) {
	frame := GetFrameBuffer()
	require.NotNil(t, frame)
	require.Equal(t, 0, frame.Len())
	_, _ = frame.Write([]byte("frame"))
	PutFrameBuffer(frame)

	block := GetBlockBuffer()
	require.NotNil(t, block)
	require.Equal(t, 0, block.Len())
	require.GreaterOrEqual(t, block.Cap(), 0)
	PutBlockBuffer(block)

	assert.NotPanics(t, func() {
		PutFrameBuffer(nil)
		PutBlockBuffer(nil)
	})
}

func TestByteBufferPool_ResetsOnPut(t *testing.T) {
	p := NewByteBufferPool(64, 0)
	bb := p.Get()
	_, _ = bb.Write([]byte("stale"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len())
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 32)
	bb := p.Get()
	_, _ = bb.Write(make([]byte, 100))
	p.Put(bb)
	require.Equal(t, 100, bb.Len(), "oversized buffer is neither reset nor retained")
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	p := NewByteBufferPool(64, 1024)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 100 {
				bb := p.Get()
				_, _ = bb.Write([]byte{byte(id)})
				p.Put(bb)
			}
		}(i)
	}
	wg.Wait()
}
