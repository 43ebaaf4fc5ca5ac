package spool

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savcodec/bytecode"
	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/section"
)

// ==============================================================================
// Helper Functions
// ==============================================================================

const testFingerprint = 0x5AF00D5AF00D5AF0

func testPayload(n int) []byte {
	rng := rand.New(rand.NewSource(7))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Intn(8)) + 'a'
	}

	return b
}

func writeSpool(t *testing.T, payload []byte, cases int64, opts ...Option) (*bytes.Buffer, *Writer) {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, testFingerprint, opts...)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	w.SetCaseCount(cases)
	require.NoError(t, w.Close())

	return &buf, w
}

// ==============================================================================
// Round Trip Tests
// ==============================================================================

func TestSpool_RoundTrip(t *testing.T) {
	payload := testPayload(200_000)

	codecs := []format.CompressionType{
		format.CompressionS2,
		format.CompressionZstd,
		format.CompressionLZ4,
		format.CompressionZlib,
		format.CompressionNone,
	}
	for _, codec := range codecs {
		t.Run(codec.String(), func(t *testing.T) {
			buf, w := writeSpool(t, payload, 1234, WithCodec(codec), WithFrameSize(16*1024))

			stats := w.Stats()
			require.Equal(t, codec, stats.Algorithm)
			require.Equal(t, int64(13), stats.Blocks)
			require.Equal(t, int64(len(payload)), stats.OriginalSize)

			r, err := NewReader(bytes.NewReader(buf.Bytes()), testFingerprint)
			require.NoError(t, err)
			require.Equal(t, codec, r.Header().Codec)

			_, known := r.Cases()
			require.False(t, known)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, payload, got)

			cases, known := r.Cases()
			require.True(t, known)
			require.Equal(t, int64(1234), cases)
		})
	}
}

func TestSpool_Empty(t *testing.T) {
	buf, _ := writeSpool(t, nil, 0)
	require.Equal(t, section.SpoolHeaderSize+section.FrameHeaderSize+8, buf.Len())

	r, err := NewReader(buf, testFingerprint)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)

	cases, known := r.Cases()
	require.True(t, known)
	require.Zero(t, cases)
}

func TestSpool_HeaderFlags(t *testing.T) {
	buf, _ := writeSpool(t, []byte("x"), 1,
		WithEngine(endian.GetBigEndianEngine()), WithRaw(true), WithBias(-3))

	r, err := NewReader(buf, testFingerprint)
	require.NoError(t, err)

	h := r.Header()
	require.True(t, h.IsBigEndian())
	require.True(t, h.IsRaw())
	require.Equal(t, float64(-3), h.Bias)
	require.Equal(t, endian.GetBigEndianEngine(), r.Engine())
}

// ==============================================================================
// Byte-Code Integration Tests
// ==============================================================================

func TestSpool_BytecodeRewind(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testFingerprint, WithFrameSize(100))
	require.NoError(t, err)

	c, err := bytecode.NewCompressor(w)
	require.NoError(t, err)
	for i := range 300 {
		require.NoError(t, c.WriteNumber(float64(i)*1.25))
	}
	require.NoError(t, c.EndFile())
	w.SetCaseCount(300)
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()), testFingerprint)
	require.NoError(t, err)
	d, err := bytecode.NewDecompressor(r, bytecode.WithEngine(r.Engine()))
	require.NoError(t, err)

	readAll := func() []float64 {
		var out []float64
		var elem format.Element
		for {
			err := d.ReadElement(&elem)
			if errors.Is(err, io.EOF) {
				return out
			}
			require.NoError(t, err)
			out = append(out, endian.Float64(r.Engine(), elem[:]))
		}
	}

	first := readAll()
	require.Len(t, first, 300)
	require.Equal(t, 373.75, first[299])

	require.NoError(t, d.Rewind())
	require.Equal(t, first, readAll())
}

func TestReader_SeekUnsupported(t *testing.T) {
	buf, _ := writeSpool(t, []byte("abc"), 1)

	// bytes.Buffer does not implement io.Seeker
	r, err := NewReader(buf, testFingerprint)
	require.NoError(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Zero(t, pos)

	_, err = r.Seek(0, io.SeekStart)
	require.ErrorIs(t, err, errs.ErrNotSeekable)

	_, err = r.Seek(5, io.SeekStart)
	require.ErrorIs(t, err, errs.ErrNotSeekable)
}

// ==============================================================================
// Validation Tests
// ==============================================================================

func TestReader_Invalid(t *testing.T) {
	payload := testPayload(1000)

	t.Run("fingerprint mismatch", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1)
		_, err := NewReader(buf, testFingerprint+1)
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("SAVSPOOL")), testFingerprint)
		require.ErrorIs(t, err, errs.ErrInvalidSpoolHeader)
	})

	t.Run("unknown codec", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1)
		data := buf.Bytes()
		data[10] = 0x7F
		_, err := NewReader(bytes.NewReader(data), testFingerprint)
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})

	t.Run("missing terminator", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1)
		data := buf.Bytes()[:buf.Len()-section.FrameHeaderSize-8]

		r, err := NewReader(bytes.NewReader(data), testFingerprint)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.ErrorIs(t, err, errs.ErrFormatTruncated)
	})

	t.Run("truncated frame", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1)
		data := buf.Bytes()[:section.SpoolHeaderSize+section.FrameHeaderSize+3]

		r, err := NewReader(bytes.NewReader(data), testFingerprint)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.ErrorIs(t, err, errs.ErrFormatTruncated)
	})

	t.Run("frame inflates past raw length", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1, WithCodec(format.CompressionS2))
		data := buf.Bytes()
		binary.LittleEndian.PutUint32(data[section.SpoolHeaderSize:], 10)

		r, err := NewReader(bytes.NewReader(data), testFingerprint)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.ErrorIs(t, err, errs.ErrInvalidSpoolFrame)
		require.ErrorIs(t, err, errs.ErrBlockTooLarge)
	})

	t.Run("raw length mismatch", func(t *testing.T) {
		buf, _ := writeSpool(t, payload, 1, WithCodec(format.CompressionNone))
		data := buf.Bytes()
		// shrink the first frame's declared raw length
		data[section.SpoolHeaderSize] ^= 0x01

		r, err := NewReader(bytes.NewReader(data), testFingerprint)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.ErrorIs(t, err, errs.ErrInvalidSpoolFrame)
	})
}

func TestWriter_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testFingerprint)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte{1})
	require.ErrorIs(t, err, errs.ErrClosed)

	_, err = NewWriter(&buf, testFingerprint, WithFrameSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
	_, err = NewWriter(&buf, testFingerprint, WithCodec(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}
