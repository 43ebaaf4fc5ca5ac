package zdata

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
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

// memFile is an in-memory io.ReadWriteSeeker.
type memFile struct {
	data []byte
	pos  int64
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.data)) {
		f.data = append(f.data, make([]byte, end-int64(len(f.data)))...)
	}
	copy(f.data[f.pos:], p)
	f.pos = end

	return len(p), nil
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)

	return n, nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.data)) + offset
	}
	if f.pos < 0 {
		return 0, errors.New("negative position")
	}

	return f.pos, nil
}

// dictionaryPrefix stands in for the header and dictionary records that
// precede the zlib data header in a real file.
var dictionaryPrefix = bytes.Repeat([]byte("$FL3@(#) "), 20)

// writeZSAV writes prefix followed by payload as zlib data and returns the
// file positioned at the zlib data header.
func writeZSAV(t *testing.T, payload []byte, opts ...Option) (*memFile, *Writer) {
	t.Helper()

	f := &memFile{}
	_, _ = f.Write(dictionaryPrefix)

	w, err := NewWriter(f, opts...)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, int64(len(f.data)), f.pos, "writer must end positioned after the trailer")

	_, _ = f.Seek(int64(len(dictionaryPrefix)), io.SeekStart)

	return f, w
}

func randomPayload(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	b := make([]byte, n)
	for i := range b {
		// biased towards small codes so blocks deflate well
		b[i] = byte(rng.Intn(16))
	}

	return b
}

// ==============================================================================
// Round Trip Tests
// ==============================================================================

func TestWriterReader_RoundTrip(t *testing.T) {
	payload := randomPayload(10_000)

	for _, blockSize := range []int{64, 1000, 4096, section.DefaultZBlockSize} {
		f, w := writeZSAV(t, payload, WithBlockSize(blockSize))

		wantBlocks := (len(payload) + blockSize - 1) / blockSize
		require.Len(t, w.Trailer().Entries, wantBlocks)
		require.Equal(t, int64(wantBlocks), w.Stats().Blocks)
		require.Equal(t, int64(len(payload)), w.Stats().OriginalSize)

		r, err := NewReader(f)
		require.NoError(t, err)
		require.Equal(t, w.Header(), r.Header())
		require.Equal(t, int64(len(payload)), r.Size())

		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, payload, got)
	}
}

func TestWriter_Layout(t *testing.T) {
	f, w := writeZSAV(t, randomPayload(300), WithBlockSize(128))

	engine := endian.GetLittleEndianEngine()
	start := int64(len(dictionaryPrefix))

	h, err := section.ParseZHeader(f.data[start:], engine)
	require.NoError(t, err)
	require.Equal(t, start, h.HeaderOffset)
	require.Equal(t, int64(24*4), h.TrailerLength)
	require.Equal(t, int64(len(f.data))-h.TrailerLength, h.TrailerOffset)

	var tr section.ZTrailer
	require.NoError(t, tr.Parse(f.data[h.TrailerOffset:], engine))
	require.Equal(t, w.Trailer(), tr)
	require.Equal(t, float64(100), tr.Bias)
	require.Equal(t, int32(128), tr.BlockSize)
	require.Equal(t, start, tr.Entries[0].UncompressedOffset)
	require.Equal(t, start+section.ZHeaderSize, tr.Entries[0].CompressedOffset)

	// every block is a standalone zlib stream
	for _, e := range tr.Entries {
		block := f.data[e.CompressedOffset : e.CompressedOffset+int64(e.CompressedSize)]
		zr, err := zlib.NewReader(bytes.NewReader(block))
		require.NoError(t, err)
		inflated, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Len(t, inflated, int(e.UncompressedSize))
	}
}

func TestWriter_Empty(t *testing.T) {
	f, w := writeZSAV(t, nil)
	require.Empty(t, w.Trailer().Entries)

	r, err := NewReader(f)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWriterReader_BigEndianAndCodecs(t *testing.T) {
	payload := randomPayload(5000)

	for _, codec := range []format.CompressionType{format.CompressionZlib, format.CompressionZstd, format.CompressionS2, format.CompressionNone} {
		t.Run(codec.String(), func(t *testing.T) {
			opts := []Option{
				WithEngine(endian.GetBigEndianEngine()),
				WithBlockCodec(codec),
				WithBlockSize(1024),
			}
			f, _ := writeZSAV(t, payload, opts...)

			r, err := NewReader(f, opts...)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, payload, got)
		})
	}
}

// ==============================================================================
// Seek Tests
// ==============================================================================

func TestReader_Seek(t *testing.T) {
	payload := randomPayload(2000)
	f, _ := writeZSAV(t, payload, WithBlockSize(300))

	r, err := NewReader(f)
	require.NoError(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Zero(t, pos)

	buf := make([]byte, 50)
	for _, off := range []int64{0, 299, 300, 1234, 1950, 10} {
		pos, err := r.Seek(off, io.SeekStart)
		require.NoError(t, err)
		require.Equal(t, off, pos)

		_, err = io.ReadFull(r, buf)
		require.NoError(t, err)
		require.Equal(t, payload[off:off+50], buf)
	}

	pos, err = r.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(1990), pos)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload[1990:], rest)

	pos, err = r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(2000), pos)
	n, err := r.Read(buf)
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)

	_, err = r.Seek(2001, io.SeekStart)
	require.Error(t, err)
	_, err = r.Seek(-1, io.SeekStart)
	require.Error(t, err)
}

// ==============================================================================
// Byte-Code Integration Tests
// ==============================================================================

func TestBytecodeOverZlibData(t *testing.T) {
	f := &memFile{}
	_, _ = f.Write(dictionaryPrefix)

	zw, err := NewWriter(f, WithBlockSize(256))
	require.NoError(t, err)
	c, err := bytecode.NewCompressor(zw)
	require.NoError(t, err)

	const cases = 500
	for i := range cases {
		require.NoError(t, c.WriteNumber(float64(i%200)))
		require.NoError(t, c.WriteNumber(float64(i)+0.5))
		require.NoError(t, c.WriteSysMiss())
		require.NoError(t, c.WriteCharBlock(format.Element{'c', 'a', 's', 'e', ' ', ' ', ' ', ' '}))
	}
	require.NoError(t, c.EndFile())
	require.NoError(t, zw.Close())
	require.Greater(t, len(zw.Trailer().Entries), 1)

	_, _ = f.Seek(int64(len(dictionaryPrefix)), io.SeekStart)
	zr, err := NewReader(f)
	require.NoError(t, err)
	d, err := bytecode.NewDecompressor(zr)
	require.NoError(t, err)

	readAll := func() int {
		var elem format.Element
		n := 0
		for {
			err := d.ReadElement(&elem)
			if errors.Is(err, io.EOF) {
				return n
			}
			require.NoError(t, err)
			n++
		}
	}

	require.Equal(t, cases*4, readAll())
	require.NoError(t, d.Rewind())
	require.Equal(t, cases*4, readAll())
}

// ==============================================================================
// Validation Tests
// ==============================================================================

func TestNewReader_Invalid(t *testing.T) {
	payload := randomPayload(1000)
	engine := endian.GetLittleEndianEngine()
	start := int64(len(dictionaryPrefix))

	t.Run("wrong bias", func(t *testing.T) {
		f, _ := writeZSAV(t, payload, WithBias(100))
		_, err := NewReader(f, WithBias(50))
		require.ErrorIs(t, err, errs.ErrInvalidZTrailer)
	})

	t.Run("header offset mismatch", func(t *testing.T) {
		f, _ := writeZSAV(t, payload)
		engine.PutUint64(f.data[start:start+8], uint64(start+8))
		_, err := NewReader(f)
		require.ErrorIs(t, err, errs.ErrInvalidZHeader)
	})

	t.Run("trailer beyond end of file", func(t *testing.T) {
		f, _ := writeZSAV(t, payload)
		f.data = f.data[:len(f.data)-24]
		_, err := NewReader(f)
		require.ErrorIs(t, err, errs.ErrFormatTruncated)
	})

	t.Run("trailer length overflows file offset", func(t *testing.T) {
		h := section.ZHeader{
			HeaderOffset:  0,
			TrailerOffset: 24000,
			TrailerLength: (math.MaxInt64 / section.ZBlockEntrySize) * section.ZBlockEntrySize,
		}
		data := append(h.Bytes(engine), make([]byte, 30000)...)

		require.NotPanics(t, func() {
			_, err := NewReader(bytes.NewReader(data))
			require.ErrorIs(t, err, errs.ErrFormatTruncated)
		})
	})

	t.Run("trailer offset beyond end of file", func(t *testing.T) {
		h := section.ZHeader{HeaderOffset: 0, TrailerOffset: 1 << 40, TrailerLength: 48}
		_, err := NewReader(bytes.NewReader(h.Bytes(engine)))
		require.ErrorIs(t, err, errs.ErrFormatTruncated)
	})

	t.Run("block inflates past trailer size", func(t *testing.T) {
		f, w := writeZSAV(t, payload, WithBlockSize(200))
		h := w.Header()
		last := len(w.Trailer().Entries) - 1
		off := h.TrailerOffset + section.ZTrailerFixedSize + int64(last)*section.ZBlockEntrySize + 16
		engine.PutUint32(f.data[off:off+4], 10)

		r, err := NewReader(f)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.ErrorIs(t, err, errs.ErrInvalidZTrailer)
		require.ErrorIs(t, err, errs.ErrBlockTooLarge)
	})

	t.Run("truncated header", func(t *testing.T) {
		f := &memFile{data: make([]byte, 10)}
		_, err := NewReader(f)
		require.ErrorIs(t, err, errs.ErrFormatTruncated)
	})

	t.Run("inconsistent block offsets", func(t *testing.T) {
		f, w := writeZSAV(t, payload, WithBlockSize(200))
		h := w.Header()
		// second entry's compressed offset
		off := h.TrailerOffset + section.ZTrailerFixedSize + section.ZBlockEntrySize + 8
		engine.PutUint64(f.data[off:off+8], 0)
		_, err := NewReader(f)
		require.ErrorIs(t, err, errs.ErrInvalidZTrailer)
	})

	t.Run("corrupted block", func(t *testing.T) {
		f, w := writeZSAV(t, payload, WithBlockSize(200))
		e := w.Trailer().Entries[1]
		for i := range int64(e.CompressedSize) {
			f.data[e.CompressedOffset+i] ^= 0x5A
		}

		r, err := NewReader(f)
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		require.Error(t, err)

		// the error is sticky
		_, err2 := r.Read(make([]byte, 1))
		require.Equal(t, err, err2)
	})
}

func TestOptions_Invalid(t *testing.T) {
	f := &memFile{}

	_, err := NewWriter(f, WithBlockSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)

	_, err = NewWriter(f, WithBlockCodec(format.CompressionType(42)))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = NewReader(f, WithEngine(nil))
	require.Error(t, err)
}

func TestWriter_Closed(t *testing.T) {
	f := &memFile{}
	w, err := NewWriter(f)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte{1})
	require.ErrorIs(t, err, errs.ErrClosed)
}
