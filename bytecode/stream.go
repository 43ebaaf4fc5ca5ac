package bytecode

import (
	"bufio"
	"io"

	"github.com/arloliu/savcodec/errs"
)

const readBufferSize = 32 * 1024

// stream is a buffered byte source that remembers where case data starts so
// that it can be re-read when the underlying reader supports seeking.
type stream struct {
	src    io.Reader
	br     *bufio.Reader
	seeker io.Seeker
	start  int64
}

func newStream(r io.Reader) stream {
	s := stream{src: r, br: bufio.NewReaderSize(r, readBufferSize)}
	if sk, ok := r.(io.Seeker); ok {
		if pos, err := sk.Seek(0, io.SeekCurrent); err == nil {
			s.seeker = sk
			s.start = pos
		}
	}

	return s
}

// rewind repositions the source at the first case and drops buffered bytes.
func (s *stream) rewind() error {
	if s.seeker == nil {
		return errs.ErrNotSeekable
	}
	if _, err := s.seeker.Seek(s.start, io.SeekStart); err != nil {
		return err
	}
	s.br.Reset(s.src)

	return nil
}
