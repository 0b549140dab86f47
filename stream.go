package externals

import (
	"bufio"
	"io"
	"io/fs"
)

type readStream struct {
	r *bufio.Reader // nil once closed
}

// NewReadStream wraps r as a [ReadStream]. The result also implements
// io.Closer; closing drops the buffer and makes further reads fail with
// fs.ErrClosed. The underlying reader is not closed.
func NewReadStream(r io.Reader) ReadStream {
	return &readStream{r: bufio.NewReader(r)}
}

func (s *readStream) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, fs.ErrClosed
	}
	return s.r.Read(p)
}

// Next returns up to n bytes, fewer only at the end of the content, and
// io.EOF once nothing is left
func (s *readStream) Next(n int) ([]byte, error) {
	if s.r == nil {
		return nil, fs.ErrClosed
	}
	if n <= 0 {
		return []byte{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(s.r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, io.EOF
	}
	return data, nil
}

func (s *readStream) Rest() ([]byte, error) {
	if s.r == nil {
		return nil, fs.ErrClosed
	}
	return io.ReadAll(s.r)
}

func (s *readStream) Close() error {
	s.r = nil
	return nil
}
