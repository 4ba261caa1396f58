package revline

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Source is the stream a BackwardLineReader scans. Size reports the current
// length of the stream and ReadAt reads from an arbitrary offset.
type Source interface {
	Size() (int64, error)
	io.ReaderAt
}

// SizedReaderAt is implemented by *bytes.Reader, *strings.Reader and
// *io.SectionReader.
type SizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// NewReaderAtSource adapts a fixed size reader.
func NewReaderAtSource(r SizedReaderAt) Source {
	return readerAtSource{r}
}

type readerAtSource struct {
	SizedReaderAt
}

func (s readerAtSource) Size() (int64, error) {
	return s.SizedReaderAt.Size(), nil
}

// FileSource is a Source over an already open file. Closing the file is the
// caller's responsibility.
type FileSource struct {
	*os.File
}

func (f FileSource) Size() (int64, error) {
	fi, err := f.File.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func NewBufferSource() *BufferSource {
	return &BufferSource{}
}

// BufferSource is an in-memory Source that may be appended to between passes.
type BufferSource struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *BufferSource) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *BufferSource) Size() (int64, error) {
	s.mu.Lock()
	sz := int64(s.buf.Len())
	s.mu.Unlock()
	return sz, nil
}

func (s *BufferSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if off >= int64(s.buf.Len()) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, s.buf.Bytes()[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// NewSeekerSource adapts a stream that only offers a movable cursor. Every
// call repositions the cursor, so nothing else may use rs while the Source is
// in use.
func NewSeekerSource(rs io.ReadSeeker) Source {
	return &seekerSource{rs}
}

type seekerSource struct {
	rs io.ReadSeeker
}

func (s *seekerSource) Size() (int64, error) {
	return s.rs.Seek(0, io.SeekEnd)
}

func (s *seekerSource) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.rs, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
