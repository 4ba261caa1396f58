package revline

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrIncompatibleEncoding is returned by NewEncodingDecoder for encodings in
// which a newline is not the single byte 0x0A.
var ErrIncompatibleEncoding = errors.New("encoding does not encode newline as 0x0A")

// ErrNegativeOffset is returned by BufferSource.ReadAt for offsets before the
// start of the buffer.
var ErrNegativeOffset = errors.New("negative offset")

// IOError reports a failed size query or read of the Source. A Source that
// shrinks during a pass surfaces here as io.ErrUnexpectedEOF.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("revline: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Cause() error { return e.Err }

// DecodeError reports a line whose bytes are not valid text. Offset is where
// the line starts in the Source.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("revline: decode line at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Cause() error { return e.Err }
