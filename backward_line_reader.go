// Package revline reads the lines of a seekable stream last line first,
// holding no more than a chunk of the stream (plus the line in progress) in
// memory at a time.
package revline

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/peterstace/revline/assert"
	"github.com/peterstace/revline/metrics"
)

const DefaultChunkSize = 8192

// Config controls a BackwardLineReader. The zero value is usable.
type Config struct {
	// ChunkSize is the number of bytes read per backward step. Values <= 0
	// select DefaultChunkSize.
	ChunkSize int

	// Decoder turns line bytes into text. Defaults to UTF8.
	Decoder Decoder

	// Logger defaults to NullLogger.
	Logger Logger
}

var (
	metricPasses     = metrics.LazyLoadCounter("passes")
	metricChunksRead = metrics.LazyLoadCounter("chunks_read")
	metricBytesRead  = metrics.LazyLoadCounter("bytes_read")
	metricLinesRead  = metrics.LazyLoadCounter("lines_read")
	metricLineBytes  = metrics.LazyLoadHistogram("line_bytes", metrics.BucketLineBytes)
)

type scanState int

const (
	uninitialised scanState = iota
	scanning
	exhausted // start of source reached, pending lines still draining
)

func NewBackwardLineReader(src Source, cfg Config) *BackwardLineReader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Decoder == nil {
		cfg.Decoder = UTF8
	}
	if cfg.Logger == nil {
		cfg.Logger = NullLogger{}
	}
	return &BackwardLineReader{
		src:       src,
		decoder:   cfg.Decoder,
		log:       cfg.Logger,
		chunkSize: cfg.ChunkSize,
	}
}

// BackwardLineReader yields the lines of a Source in reverse order. It is not
// safe for concurrent use, and nothing else may change the Source's content
// before the start of the current pass while a pass is running.
type BackwardLineReader struct {
	src       Source
	decoder   Decoder
	log       Logger
	chunkSize int

	// readBuf is sized on each pass to min(chunkSize, size).
	readBuf []byte

	state     scanState
	pass      int
	size      int64
	remaining int64

	// segment is the leading fragment of the last chunk read. It is nil when
	// nothing is carried, which is distinct from an empty fragment.
	segment    []byte
	segmentOff int64

	pending []string
}

// ReadLine returns the next line, without its newline, counting back from the
// end of the Source. At the start of the Source it returns io.EOF, and the call
// after that begins a new pass from the end. A trailing newline at the end of
// the Source does not produce an empty line.
//
// Errors are *IOError or *DecodeError. They abort the pass.
func (b *BackwardLineReader) ReadLine() (string, error) {
	for {
		if len(b.pending) > 0 {
			line := b.pending[0]
			b.pending[0] = ""
			b.pending = b.pending[1:]
			return line, nil
		}

		var err error
		switch b.state {
		case uninitialised:
			err = b.begin()
		case scanning:
			err = b.readChunk()
		case exhausted:
			b.Reset()
			return "", io.EOF
		}
		if err != nil {
			b.log.Warn("Aborting pass: offset=%d reason=%q", b.remaining, err)
			b.Reset()
			return "", err
		}
	}
}

// Reset abandons the current pass. The next ReadLine starts from the end of
// the Source again.
func (b *BackwardLineReader) Reset() {
	b.state = uninitialised
	b.size = 0
	b.remaining = 0
	b.segment = nil
	b.segmentOff = 0
	b.pending = nil
}

// Offset is the number of bytes at the start of the Source that the current
// pass has not read yet. It is 0 outside of a pass.
func (b *BackwardLineReader) Offset() int64 {
	if b.state != scanning {
		return 0
	}
	return b.remaining
}

// Pass is the number of passes started so far.
func (b *BackwardLineReader) Pass() int {
	return b.pass
}

func (b *BackwardLineReader) begin() error {
	size, err := b.src.Size()
	if err != nil {
		return &IOError{Op: "size", Err: errors.WithStack(err)}
	}
	b.pass++
	b.size = size
	b.remaining = size
	b.state = scanning

	bufSize := b.chunkSize
	if int64(bufSize) > size {
		bufSize = int(size)
	}
	if cap(b.readBuf) < bufSize {
		b.readBuf = make([]byte, bufSize)
	}
	b.readBuf = b.readBuf[:bufSize]

	b.log.SetPass(b.pass)
	b.log.Debug("Starting pass: size=%d chunk=%d", size, b.chunkSize)
	metricPasses().Add(1)
	return nil
}

func (b *BackwardLineReader) readChunk() error {
	if b.remaining == 0 {
		if b.segment != nil {
			if err := b.enqueue(b.segment, b.segmentOff); err != nil {
				return err
			}
			b.segment = nil
		}
		b.state = exhausted
		b.log.Debug("Reached start: size=%d", b.size)
		return nil
	}

	readFrom := b.remaining - int64(len(b.readBuf))
	if readFrom < 0 {
		readFrom = 0
	}
	chunk := b.readBuf[:b.remaining-readFrom]
	n, err := b.src.ReadAt(chunk, readFrom)
	if n < len(chunk) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
	} else if err == io.EOF {
		err = nil
	}
	if err != nil {
		return &IOError{Op: "read", Offset: readFrom, Err: errors.WithStack(err)}
	}
	b.remaining = readFrom
	assert.True(b.remaining >= 0)
	metricChunksRead().Add(1)
	metricBytesRead().Add(int64(n))

	queued := len(b.pending)
	if err := b.split(chunk, readFrom); err != nil {
		return err
	}
	b.log.Debug("Read chunk: offset=%d len=%d lines=%d", readFrom, n, len(b.pending)-queued)
	return nil
}

// split queues the complete lines of chunk, latest first, and carries its
// leading fragment to the next chunk. start is the chunk's offset.
func (b *BackwardLineReader) split(chunk []byte, start int64) error {
	assert.True(len(chunk) > 0)

	end := len(chunk)
	tail := b.segment
	if chunk[end-1] == '\n' {
		// The carried fragment began right after this newline, so it is a
		// whole line. Without a fragment this is the source's final newline.
		if tail != nil {
			if err := b.enqueue(tail, b.segmentOff); err != nil {
				return err
			}
			tail = nil
		}
		end--
	}

	for {
		i := bytes.LastIndexByte(chunk[:end], '\n')
		if i < 0 {
			break
		}
		line := chunk[i+1 : end]
		if tail != nil {
			line = concat(line, tail)
			tail = nil
		}
		if err := b.enqueue(line, start+int64(i)+1); err != nil {
			return err
		}
		end = i
	}

	b.segment = concat(chunk[:end], tail)
	b.segmentOff = start
	return nil
}

func (b *BackwardLineReader) enqueue(p []byte, off int64) error {
	line, err := b.decoder.Decode(p)
	if err != nil {
		return &DecodeError{Offset: off, Err: errors.WithStack(err)}
	}
	b.pending = append(b.pending, line)
	metricLinesRead().Add(1)
	metricLineBytes().Observe(int64(len(p)))
	return nil
}

// concat returns a new non-nil slice so that the result never aliases the
// read buffer.
func concat(a, b []byte) []byte {
	buf := make([]byte, 0, len(a)+len(b))
	buf = append(buf, a...)
	return append(buf, b...)
}
