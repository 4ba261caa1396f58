package revline

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/peterstace/revline/assert"
)

// Logger receives diagnostics from a BackwardLineReader. The pass number set
// with SetPass is stamped onto every record.
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
	SetPass(int)
	Flush() error
}

type NullLogger struct{}

func (NullLogger) Debug(format string, args ...interface{}) {}
func (NullLogger) Warn(format string, args ...interface{})  {}
func (NullLogger) SetPass(int)                              {}
func (NullLogger) Flush() error                             { return nil }

// NewWriterLogger returns a Logger that writes one line per record to w. Each
// record is written before the call returns.
func NewWriterLogger(w io.Writer) Logger {
	return &writerLogger{
		buf: new(bytes.Buffer),
		w:   w,
		now: time.Now,
	}
}

type writerLogger struct {
	mu   sync.Mutex
	buf  *bytes.Buffer
	w    io.Writer
	err  error
	pass int
	now  func() time.Time
}

type level int

const (
	debug level = iota
	warn
)

func (l level) String() string {
	switch l {
	case debug:
		return "Debug"
	case warn:
		return "Warn"
	default:
		assert.True(false)
		return ""
	}
}

func (l *writerLogger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log(debug, format, args...)
	l.flush()
}

func (l *writerLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log(warn, format, args...)
	l.flush()
}

func (l *writerLogger) log(lvl level, format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	format = fmt.Sprintf(
		"%s [%-5s] [%d] %s\n",
		l.now().Format("15:04:05.000000"),
		lvl,
		l.pass,
		format,
	)
	_, l.err = fmt.Fprintf(l.buf, format, args...)
}

func (l *writerLogger) SetPass(pass int) {
	l.mu.Lock()
	l.pass = pass
	l.mu.Unlock()
}

func (l *writerLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flush()
}

func (l *writerLogger) flush() error {
	if l.err != nil {
		return l.err
	}
	_, l.err = io.Copy(l.w, l.buf)
	l.buf.Reset()
	return l.err
}
