package sim

import (
	"fmt"
	"io"
	"strings"
)

// Logger is the simulation trace sink. Lines are written to the underlying
// writer in the order they are ended.
type Logger struct {
	out io.Writer
	err error
}

// NewLogger creates a Logger writing to w. A nil w discards output.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{out: w}
}

// Line starts a new line.
func (l *Logger) Line() *LineBuilder {
	return &LineBuilder{logger: l}
}

// At starts a new line prefixed with the simulation time, as "[t] ".
func (l *Logger) At(t int64) *LineBuilder {
	b := l.Line()
	fmt.Fprintf(&b.buf, "[%d] ", t)
	return b
}

// Err returns the first error returned by the underlying writer.
func (l *Logger) Err() error {
	return l.err
}

func (l *Logger) write(s string) {
	if _, err := io.WriteString(l.out, s); err != nil && l.err == nil {
		l.err = err
	}
}

// LineBuilder collects the values of one trace line. Nothing is written until
// End is called, so every exit path that started a line must end it.
type LineBuilder struct {
	logger *Logger
	buf    strings.Builder
	ended  bool
}

// Add appends values to the line, each formatted with its default format and
// without separators.
func (b *LineBuilder) Add(values ...any) *LineBuilder {
	for _, v := range values {
		fmt.Fprint(&b.buf, v)
	}
	return b
}

// Addf appends a formatted value to the line.
func (b *LineBuilder) Addf(format string, args ...any) *LineBuilder {
	fmt.Fprintf(&b.buf, format, args...)
	return b
}

// End terminates the line and writes it. Calling End again does nothing.
func (b *LineBuilder) End() {
	if b.ended {
		return
	}
	b.ended = true
	b.buf.WriteByte('\n')
	b.logger.write(b.buf.String())
}
