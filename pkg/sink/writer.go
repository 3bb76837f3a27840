package sink

import (
	"bufio"
	"io"
	"strconv"

	"github.com/matzehuels/pcfguess/pkg/guess"
)

// Writer writes records to an io.Writer, one per line.
// It is not safe for concurrent use.
type Writer struct {
	w             *bufio.Writer
	probabilities bool
	line          []byte
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithProbabilities appends the probability and rule structure to every line.
func WithProbabilities(on bool) WriterOption {
	return func(s *Writer) {
		s.probabilities = on
	}
}

// NewWriter returns a Writer buffering output to w. The caller keeps
// ownership of w; Close only flushes.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	s := &Writer{w: bufio.NewWriterSize(w, 64*1024)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit implements guess.Sink.
func (s *Writer) Emit(r guess.Record) error {
	s.line = AppendLine(s.line[:0], r, s.probabilities)
	s.line = append(s.line, '\n')
	_, err := s.w.Write(s.line)
	return err
}

// Flush writes buffered lines to the underlying writer.
func (s *Writer) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *Writer) Close() error {
	return s.Flush()
}

// AppendLine appends the text form of r, without a trailing newline.
func AppendLine(dst []byte, r guess.Record, probabilities bool) []byte {
	dst = append(dst, r.Guess...)
	if !probabilities {
		return dst
	}
	dst = append(dst, '\t')
	dst = strconv.AppendFloat(dst, r.Probability, 'g', 6, 64)
	dst = append(dst, '\t')
	return append(dst, r.Rule...)
}

var _ guess.Sink = (*Writer)(nil)
