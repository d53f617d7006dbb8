package bitpack

import (
	"fmt"
	"io"
	"math/bits"
	"sync"

	"go.uber.org/zap"
)

// DiagnosticKind identifies a non-fatal condition found while unpacking
type DiagnosticKind uint8

const (
	// ReservedBits is reported when a word has bits set outside every
	// declared field.
	ReservedBits DiagnosticKind = iota
	// ExactMismatch is reported in strict mode when a fixed-value field holds
	// something other than its declared value.
	ExactMismatch
)

func (k DiagnosticKind) String() string {
	switch k {
	case ReservedBits:
		return "reserved_bits"
	case ExactMismatch:
		return "exact_mismatch"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", k)
	}
}

// Diagnostic describes one non-fatal unpack finding.
type Diagnostic struct {
	Kind   DiagnosticKind
	Struct string // struct label
	Word   int    // word index within the buffer
	Got    uint32 // raw word as read
	Mask   uint32 // offending bits within the word

	// Set for ExactMismatch only.
	Field  string
	Want   uint64
	Actual uint64
}

// Bit returns the absolute index of the lowest offending bit, or -1.
func (d Diagnostic) Bit() int {
	if d.Mask == 0 {
		return -1
	}
	return d.Word*32 + bits.TrailingZeros32(d.Mask)
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case ExactMismatch:
		return fmt.Sprintf("XXX: Fixed field %s of %s unpacked at word %d: got %X, expected %X",
			d.Field, d.Struct, d.Word, d.Actual, d.Want)
	default:
		return fmt.Sprintf("XXX: Unknown field of %s unpacked at word %d: got %X, bad mask %X",
			d.Struct, d.Word, d.Got, d.Mask)
	}
}

// Sink receives diagnostics from unpack. Reporting never stops decoding.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(Diagnostic)

// Report calls f(d)
func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic
var Discard Sink = SinkFunc(func(Diagnostic) {})

type writerSink struct {
	mu sync.Mutex
	w  io.Writer
}

// WriterSink writes one line per diagnostic to w.
func WriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, d.String())
}

type loggerSink struct {
	l *zap.Logger
}

// LoggerSink reports diagnostics as zap warnings.
func LoggerSink(l *zap.Logger) Sink {
	if l == nil {
		l = zap.NewNop()
	}
	return loggerSink{l: l}
}

func (s loggerSink) Report(d Diagnostic) {
	fields := []zap.Field{
		zap.Stringer("kind", d.Kind),
		zap.String("struct", d.Struct),
		zap.Int("word", d.Word),
		zap.String("got", fmt.Sprintf("0x%X", d.Got)),
	}
	switch d.Kind {
	case ExactMismatch:
		fields = append(fields,
			zap.String("field", d.Field),
			zap.Uint64("want", d.Want),
			zap.Uint64("actual", d.Actual))
		s.l.Warn("fixed field mismatch", fields...)
	default:
		fields = append(fields,
			zap.String("mask", fmt.Sprintf("0x%X", d.Mask)),
			zap.Int("bit", d.Bit()))
		s.l.Warn("unknown bits set", fields...)
	}
}

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report appends d
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diagnostics = append(c.diagnostics, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Len returns the number of diagnostics reported
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diagnostics)
}

// Reset clears the collector
func (c *Collector) Reset() {
	c.mu.Lock()
	c.diagnostics = c.diagnostics[:0]
	c.mu.Unlock()
}

// Tee reports to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}
