package bitpack

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{
			name: "reserved bits",
			d:    Diagnostic{Kind: ReservedBits, Struct: "Texture", Word: 2, Got: 0x80000001, Mask: 0x80000000},
			want: "XXX: Unknown field of Texture unpacked at word 2: got 80000001, bad mask 80000000",
		},
		{
			name: "exact mismatch",
			d:    Diagnostic{Kind: ExactMismatch, Struct: "Header", Field: "opcode", Word: 0, Want: 0x12, Actual: 0x13},
			want: "XXX: Fixed field opcode of Header unpacked at word 0: got 13, expected 12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnostic_Bit(t *testing.T) {
	d := Diagnostic{Word: 1, Mask: 0x00000030}
	if got := d.Bit(); got != 36 {
		t.Errorf("Bit() = %d, want 36", got)
	}
	if got := (Diagnostic{}).Bit(); got != -1 {
		t.Errorf("Bit() on empty mask = %d, want -1", got)
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := WriterSink(&buf)
	sink.Report(Diagnostic{Struct: "A", Word: 0, Got: 4, Mask: 4})
	sink.Report(Diagnostic{Struct: "A", Word: 1, Got: 8, Mask: 8})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "word 1") {
		t.Errorf("line %q missing word index", lines[1])
	}
}

func TestLoggerSink(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := LoggerSink(zap.New(core))

	sink.Report(Diagnostic{Kind: ReservedBits, Struct: "Sampler", Word: 3, Got: 0x10, Mask: 0x10})
	sink.Report(Diagnostic{Kind: ExactMismatch, Struct: "Sampler", Field: "tag", Want: 1, Actual: 2})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Message != "unknown bits set" {
		t.Errorf("message = %q", entries[0].Message)
	}
	ctx := entries[0].ContextMap()
	if ctx["struct"] != "Sampler" || ctx["mask"] != "0x10" {
		t.Errorf("context = %v", ctx)
	}
	if ctx["bit"] != int64(100) {
		t.Errorf("bit = %v, want 100", ctx["bit"])
	}
	if entries[1].ContextMap()["field"] != "tag" {
		t.Errorf("exact mismatch context = %v", entries[1].ContextMap())
	}
}

func TestCollectorAndTee(t *testing.T) {
	var a, b Collector
	var count int
	sink := Tee(&a, nil, &b, SinkFunc(func(Diagnostic) { count++ }))

	sink.Report(Diagnostic{Word: 1})
	sink.Report(Diagnostic{Word: 2})

	if a.Len() != 2 || b.Len() != 2 || count != 2 {
		t.Errorf("a=%d b=%d count=%d, want 2 each", a.Len(), b.Len(), count)
	}
	if got := a.Diagnostics()[1].Word; got != 2 {
		t.Errorf("second word = %d, want 2", got)
	}

	a.Reset()
	if a.Len() != 0 {
		t.Errorf("Len() after Reset = %d", a.Len())
	}

	Discard.Report(Diagnostic{})
}
