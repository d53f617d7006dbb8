package transcoder

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/bitpack"
	bperrors "github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	b := schema.NewBuilder("gpu")
	b.AddEnum(schema.EnumDecl{Name: "Wrap", Values: []schema.ValueDecl{
		{Name: "Repeat", Value: "0"},
		{Name: "Clamp to edge", Value: "1"},
		{Name: "Mirrored repeat", Value: "2"},
	}})
	b.AddEnum(schema.EnumDecl{Name: "Channels", Values: []schema.ValueDecl{
		{Name: "R8", Value: "0x02"},
		{Name: "R8G8B8A8", Value: "0x1A"},
	}})
	b.AddEnum(schema.EnumDecl{Name: "Texture Type", Values: []schema.ValueDecl{
		{Name: "UNORM", Value: "2"},
	}})
	b.AddStruct(schema.StructDecl{Name: "Sampler", Size: "8", Align: "16", Fields: []schema.FieldDecl{
		{Name: "Wrap S", Start: "0", Size: "3", Type: "Wrap", Default: "Clamp to edge"},
		{Name: "Enable", Start: "3", Size: "1", Type: "bool", Default: "true"},
		{Name: "Stride", Start: "4", Size: "12", Type: "uint", Modifier: "shr(2)", Default: "16"},
		{Name: "Tag", Start: "16", Size: "4", Type: "hex", Exact: "0xA"},
		{Name: "Min LOD", Start: "1:0", Size: "10", Type: "lod", Default: "1.5"},
		{Name: "Bias", Start: "1:10", Size: "6", Type: "int", Default: "-2"},
		{Name: "Mode", Start: "1:16", Size: "2", Type: "uint", Values: []schema.ValueDecl{
			{Name: "Fast", Value: "1"},
			{Name: "Slow", Value: "2"},
		}, Default: "Slow"},
	}})
	b.AddStruct(schema.StructDecl{Name: "Wide", Fields: []schema.FieldDecl{
		{Name: "Address", Start: "0", Size: "48", Type: "address", Modifier: "shr(4)"},
		{Name: "Count", Start: "48", Size: "8", Type: "uint", Modifier: "minus(1)"},
		{Name: "Pitch", Start: "56", Size: "4", Type: "uint", Modifier: "log2"},
		{Name: "Offset", Start: "2:0", Size: "32", Type: "float"},
		{Name: "Size", Start: "3:0", Size: "16", Type: "uint", Modifier: "align(4)"},
		{Name: "Format", Start: "3:16", Size: "16", Type: "Pixel Format"},
	}})
	b.AddStruct(schema.StructDecl{Name: "Pair", Fields: []schema.FieldDecl{
		{Name: "Header", Start: "0", Size: "4", Type: "uint"},
		{Name: "Sampler", Start: "4", Size: "64", Type: "Sampler"},
		{Name: "Value", Start: "2:4", Size: "32", Type: "uint/float"},
	}})
	b.AddStruct(schema.StructDecl{Name: "Opaque", NoDirectPacking: true, Fields: []schema.FieldDecl{
		{Name: "Kind", Start: "0", Size: "3", Type: "Wrap"},
	}})
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func compile(t *testing.T, name string, opts Options) *Program {
	t.Helper()
	p, err := NewCompiler(testSchema(t), opts).Compile(name)
	if err != nil {
		t.Fatalf("Compile(%s): %v", name, err)
	}
	return p
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func expectPanic(t *testing.T, kind bperrors.Kind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic of kind %s", kind)
		}
		e, ok := r.(*bperrors.Error)
		if !ok {
			t.Fatalf("panic value %T %v, want *errors.Error", r, r)
		}
		if e.Kind != kind {
			t.Fatalf("panic kind = %s, want %s (%v)", e.Kind, kind, e)
		}
	}()
	fn()
}

func TestPack_Defaults(t *testing.T) {
	p := compile(t, "Sampler", Options{})
	buf, err := p.Pack(p.New())
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := mustHex(t, "49000a0060f80200")
	if !bytes.Equal(buf, want) {
		t.Errorf("Pack = %x, want %x", buf, want)
	}
}

func TestPack_ZeroFill(t *testing.T) {
	p := compile(t, "Wide", Options{})
	rec := p.Zero()
	// log2 and minus have no zero in their domain
	if err := rec.SetAll(map[string]any{"count": 1, "pitch": 1}); err != nil {
		t.Fatal(err)
	}
	buf, err := p.Pack(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, make([]byte, 16)) {
		t.Errorf("Pack = %x, want zeroes", buf)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   map[string]any
	}{
		{
			name:   "sampler",
			values: map[string]any{"wrap_s": "Mirrored repeat", "enable": false, "stride": 4092, "min_lod": 14.0, "bias": -32, "mode": "Fast"},
			want:   map[string]any{"wrap_s": uint64(2), "enable": false, "stride": uint64(4092), "min_lod": float32(14), "bias": int64(-32), "mode": uint64(1)},
		},
		{
			name:   "wide",
			values: map[string]any{"address": uint64(0xFFFFFFFFFFF0), "count": 256, "pitch": 1 << 15, "offset": float32(-1.25), "size": 10, "format": 0x11A},
			want:   map[string]any{"address": uint64(0xFFFFFFFFFFF0), "count": uint64(256), "pitch": uint64(1 << 15), "offset": float32(-1.25), "size": uint64(12), "format": uint64(0x11A)},
		},
		{
			name:   "nested",
			values: map[string]any{"header": 9, "sampler.bias": 31, "sampler.stride": 8, "value": 0x3F800000},
			want:   map[string]any{"header": uint64(9), "sampler.bias": int64(31), "sampler.stride": uint64(8), "sampler.tag": uint64(0xA), "value": uint64(0x3F800000)},
		},
	}

	structs := map[string]string{"sampler": "Sampler", "wide": "Wide", "nested": "Pair"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compile(t, structs[tt.name], Options{})
			rec := p.New()
			if err := rec.SetAll(tt.values); err != nil {
				t.Fatalf("SetAll: %v", err)
			}
			buf, err := p.Pack(rec)
			if err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if len(buf) != p.Length() {
				t.Fatalf("len = %d, want %d", len(buf), p.Length())
			}

			var c bitpack.Collector
			out, err := p.Unpack(buf, &c)
			if err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if c.Len() != 0 {
				t.Errorf("unexpected diagnostics: %v", c.Diagnostics())
			}
			for path, want := range tt.want {
				got, ok := out.Get(path)
				if !ok || got != want {
					t.Errorf("%s = %v (%T), want %v (%T)", path, got, got, want, want)
				}
			}
		})
	}
}

func TestUnpack_ReservedBits(t *testing.T) {
	p := compile(t, "Sampler", Options{})
	buf := mustHex(t, "49008a0060f80200")

	var c bitpack.Collector
	rec, err := p.Unpack(buf, &c)
	if err != nil {
		t.Fatal(err)
	}
	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Kind != bitpack.ReservedBits || d.Word != 0 || d.Mask != 0x00800000 || d.Bit() != 23 {
		t.Errorf("diagnostic = %+v", d)
	}
	want := "XXX: Unknown field of Sampler unpacked at word 0: got 8A0049, bad mask 800000"
	if d.String() != want {
		t.Errorf("String = %q, want %q", d.String(), want)
	}
	if rec.Uint("wrap_s") != 1 || rec.Uint("stride") != 16 || rec.Int("bias") != -2 {
		t.Errorf("fields not populated: %v", rec)
	}
}

func TestUnpack_StrictExact(t *testing.T) {
	buf := mustHex(t, "4900050060f80200")

	t.Run("lenient", func(t *testing.T) {
		var c bitpack.Collector
		rec, err := compile(t, "Sampler", Options{}).Unpack(buf, &c)
		if err != nil {
			t.Fatal(err)
		}
		if c.Len() != 0 {
			t.Errorf("diagnostics = %v", c.Diagnostics())
		}
		if rec.Uint("tag") != 5 {
			t.Errorf("tag = %d, want the stored 5", rec.Uint("tag"))
		}
	})

	t.Run("strict", func(t *testing.T) {
		var c bitpack.Collector
		if _, err := compile(t, "Sampler", Options{StrictExact: true}).Unpack(buf, &c); err != nil {
			t.Fatal(err)
		}
		diags := c.Diagnostics()
		if len(diags) != 1 || diags[0].Kind != bitpack.ExactMismatch || diags[0].Field != "tag" {
			t.Fatalf("diagnostics = %v", diags)
		}
		if diags[0].Actual != 5 || diags[0].Want != 0xA {
			t.Errorf("diagnostic = %+v", diags[0])
		}
	})
}

func TestModifierContracts(t *testing.T) {
	p := compile(t, "Wide", Options{})

	tests := []struct {
		name   string
		values map[string]any
		kind   bperrors.Kind
	}{
		{"shr low bits", map[string]any{"address": 0x13, "count": 1, "pitch": 1}, bperrors.KindContract},
		{"minus underflow", map[string]any{"count": 0, "pitch": 1}, bperrors.KindContract},
		{"log2 not power of two", map[string]any{"count": 1, "pitch": 6}, bperrors.KindContract},
		{"too wide", map[string]any{"count": 258, "pitch": 1}, bperrors.KindOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.Zero()
			if err := rec.SetAll(tt.values); err != nil {
				t.Fatal(err)
			}
			expectPanic(t, tt.kind, func() { _, _ = p.Pack(rec) })
		})
	}

	t.Run("int too wide", func(t *testing.T) {
		sp := compile(t, "Sampler", Options{})
		rec := sp.New()
		if err := rec.Set("bias", 32); err != nil {
			t.Fatal(err)
		}
		expectPanic(t, bperrors.KindOverflow, func() { _, _ = sp.Pack(rec) })
	})

	t.Run("misaligned unpack", func(t *testing.T) {
		buf := make([]byte, 16)
		buf[12] = 6 // size 6 is not a multiple of 4
		expectPanic(t, bperrors.KindContract, func() { _, _ = p.Unpack(buf, nil) })
	})

	t.Run("recover", func(t *testing.T) {
		rec := p.Zero()
		_ = rec.Set("pitch", 1)
		pack := func() (err error) {
			defer bperrors.Recover(&err)
			_, err = p.Pack(rec)
			return err
		}
		if err := pack(); !errors.Is(err, &bperrors.Error{Phase: bperrors.PhasePack, Kind: bperrors.KindContract}) {
			t.Errorf("err = %v, want pack contract", err)
		}
	})
}

func TestLOD(t *testing.T) {
	p := compile(t, "Sampler", Options{})
	for _, tt := range []struct {
		in   float32
		code byte
		out  float32
	}{
		{14.0, 0x80, 14.0},
		{15.0, 0x80, 14.0},
		{-1.0, 0x00, 0},
	} {
		rec := p.New()
		_ = rec.Set("min_lod", tt.in)
		buf, err := p.Pack(rec)
		if err != nil {
			t.Fatal(err)
		}
		// 0x380 spans the low byte and the two low bits of the next
		if buf[4] != tt.code {
			t.Errorf("lod %v: low byte = %#x, want %#x", tt.in, buf[4], tt.code)
		}
		out, _ := p.Unpack(buf, nil)
		if out.Float("min_lod") != tt.out {
			t.Errorf("lod %v unpacked to %v, want %v", tt.in, out.Float("min_lod"), tt.out)
		}
	}
}

func TestPrint(t *testing.T) {
	p := compile(t, "Pair", Options{})
	rec := p.New()
	if err := rec.SetAll(map[string]any{"header": 3, "value": 0x3F800000}); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := p.Print(&sb, rec, 2); err != nil {
		t.Fatal(err)
	}
	want := "  Header: 3\n" +
		"  Sampler:\n" +
		"    Wrap S: Clamp to edge\n" +
		"    Enable: true\n" +
		"    Stride: 16\n" +
		"    Tag: 0xa\n" +
		"    Min LOD: 1.500000\n" +
		"    Bias: -2\n" +
		"    Mode: 2\n" +
		"  Value: 0x3F800000 (1.000000)\n"
	if sb.String() != want {
		t.Errorf("Print =\n%s\nwant\n%s", sb.String(), want)
	}
}

func TestPrint_Formats(t *testing.T) {
	p := compile(t, "Wide", Options{})
	rec := p.Zero()
	if err := rec.SetAll(map[string]any{"address": 0x1230, "count": 2, "pitch": 4, "format": 0x11A}); err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := p.Print(&sb, rec, 0); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"Address: 0x1230\n",
		"Count: 2\n",
		"Offset: 0.000000\n",
		"Format: R8G8B8A8 UNORM\n",
	} {
		if !strings.Contains(sb.String(), line) {
			t.Errorf("missing %q in\n%s", line, sb.String())
		}
	}

	t.Run("unknown pixel format", func(t *testing.T) {
		_ = rec.Set("format", 0x7F|5<<7)
		sb.Reset()
		_ = p.Print(&sb, rec, 0)
		if !strings.Contains(sb.String(), "Format: unknown channels 7F unknown type 05\n") {
			t.Errorf("got\n%s", sb.String())
		}
	})
}

func TestPrint_UnknownEnum(t *testing.T) {
	p := compile(t, "Opaque", Options{})
	rec := p.Zero()
	_ = rec.Set("kind", 5)
	var sb strings.Builder
	if err := p.Print(&sb, rec, 0); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "Kind: unknown 5 (XXX)\n" {
		t.Errorf("Print = %q", sb.String())
	}
}

func TestMisuse(t *testing.T) {
	c := NewCompiler(testSchema(t), Options{})
	sampler, _ := c.Compile("Sampler")
	wide, _ := c.Compile("Wide")
	opaque, _ := c.Compile("Opaque")

	tests := []struct {
		name string
		err  error
		kind bperrors.Kind
	}{
		{"wrong record", func() error { _, err := sampler.Pack(wide.Zero()); return err }(), bperrors.KindTypeMismatch},
		{"short buffer", func() error { _, err := sampler.Unpack(make([]byte, 4), nil); return err }(), bperrors.KindInvalidLength},
		{"no direct packing", func() error { _, err := opaque.Pack(opaque.Zero()); return err }(), bperrors.KindUnsupported},
		{"no direct unpacking", func() error { _, err := opaque.Unpack(make([]byte, 4), nil); return err }(), bperrors.KindUnsupported},
		{"unknown field", sampler.New().Set("nope", 1), bperrors.KindFieldUnknown},
		{"exact field", sampler.New().Set("tag", 1), bperrors.KindReadOnly},
		{"wrong type", sampler.New().Set("enable", 2.5), bperrors.KindTypeMismatch},
		{"bad literal", sampler.New().Set("stride", "012"), bperrors.KindInvalidLiteral},
		{"unknown struct", func() error { _, err := c.Compile("Missing"); return err }(), bperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e *bperrors.Error
			if !errors.As(tt.err, &e) || e.Kind != tt.kind {
				t.Errorf("err = %v, want kind %s", tt.err, tt.kind)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	p := compile(t, "Pair", Options{})
	rec := p.New()

	t.Run("clone is deep", func(t *testing.T) {
		cl := rec.Clone()
		_ = cl.Set("sampler.bias", 5)
		if rec.Int("sampler.bias") != -2 || cl.Int("sampler.bias") != 5 {
			t.Error("clone shares nested values")
		}
		if rec.Equal(cl) {
			t.Error("Equal should see the change")
		}
	})

	t.Run("set struct from map", func(t *testing.T) {
		cl := rec.Clone()
		if err := cl.Set("sampler", map[string]any{"wrap_s": "Repeat", "Enable": false}); err != nil {
			t.Fatal(err)
		}
		if cl.Uint("sampler.wrap_s") != 0 || cl.Bool("sampler.enable") {
			t.Errorf("sampler = %v", cl.Record("sampler"))
		}
	})

	t.Run("set struct from map is all or nothing", func(t *testing.T) {
		cl := rec.Clone()
		for range 8 {
			err := cl.Set("sampler", map[string]any{"wrap_s": "Repeat", "bias": 7, "nope": 1})
			if err == nil {
				t.Fatal("unknown nested field accepted")
			}
			if !cl.Equal(rec) {
				t.Fatalf("failed set left sampler = %v", cl.Record("sampler"))
			}
		}
	})

	t.Run("map", func(t *testing.T) {
		m := rec.Map()
		inner, ok := m["sampler"].(map[string]any)
		if !ok || inner["bias"] != int64(-2) {
			t.Errorf("Map = %v", m)
		}
	})
}

func TestCompiler_Concurrent(t *testing.T) {
	c := NewCompiler(testSchema(t), Options{})
	var wg sync.WaitGroup
	programs := make([]*Program, 8)
	for i := range programs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			programs[i], _ = c.Compile("Pair")
		}(i)
	}
	wg.Wait()
	for _, p := range programs[1:] {
		if p != programs[0] {
			t.Fatal("Compile should return the cached program")
		}
	}
}
