package schema

import (
	"errors"
	"strings"
	"testing"

	bperrors "github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/modifier"
)

func samplerBuilder() *Builder {
	b := NewBuilder("gpu")
	b.AddEnum(EnumDecl{Name: "Wrap", Values: []ValueDecl{
		{Name: "Repeat", Value: "0"},
		{Name: "Clamp to edge", Value: "1"},
		{Name: "Mirrored repeat", Value: "2"},
	}})
	b.AddStruct(StructDecl{Name: "Sampler", Size: "8", Align: "16", Fields: []FieldDecl{
		{Name: "Wrap S", Start: "0", Size: "3", Type: "Wrap", Default: "Clamp to edge"},
		{Name: "Enable", Start: "3", Size: "1", Type: "bool", Default: "true"},
		{Name: "Stride", Start: "4", Size: "12", Type: "uint", Modifier: "shr(2)", Default: "16"},
		{Name: "Tag", Start: "16", Size: "4", Type: "hex", Exact: "0xA"},
		{Name: "Min LOD", Start: "1:0", Size: "10", Type: "lod", Default: "1.5"},
		{Name: "Bias", Start: "1:10", Size: "6", Type: "int", Default: "-2"},
		{Name: "Mode", Start: "1:16", Size: "2", Type: "uint", Prefix: "Mode", Values: []ValueDecl{
			{Name: "Fast", Value: "1"},
			{Name: "Slow", Value: "2"},
		}, Default: "Slow"},
	}})
	return b
}

func TestBuild(t *testing.T) {
	s, err := samplerBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	st, ok := s.Struct("Sampler")
	if !ok {
		t.Fatal("Sampler not found")
	}
	if st.Size != 8 || st.Align != 16 || !st.Packable() {
		t.Errorf("Sampler = size %d align %d packable %v", st.Size, st.Align, st.Packable())
	}
	if len(st.Fields) != 7 {
		t.Fatalf("got %d fields, want 7", len(st.Fields))
	}

	t.Run("identifiers", func(t *testing.T) {
		f, ok := st.Field("Wrap S")
		if !ok || f.Name != "wrap_s" || f.Label != "Wrap S" {
			t.Errorf("Wrap S = %+v", f)
		}
		if _, ok := st.Field("min_lod"); !ok {
			t.Error("lookup by identifier failed")
		}
	})

	t.Run("word bit start", func(t *testing.T) {
		f, _ := st.Field("Min LOD")
		if f.Start != 32 || f.End != 41 {
			t.Errorf("Min LOD span = %d..%d, want 32..41", f.Start, f.End)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		tests := []struct {
			field string
			want  any
		}{
			{"Wrap S", uint64(1)},
			{"Enable", true},
			{"Stride", uint64(16)},
			{"Min LOD", float32(1.5)},
			{"Bias", int64(-2)},
			{"Mode", uint64(2)},
		}
		for _, tt := range tests {
			f, _ := st.Field(tt.field)
			if f.Default != tt.want {
				t.Errorf("%s default = %#v, want %#v", tt.field, f.Default, tt.want)
			}
		}
	})

	t.Run("exact and modifier", func(t *testing.T) {
		tag, _ := st.Field("Tag")
		if tag.Exact == nil || *tag.Exact != 0xA {
			t.Errorf("Tag exact = %v", tag.Exact)
		}
		stride, _ := st.Field("Stride")
		if stride.Modifier != (modifier.Modifier{Op: modifier.Shr, Arg: 2}) {
			t.Errorf("Stride modifier = %+v", stride.Modifier)
		}
	})

	t.Run("prefix", func(t *testing.T) {
		mode, _ := st.Field("Mode")
		if mode.Prefix != "MODE" {
			t.Errorf("Prefix = %q", mode.Prefix)
		}
		if v, ok := mode.Alias("Fast"); !ok || v != 1 {
			t.Errorf("Alias(Fast) = %d, %v", v, ok)
		}
	})
}

func TestEnumLookup(t *testing.T) {
	b := NewBuilder("t")
	b.AddEnum(EnumDecl{Name: "E", Values: []ValueDecl{{Name: "A", Value: "0"}, {Name: "B", Value: "1"}}})
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	e, _ := s.Enum("E")

	if name, ok := e.Lookup(0); !ok || name != "A" {
		t.Errorf("Lookup(0) = %q, %v", name, ok)
	}
	if name, ok := e.Lookup(1); !ok || name != "B" {
		t.Errorf("Lookup(1) = %q, %v", name, ok)
	}
	if _, ok := e.Lookup(2); ok {
		t.Error("Lookup(2) should not match")
	}
	if v, ok := e.Value("B"); !ok || v != 1 {
		t.Errorf("Value(B) = %d, %v", v, ok)
	}
}

func TestBuild_StructReferenceOrder(t *testing.T) {
	b := NewBuilder("t")
	b.AddStruct(StructDecl{Name: "Outer", Fields: []FieldDecl{
		{Name: "Inner", Start: "0", Size: "32", Type: "Inner"},
	}})
	b.AddStruct(StructDecl{Name: "Inner", Fields: []FieldDecl{
		{Name: "X", Start: "0", Size: "8", Type: "uint"},
	}})
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	outer, _ := s.Struct("Outer")
	if outer.Fields[0].Type != (Type{Kind: KindStruct, Ref: "Inner"}) {
		t.Errorf("type = %+v", outer.Fields[0].Type)
	}
	if names := []string{s.Structs()[0].Name, s.Structs()[1].Name}; names[0] != "Outer" || names[1] != "Inner" {
		t.Errorf("declaration order lost: %v", names)
	}
}

func TestBuild_Errors(t *testing.T) {
	field := func(fd FieldDecl) *Builder {
		b := NewBuilder("t")
		b.AddEnum(EnumDecl{Name: "E", Values: []ValueDecl{{Name: "A", Value: "0"}}})
		b.AddStruct(StructDecl{Name: "S", Fields: []FieldDecl{fd}})
		return b
	}

	tests := []struct {
		name string
		b    *Builder
		kind bperrors.Kind
	}{
		{"wide bool", field(FieldDecl{Name: "b", Start: "0", Size: "2", Type: "bool"}), bperrors.KindInvalidWidth},
		{"short float", field(FieldDecl{Name: "f", Start: "0", Size: "16", Type: "float"}), bperrors.KindInvalidWidth},
		{"unaligned float", field(FieldDecl{Name: "f", Start: "8", Size: "32", Type: "float"}), bperrors.KindInvalidWidth},
		{"lod width", field(FieldDecl{Name: "l", Start: "0", Size: "8", Type: "lod"}), bperrors.KindInvalidWidth},
		{"wide int", field(FieldDecl{Name: "i", Start: "0", Size: "33", Type: "int"}), bperrors.KindInvalidWidth},
		{"zero size", field(FieldDecl{Name: "u", Start: "0", Size: "0", Type: "uint"}), bperrors.KindInvalidWidth},
		{"unknown type", field(FieldDecl{Name: "u", Start: "0", Size: "4", Type: "Nope"}), bperrors.KindUnknownType},
		{"octal start", field(FieldDecl{Name: "u", Start: "010", Size: "4", Type: "uint"}), bperrors.KindInvalidLiteral},
		{"bad align modifier", field(FieldDecl{Name: "u", Start: "0", Size: "8", Type: "uint", Modifier: "align(3)"}), bperrors.KindInvalidModifier},
		{"modifier on bool", field(FieldDecl{Name: "b", Start: "0", Size: "1", Type: "bool", Modifier: "log2"}), bperrors.KindInvalidModifier},
		{"exact with modifier", field(FieldDecl{Name: "u", Start: "0", Size: "8", Type: "uint", Exact: "4", Modifier: "shr(2)"}), bperrors.KindInvalidModifier},
		{"exact too wide", field(FieldDecl{Name: "u", Start: "0", Size: "4", Type: "uint", Exact: "16"}), bperrors.KindOverflow},
		{"unknown enum default", field(FieldDecl{Name: "e", Start: "0", Size: "4", Type: "E", Default: "Z"}), bperrors.KindNotFound},
		{"default breaks modifier", field(FieldDecl{Name: "u", Start: "0", Size: "8", Type: "uint", Modifier: "minus(1)", Default: "0"}), bperrors.KindInvalidData},
		{"default too wide", field(FieldDecl{Name: "u", Start: "0", Size: "4", Type: "uint", Default: "16"}), bperrors.KindOverflow},
		{"struct size", NewBuilder("t").AddStruct(StructDecl{Name: "S", Size: "6"}), bperrors.KindInvalidLength},
		{"duplicate type", NewBuilder("t").
			AddEnum(EnumDecl{Name: "T"}).
			AddStruct(StructDecl{Name: "T"}), bperrors.KindDuplicate},
		{"duplicate field", NewBuilder("t").AddStruct(StructDecl{Name: "S", Fields: []FieldDecl{
			{Name: "A b", Start: "0", Size: "1", Type: "bool"},
			{Name: "a-b", Start: "1", Size: "1", Type: "bool"},
		}}), bperrors.KindDuplicate},
		{"duplicate enum value", NewBuilder("t").AddEnum(EnumDecl{Name: "E", Values: []ValueDecl{
			{Name: "X", Value: "0"}, {Name: "X", Value: "1"},
		}}), bperrors.KindDuplicate},
		{"cycle", NewBuilder("t").
			AddStruct(StructDecl{Name: "A", Fields: []FieldDecl{{Name: "b", Start: "0", Size: "32", Type: "B"}}}).
			AddStruct(StructDecl{Name: "B", Fields: []FieldDecl{{Name: "a", Start: "0", Size: "32", Type: "A"}}}),
			bperrors.KindCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			var list *bperrors.List
			var e *bperrors.Error
			switch {
			case errors.As(err, &list):
				found := false
				for _, item := range list.Errors {
					if item.Kind == tt.kind {
						found = true
					}
				}
				if !found {
					t.Errorf("no %s error in %v", tt.kind, err)
				}
			case errors.As(err, &e):
				if e.Kind != tt.kind {
					t.Errorf("Kind = %s, want %s (%v)", e.Kind, tt.kind, err)
				}
			default:
				t.Errorf("unexpected error type %T", err)
			}
		})
	}
}

func TestBuild_ReportsAllErrors(t *testing.T) {
	b := NewBuilder("t")
	b.AddStruct(StructDecl{Name: "S", Fields: []FieldDecl{
		{Name: "a", Start: "0", Size: "2", Type: "bool"},
		{Name: "b", Start: "2", Size: "4", Type: "Missing"},
	}})
	b.AddStruct(StructDecl{Name: "T", Size: "3"})

	_, err := b.Build()
	var list *bperrors.List
	if !errors.As(err, &list) {
		t.Fatalf("err = %T, want *errors.List", err)
	}
	if list.Len() != 3 {
		t.Errorf("got %d errors, want 3: %v", list.Len(), err)
	}
	if !strings.Contains(err.Error(), "S:") || !strings.Contains(err.Error(), "T:") {
		t.Errorf("errors not grouped by struct: %v", err)
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Clamp to edge", "Clamp_to_edge"},
		{"R8G8B8A8/sRGB", "R8G8B8A8_sRGB"},
		{"2D array", "_2D_array"},
		{"Mip (level)", "Mip_level"},
		{"a-b.c", "a_bc"},
		{`x"+'`, "x"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FieldIdent("Min LOD"); got != "min_lod" {
		t.Errorf("FieldIdent = %q", got)
	}
	if got := PrefixedName("Wrap", "Clamp to edge"); got != "WRAP_CLAMP_TO_EDGE" {
		t.Errorf("PrefixedName = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	a, err := samplerBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := samplerBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical schemas should share a fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a.Fingerprint()))
	}

	c, err := samplerBuilder().AddEnum(EnumDecl{Name: "Extra"}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different schemas should differ")
	}
}
