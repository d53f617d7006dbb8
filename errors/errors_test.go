package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseSchema,
				Kind:   KindInvalidWidth,
				Struct: "Texture",
				Path:   []string{"sampler", "enable"},
				Type:   "bool",
				Detail: "must be 1 bit",
			},
			contains: []string{"[schema]", "invalid_width", "Texture.sampler.enable", "type bool", "must be 1 bit"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseUnpack,
				Kind:  KindInvalidLength,
			},
			contains: []string{"[unpack]", "invalid_length"},
		},
		{
			name: "struct without path",
			err: &Error{
				Phase:  PhaseLayout,
				Kind:   KindOverlap,
				Struct: "Sampler",
			},
			contains: []string{"at Sampler"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read schema",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "read schema", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhasePack,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhasePack,
		Kind:  KindContract,
		Path:  []string{"stride"},
	}

	if !err.Is(&Error{Phase: PhasePack, Kind: KindContract}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseUnpack, Kind: KindContract}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhasePack, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhasePack, Kind: KindContract}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseSchema, KindInvalidModifier).
		Struct("Texture").
		Path("stride").
		Type("uint").
		Value("align(3)").
		Cause(cause).
		Detail("align argument %d is not a power of two", 3).
		Build()

	if err.Phase != PhaseSchema {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseSchema)
	}
	if err.Kind != KindInvalidModifier {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidModifier)
	}
	if err.Struct != "Texture" {
		t.Errorf("Struct = %v, want Texture", err.Struct)
	}
	if len(err.Path) != 1 || err.Path[0] != "stride" {
		t.Errorf("Path = %v, want [stride]", err.Path)
	}
	if err.Type != "uint" {
		t.Errorf("Type = %v, want uint", err.Type)
	}
	if err.Value != "align(3)" {
		t.Errorf("Value = %v, want align(3)", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "align argument 3 is not a power of two" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Contract", func(t *testing.T) {
		err := Contract(PhasePack, []string{"stride"}, uint64(13), "low %d bits of %d must be zero", 2, 13)
		if err.Kind != KindContract {
			t.Errorf("Kind = %v, want %v", err.Kind, KindContract)
		}
		if err.Detail != "low 2 bits of 13 must be zero" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhasePack, []string{"x"}, uint64(300), 8)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if !strings.Contains(err.Detail, "8 bits") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhasePack, []string{"x"}, "str", "uint")
		if err.Kind != KindTypeMismatch || err.Type != "uint" {
			t.Errorf("Kind=%v Type=%v", err.Kind, err.Type)
		}
		if !strings.Contains(err.Detail, "string") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("FieldUnknown", func(t *testing.T) {
		err := FieldUnknown(PhasePack, "Texture", "depth")
		if err.Kind != KindFieldUnknown || err.Struct != "Texture" {
			t.Errorf("Kind=%v Struct=%v", err.Kind, err.Struct)
		}
	})

	t.Run("InvalidLiteral", func(t *testing.T) {
		err := InvalidLiteral("017", "octal literals are not allowed")
		if err.Phase != PhaseParse || err.Kind != KindInvalidLiteral {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), `"017"`) {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("eof")
		err := Wrap(PhaseLoad, KindInvalidData, cause, "read")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep cause")
		}
	})
}

func TestList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var l List
		if l.Err() != nil {
			t.Errorf("Err() = %v, want nil", l.Err())
		}
	})

	t.Run("single", func(t *testing.T) {
		var l List
		l.Add(nil)
		l.Add(Duplicate(PhaseSchema, "struct", "A"))
		if _, ok := l.Err().(*Error); !ok {
			t.Errorf("Err() = %T, want *Error", l.Err())
		}
	})

	t.Run("grouped", func(t *testing.T) {
		var l List
		l.Add(InvalidWidth("Texture", []string{"a"}, "bool", "too wide"))
		l.Add(InvalidWidth("Sampler", []string{"b"}, "lod", "too narrow"))
		l.Add(InvalidWidth("Texture", []string{"c"}, "float", "too narrow"))

		nested := &List{}
		nested.Add(&l)
		if nested.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", nested.Len())
		}

		msg := l.Err().Error()
		if !strings.Contains(msg, "3 schema error(s)") {
			t.Errorf("message %q missing count", msg)
		}
		if strings.Index(msg, "Texture:") > strings.Index(msg, "Sampler:") {
			t.Errorf("groups out of order: %q", msg)
		}
		if strings.Count(msg, "Texture:") != 1 {
			t.Errorf("Texture group repeated: %q", msg)
		}
	})

	t.Run("is", func(t *testing.T) {
		var l List
		l.Add(New(PhaseLayout, KindOverlap).Build())
		l.Add(New(PhaseSchema, KindCycle).Build())
		err := l.Err()
		if !errors.Is(err, &Error{Phase: PhaseLayout, Kind: KindOverlap}) {
			t.Error("errors.Is should find overlap in list")
		}
		var target *Error
		if !errors.As(err, &target) {
			t.Error("errors.As should find *Error in list")
		}
	})
}

func TestRecover(t *testing.T) {
	t.Run("contract panic", func(t *testing.T) {
		err := func() (err error) {
			defer Recover(&err)
			panic(Contract(PhasePack, nil, 0, "minus underflow"))
		}()
		if !errors.Is(err, &Error{Phase: PhasePack, Kind: KindContract}) {
			t.Errorf("err = %v, want contract error", err)
		}
	})

	t.Run("no panic", func(t *testing.T) {
		err := func() (err error) {
			defer Recover(&err)
			return nil
		}()
		if err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})

	t.Run("foreign panic", func(t *testing.T) {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		func() (err error) {
			defer Recover(&err)
			panic("boom")
		}()
	})
}
