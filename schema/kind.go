package schema

// Kind is the semantic type of a field
type Kind uint8

const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindFloat
	KindHex
	KindAddress
	KindLOD
	KindUintFloat
	KindPixelFormat
	KindEnum
	KindStruct
)

var kindNames = [...]string{
	KindUint:        "uint",
	KindInt:         "int",
	KindBool:        "bool",
	KindFloat:       "float",
	KindHex:         "hex",
	KindAddress:     "address",
	KindLOD:         "lod",
	KindUintFloat:   "uint/float",
	KindPixelFormat: "Pixel Format",
	KindEnum:        "enum",
	KindStruct:      "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// builtinKind maps a type attribute to a builtin kind. Enum and struct
// references are not builtins.
func builtinKind(name string) (Kind, bool) {
	for k := KindUint; k < KindEnum; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// IsUnsigned reports whether values of this kind are zero-extended
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint, KindHex, KindAddress, KindUintFloat, KindPixelFormat, KindEnum:
		return true
	default:
		return false
	}
}

// Modifiable reports whether a modifier may be attached to this kind
func (k Kind) Modifiable() bool {
	return k == KindUint || k == KindHex || k == KindAddress
}

// MaxWidth returns the widest span allowed for the kind, 0 when unbounded.
func (k Kind) MaxWidth() int {
	switch k {
	case KindBool:
		return 1
	case KindLOD:
		return 10
	case KindFloat, KindInt, KindUintFloat, KindPixelFormat, KindEnum:
		return 32
	case KindUint, KindHex, KindAddress:
		return 64
	default:
		return 0
	}
}

// Type is a field's semantic type. Ref names the enum or struct for
// KindEnum and KindStruct.
type Type struct {
	Kind Kind
	Ref  string
}

func (t Type) String() string {
	if t.Kind == KindEnum || t.Kind == KindStruct {
		return t.Ref
	}
	return t.Kind.String()
}
