package modifier

import (
	"fmt"
	mbits "math/bits"
	"strings"

	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/internal/attr"
)

// Op identifies a reversible field transform
type Op uint8

const (
	None Op = iota
	Shr
	Minus
	Align
	Log2
)

var opNames = [...]string{
	None:  "",
	Shr:   "shr",
	Minus: "minus",
	Align: "align",
	Log2:  "log2",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		if o == None {
			return "none"
		}
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// HasArg reports whether the op takes a numeric argument
func (o Op) HasArg() bool {
	return o == Shr || o == Minus || o == Align
}

func lookupOp(name string) (Op, bool) {
	for i, n := range opNames {
		if n != "" && n == name {
			return Op(i), true
		}
	}
	return None, false
}

// Modifier maps a logical field value to the stored bit pattern and back.
// The zero Modifier is the identity.
type Modifier struct {
	Op  Op
	Arg uint64
}

// Parse parses "shr(k)", "minus(k)", "align(k)" or "log2". An empty string
// yields the identity modifier.
func Parse(s string) (Modifier, error) {
	if strings.TrimSpace(s) == "" {
		return Modifier{}, nil
	}
	expr, err := attr.ParseModifier(s)
	if err != nil {
		return Modifier{}, err
	}

	op, ok := lookupOp(expr.Op)
	if !ok {
		return Modifier{}, invalid(s, "unknown modifier %q", expr.Op)
	}

	m := Modifier{Op: op}
	switch {
	case op.HasArg() && len(expr.Args) != 1:
		return Modifier{}, invalid(s, "%s takes exactly one argument", op)
	case !op.HasArg() && len(expr.Args) != 0:
		return Modifier{}, invalid(s, "%s takes no argument", op)
	case op.HasArg():
		m.Arg = expr.Args[0]
	}

	if err := m.Validate(); err != nil {
		return Modifier{}, err
	}
	return m, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Modifier {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Validate checks the argument domain of the modifier.
func (m Modifier) Validate() error {
	switch m.Op {
	case None, Log2:
		if m.Arg != 0 {
			return invalid(m.String(), "%s takes no argument", m.Op)
		}
	case Shr:
		if m.Arg >= 64 {
			return invalid(m.String(), "shift %d exceeds 63", m.Arg)
		}
	case Minus:
	case Align:
		if !bits.IsPowerOfTwo(m.Arg) {
			return invalid(m.String(), "align argument %d is not a power of two", m.Arg)
		}
	default:
		return invalid(m.String(), "unknown op %d", m.Op)
	}
	return nil
}

// IsZero reports whether m is the identity
func (m Modifier) IsZero() bool {
	return m.Op == None
}

func (m Modifier) String() string {
	switch {
	case m.Op == None:
		return ""
	case m.Op.HasArg():
		return fmt.Sprintf("%s(%d)", m.Op, m.Arg)
	default:
		return m.Op.String()
	}
}

// LogicalWidth returns the number of bits needed to hold every logical value
// whose stored form fits in width bits.
func (m Modifier) LogicalWidth(width int) int {
	if width >= 64 {
		return 64
	}
	switch m.Op {
	case Shr:
		return min(width+int(m.Arg), 64)
	case Minus:
		top := bits.Mask(width)
		if top > ^uint64(0)-m.Arg {
			return 64
		}
		return max(mbits.Len64(top+m.Arg), 1)
	case Log2:
		return int(min(bits.Mask(width), 63)) + 1
	default:
		return width
	}
}

// Pack converts a logical value to its stored form, checking the
// pack-side precondition.
func (m Modifier) Pack(v uint64) (uint64, error) {
	switch m.Op {
	case Shr:
		if v&bits.Mask(int(m.Arg)) != 0 {
			return 0, errors.Contract(errors.PhasePack, nil, v,
				"shr(%d): low %d bits of %d must be zero", m.Arg, m.Arg, v)
		}
		return v >> m.Arg, nil
	case Minus:
		if v < m.Arg {
			return 0, errors.Contract(errors.PhasePack, nil, v,
				"minus(%d): value %d is below %d", m.Arg, v, m.Arg)
		}
		return v - m.Arg, nil
	case Align:
		return bits.AlignPOT(v, m.Arg), nil
	case Log2:
		if !bits.IsPowerOfTwo(v) {
			return 0, errors.Contract(errors.PhasePack, nil, v,
				"log2: value %d is not a power of two", v)
		}
		return bits.Log2(v), nil
	default:
		return v, nil
	}
}

// Unpack converts a stored value back to its logical form, checking the
// unpack-side precondition.
func (m Modifier) Unpack(stored uint64) (uint64, error) {
	switch m.Op {
	case Shr:
		return stored << m.Arg, nil
	case Minus:
		return stored + m.Arg, nil
	case Align:
		if stored&(m.Arg-1) != 0 {
			return 0, errors.Contract(errors.PhaseUnpack, nil, stored,
				"align(%d): stored value %d is not aligned", m.Arg, stored)
		}
		return stored, nil
	case Log2:
		if stored >= 64 {
			return 0, errors.Contract(errors.PhaseUnpack, nil, stored,
				"log2: exponent %d exceeds 63", stored)
		}
		return uint64(1) << stored, nil
	default:
		return stored, nil
	}
}

// MustPack is Pack that panics on a violated precondition. path names the
// field in the panic value.
func (m Modifier) MustPack(v uint64, path string) uint64 {
	out, err := m.Pack(v)
	if err != nil {
		panic(withPath(err, path))
	}
	return out
}

// MustUnpack is Unpack that panics on a violated precondition.
func (m Modifier) MustUnpack(stored uint64, path string) uint64 {
	out, err := m.Unpack(stored)
	if err != nil {
		panic(withPath(err, path))
	}
	return out
}

func withPath(err error, path string) error {
	if e, ok := err.(*errors.Error); ok && path != "" {
		e.Path = strings.Split(path, ".")
	}
	return err
}

func invalid(expr string, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseParse, errors.KindInvalidModifier).
		Value(expr).
		Detail(format, args...).
		Build()
}
