// Package attr parses the small textual values found in schema attributes:
// numeric literals, bit starts written as "N" or "word:bit", and field
// modifiers written as "op" or "op(arg)".
package attr

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/wippyai/bitpack/errors"
)

//nolint:govet // participle grammar tags are not standard struct tags
type modifierGrammar struct {
	Op   string   `parser:"@Ident"`
	Args []string `parser:"( \"(\" @Number ( \",\" @Number )* \")\" )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type startGrammar struct {
	First  string  `parser:"@Number"`
	Second *string `parser:"( \":\" @Number )?"`
}

var attrLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `0[xX][0-9a-fA-F]+|[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var modifierParser = participle.MustBuild[modifierGrammar](
	participle.Lexer(attrLexer),
	participle.Elide("Whitespace"),
)

var startParser = participle.MustBuild[startGrammar](
	participle.Lexer(attrLexer),
	participle.Elide("Whitespace"),
)

// Modifier is a parsed "op" or "op(arg, ...)" expression.
type Modifier struct {
	Op   string
	Args []uint64
}

// ParseModifier parses a modifier expression. Argument literals follow ParseUint.
func ParseModifier(s string) (Modifier, error) {
	g, err := modifierParser.ParseString("", s)
	if err != nil {
		return Modifier{}, errors.New(errors.PhaseParse, errors.KindInvalidModifier).
			Value(s).
			Cause(err).
			Detail("malformed modifier %q", s).
			Build()
	}
	m := Modifier{Op: g.Op}
	for _, a := range g.Args {
		v, err := ParseUint(a)
		if err != nil {
			return Modifier{}, err
		}
		m.Args = append(m.Args, v)
	}
	return m, nil
}

// ParseStart parses a bit start. "word:bit" means word*32+bit.
func ParseStart(s string) (int, error) {
	g, err := startParser.ParseString("", s)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidLiteral).
			Value(s).
			Cause(err).
			Detail("malformed start %q", s).
			Build()
	}
	first, err := ParseUint(g.First)
	if err != nil {
		return 0, err
	}
	if g.Second == nil {
		return int(first), nil
	}
	bit, err := ParseUint(*g.Second)
	if err != nil {
		return 0, err
	}
	if bit > 31 {
		return 0, errors.InvalidLiteral(s, "bit index must be below 32")
	}
	return int(first*32 + bit), nil
}

// ParseUint parses an unsigned literal. A "0x" prefix selects hexadecimal;
// any other literal is decimal, and a leading zero followed by more digits is
// rejected so that octal intent is never misread.
func ParseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.InvalidLiteral(s, "empty literal")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, errors.InvalidLiteral(s, "invalid hexadecimal literal")
		}
		return v, nil
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, errors.InvalidLiteral(s, "octal literals are not allowed")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.InvalidLiteral(s, "invalid decimal literal")
	}
	return v, nil
}

// ParseInt parses a literal with an optional leading minus sign.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	v, err := ParseUint(s)
	if err != nil {
		return 0, err
	}
	if neg {
		if v > 1<<63 {
			return 0, errors.InvalidLiteral("-"+s, "out of range")
		}
		return -int64(v), nil
	}
	if v > 1<<63-1 {
		return 0, errors.InvalidLiteral(s, "out of range")
	}
	return int64(v), nil
}
