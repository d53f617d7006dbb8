package schema

import (
	"strings"
	"unicode"
)

var nameReplacer = strings.NewReplacer(
	" ", "_",
	"/", "_",
	"-", "_",
	"[", "",
	"]", "",
	"(", "",
	")", "",
	":", "",
	".", "",
	",", "",
	"=", "",
	">", "",
	"#", "",
	"&", "",
	"*", "",
	`"`, "",
	"+", "",
	"'", "",
)

// SafeName turns a human label into an identifier. Separators become
// underscores, punctuation is dropped, and a leading underscore is added
// when the result does not start with a letter.
func SafeName(name string) string {
	s := nameReplacer.Replace(name)
	if s == "" {
		return "_"
	}
	r := []rune(s)[0]
	if !unicode.IsLetter(r) {
		s = "_" + s
	}
	return s
}

// FieldIdent returns the lower-case identifier used for a field label.
func FieldIdent(label string) string {
	return strings.ToLower(SafeName(label))
}

// PrefixedName joins an optional prefix and a name as an upper-case constant
// identifier, e.g. ("Wrap", "Clamp to edge") -> "WRAP_CLAMP_TO_EDGE".
func PrefixedName(prefix, name string) string {
	if prefix != "" {
		name = prefix + "_" + name
	}
	return strings.ToUpper(SafeName(name))
}
