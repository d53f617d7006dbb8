package codegen

import (
	"go/token"
	"strings"
	"unicode"
)

// words splits a label into alphanumeric runs.
func words(label string) []string {
	return strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// exported returns the exported Go identifier for a label: "Min LOD" becomes
// MinLOD and "wrap_s" becomes WrapS.
func exported(label string) string {
	var b strings.Builder
	for _, w := range words(label) {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	name := b.String()
	if name == "" {
		return "X"
	}
	if !unicode.IsLetter([]rune(name)[0]) {
		name = "X" + name
	}
	return name
}

// unexported lowers the first rune of exported(label), keeping the name
// clear of Go keywords.
func unexported(label string) string {
	r := []rune(exported(label))
	for i := 0; i < len(r) && unicode.IsUpper(r[i]); i++ {
		if i > 0 && i+1 < len(r) && unicode.IsLower(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	name := string(r)
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// packageName derives a Go package name from a schema name.
func packageName(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(strings.ToLower(w))
	}
	pkg := b.String()
	if pkg == "" || !unicode.IsLetter([]rune(pkg)[0]) || token.IsKeyword(pkg) {
		pkg = "p" + pkg
	}
	return pkg
}

// kebab returns a WIT identifier for a label. Words that start with a digit
// are joined to the previous word since WIT words must start with a letter.
// Keywords are escaped when rendered.
func kebab(label string) string {
	var parts []string
	for _, w := range words(label) {
		w = strings.ToLower(w)
		if unicode.IsDigit([]rune(w)[0]) {
			if len(parts) > 0 {
				parts[len(parts)-1] += w
				continue
			}
			w = "n" + w
		}
		parts = append(parts, w)
	}
	if len(parts) == 0 {
		return "x"
	}
	return strings.Join(parts, "-")
}
