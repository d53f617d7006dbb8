package schema

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a BLAKE3 digest of the schema's canonical form. Two
// schemas with the same fingerprint produce the same layouts and code.
func (s *Schema) Fingerprint() string {
	sum := blake3.Sum256([]byte(s.Canonical()))
	return hex.EncodeToString(sum[:])
}

// Canonical renders the schema as stable text, one declaration per line.
func (s *Schema) Canonical() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %q\n", s.Name)
	for _, e := range s.enums {
		fmt.Fprintf(&b, "enum %q prefix=%q\n", e.Name, e.Prefix)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "  value %q = %d\n", v.Name, v.Value)
		}
	}
	for _, st := range s.structs {
		fmt.Fprintf(&b, "struct %q size=%d align=%d packed=%t\n", st.Name, st.Size, st.Align, st.Packable())
		for _, f := range st.Fields {
			fmt.Fprintf(&b, "  field %q %d..%d %s", f.Label, f.Start, f.End, f.Type)
			if f.Exact != nil {
				fmt.Fprintf(&b, " exact=%d", *f.Exact)
			}
			if f.Default != nil {
				fmt.Fprintf(&b, " default=%v", f.Default)
			}
			if !f.Modifier.IsZero() {
				fmt.Fprintf(&b, " modifier=%s", f.Modifier)
			}
			if f.Prefix != "" {
				fmt.Fprintf(&b, " prefix=%s", f.Prefix)
			}
			b.WriteByte('\n')
			for _, v := range f.Values {
				fmt.Fprintf(&b, "    alias %q = %d\n", v.Name, v.Value)
			}
		}
	}
	return b.String()
}
