// Package transcoder interprets resolved layouts at run time.
//
// A Compiler turns a schema struct into a Program once and caches it. The
// Program packs a dynamic Record into its little-endian word buffer, unpacks
// a buffer back into a Record and prints a Record as indented text:
//
//	┌────────┐  Pack   ┌──────────────────────┐
//	│ Record │ ──────→ │ word 0 │ word 1 │ …  │
//	│        │ ←────── │                      │
//	└────────┘ Unpack  └──────────────────────┘
//	     │
//	     └── Print → "Label: value" lines
//
// # Packing
//
// Pack first converts every flattened field to its stored bit pattern,
// running modifier and width checks, then assembles each word from the
// contributions the layout lists for it. A value outside its domain panics
// with an *errors.Error of kind contract or overflow; errors.Recover turns
// the panic back into an error when the caller prefers one.
//
// # Unpacking
//
// Unpack reads each word once, reports bits outside every declared field to
// a bitpack.Sink, and distributes the remaining bits to their fields. With
// Options.StrictExact, fixed-value fields that read back differently are
// reported too. Diagnostics never stop decoding.
//
// # Record values
//
// Records hold uint64 for unsigned kinds, int64, bool, float32 and nested
// *Record values. Record.Set accepts any Go number and converts strings
// through enumerator names, field aliases and numeric literals.
package transcoder
