// Package layout resolves a schema struct into its word map.
//
// Resolution flattens struct-typed fields into leaf FieldRefs at absolute bit
// positions, rejects overlapping spans, settles the byte length, and lists
// for each 32-bit word the fields contributing to it:
//
//	field a: bits 0..13      word 0: a[0..13]  b[0..17]
//	field b: bits 14..45     word 1: b[18..31] c[0..3]     reserved 0xFFFC0000
//	field c: bits 46..49
//
// A field crossing a word boundary contributes once per word it touches,
// each time with the shift of its first bit in that word. The bits of a word
// not covered by any contribution form its reserved mask; unpack reports
// them when set.
package layout
