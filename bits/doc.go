// Package bits holds the pure primitives shared by the run-time interpreter
// and by generated code: placing a field value into 32-bit words, extracting
// zero- or sign-extended fields, IEEE-754 and 4.6 fixed-point conversion, and
// reserved-bit checks.
//
// Buffers are sequences of little-endian 32-bit words. Field spans are
// inclusive bit ranges [start, end] counted from bit 0 of word 0; a span may
// cross word boundaries:
//
//	word 0                          word 1
//	31                            0 31                            0
//	┌──────────┬────────────────────┬───────────────────┬──────────┐
//	│ field lo │        ...         │        ...        │ field hi │
//	└──────────┴────────────────────┴───────────────────┴──────────┘
//
// Place returns the part of a value belonging to one word; Uint reassembles it.
package bits
