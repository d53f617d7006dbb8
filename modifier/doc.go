// Package modifier implements the reversible transforms a field may apply
// between its logical value and the bits stored in the buffer.
//
//	modifier   pack                  checked on pack          unpack
//	shr(k)     v >> k                low k bits are zero      s << k
//	minus(k)   v - k                 v >= k                   s + k
//	align(k)   round up to k         -                        s (must be aligned)
//	log2       log2(v)               v is a power of two      1 << s
//
// Pack and Unpack return contract errors; MustPack and MustUnpack panic with
// them, which is how packing aborts on a value outside the modifier's domain.
package modifier
