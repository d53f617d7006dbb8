package bits

import (
	"encoding/binary"
	"math"
	mbits "math/bits"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
)

// WordBits is the width of a packed word
const WordBits = 32

// LODMax is the largest encodable level-of-detail code (14.0 in 4.6 fixed point)
const LODMax = 0x380

// Mask returns a mask of the low width bits.
func Mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	if width <= 0 {
		return 0
	}
	return (uint64(1) << uint(width)) - 1
}

// Width returns the number of bits in the inclusive span [start, end].
func Width(start, end int) int {
	return end - start + 1
}

// FitsUint reports whether v is representable in width unsigned bits.
func FitsUint(v uint64, width int) bool {
	return v&^Mask(width) == 0
}

// FitsSint reports whether v is representable in width two's-complement bits.
func FitsSint(v int64, width int) bool {
	if width >= 64 {
		return true
	}
	if width <= 0 {
		return false
	}
	lo := -(int64(1) << uint(width-1))
	hi := (int64(1) << uint(width-1)) - 1
	return v >= lo && v <= hi
}

// SignExtend interprets the low width bits of v as a two's-complement value.
func SignExtend(v uint64, width int) int64 {
	if width <= 0 || width >= 64 {
		return int64(v)
	}
	shift := uint(64 - width)
	return int64(v<<shift) >> shift
}

// PackSint truncates v to width two's-complement bits.
func PackSint(v int64, width int) uint64 {
	return uint64(v) & Mask(width)
}

// FromBool returns 1 for true and 0 for false.
func FromBool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// PackFloat returns the IEEE-754 bits of f.
func PackFloat(f float32) uint64 {
	return uint64(math.Float32bits(f))
}

// PackLOD converts a level of detail to its 4.6 fixed-point code, clamped to [0, LODMax].
func PackLOD(f float32) uint64 {
	if math.IsNaN(float64(f)) {
		return 0
	}
	fixed := float64(f) * 64
	if fixed < 0 {
		fixed = 0
	}
	if fixed > LODMax {
		fixed = LODMax
	}
	return uint64(fixed)
}

// IsPowerOfTwo reports whether v is a nonzero power of two.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

// Log2 returns floor(log2(v)); v must be nonzero.
func Log2(v uint64) uint64 {
	return uint64(63 - mbits.LeadingZeros64(v))
}

// AlignPOT rounds v up to a multiple of the power of two k.
func AlignPOT(v, k uint64) uint64 {
	return (v + k - 1) &^ (k - 1)
}

// Place returns the bits of v, stored in the field span [start, end], that
// fall into word index word. v must already fit the span.
func Place(v uint64, start, end, word int) uint32 {
	lo := word * WordBits
	hi := lo + WordBits - 1
	if end < lo || start > hi {
		return 0
	}
	v &= Mask(Width(start, end))
	if start >= lo {
		return uint32(v << uint(start-lo))
	}
	return uint32(v >> uint(lo-start))
}

// Word reads little-endian word i of buf.
func Word(buf []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(buf[i*4:])
}

// PutWord writes little-endian word i of buf.
func PutWord(buf []byte, i int, w uint32) {
	binary.LittleEndian.PutUint32(buf[i*4:], w)
}

// Uint extracts the zero-extended field [start, end] from buf.
func Uint(buf []byte, start, end int) uint64 {
	var v uint64
	for bit := start; bit <= end; {
		lo := bit % WordBits
		n := min(WordBits-lo, end-bit+1)
		w := uint64(Word(buf, bit/WordBits)>>uint(lo)) & Mask(n)
		v |= w << uint(bit-start)
		bit += n
	}
	return v
}

// Sint extracts the sign-extended field [start, end] from buf.
func Sint(buf []byte, start, end int) int64 {
	return SignExtend(Uint(buf, start, end), Width(start, end))
}

// Float extracts a 32-bit IEEE-754 field.
func Float(buf []byte, start, end int) float32 {
	return math.Float32frombits(uint32(Uint(buf, start, end)))
}

// LOD extracts a 4.6 fixed-point level of detail.
func LOD(buf []byte, start, end int) float32 {
	return float32(Uint(buf, start, end)) / 64.0
}

// MustFitUint panics with an overflow error when v does not fit width bits.
func MustFitUint(v uint64, width int, path string) uint64 {
	if !FitsUint(v, width) {
		panic(errors.Overflow(errors.PhasePack, []string{path}, v, width))
	}
	return v
}

// MustFitSint panics with an overflow error when v does not fit width bits,
// and returns the truncated two's-complement pattern otherwise.
func MustFitSint(v int64, width int, path string) uint64 {
	if !FitsSint(v, width) {
		panic(errors.Overflow(errors.PhasePack, []string{path}, v, width))
	}
	return PackSint(v, width)
}

// CheckReserved reports to sink when word i of buf has any bit of reserved set.
// It returns the offending bits.
func CheckReserved(sink bitpack.Sink, label string, buf []byte, i int, reserved uint32) uint32 {
	w := Word(buf, i)
	bad := w & reserved
	if bad != 0 && sink != nil {
		sink.Report(bitpack.Diagnostic{
			Kind:   bitpack.ReservedBits,
			Struct: label,
			Word:   i,
			Got:    w,
			Mask:   bad,
		})
	}
	return bad
}

// CheckExact reports to sink when a fixed-value field read back differently.
func CheckExact(sink bitpack.Sink, label, field string, start int, got, want uint64) bool {
	if got == want {
		return true
	}
	if sink != nil {
		sink.Report(bitpack.Diagnostic{
			Kind:   bitpack.ExactMismatch,
			Struct: label,
			Field:  field,
			Word:   start / WordBits,
			Actual: got,
			Want:   want,
		})
	}
	return false
}
