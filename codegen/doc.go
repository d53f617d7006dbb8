// Package codegen turns a schema into source for other toolchains.
//
// Generate emits a Go file declaring one type per enum and one struct per
// schema struct. Packable structs get Pack, Unpack and UnpackStrict methods
// that write and read the word buffer directly, calling into the bits and
// modifier packages for range checks and value transforms:
//
//	func (v *Sampler) Pack(cl []byte) {
//		_ = cl[SamplerLength-1]
//		wrapSBits := bits.MustFitUint(uint64(v.WrapS), 3, "wrap_s")
//		...
//		bits.PutWord(cl, 0, bits.Place(wrapSBits, 0, 2, 0)|...)
//	}
//
// Every struct also gets a New constructor filled with defaults and a Print
// method that matches the transcoder's text output line for line.
//
// The first lines of a generated file record the schema fingerprint, so
// UpToDate can tell whether a checked-in file needs regenerating.
//
// WIT renders the same schema as a WebAssembly Interface Types package,
// with enums as WIT enums and structs as records of their writable fields.
package codegen
