// Package bitpack compiles schemas of bit-packed hardware records into
// packers, unpackers and printers.
//
// A schema declares enums and fixed-size structs. Every struct field is an
// inclusive bit span over little-endian 32-bit words, with a semantic type
// (uint, int, bool, float, hex, address, lod, uint/float, Pixel Format, an
// enum or a nested struct), an optional modifier applied before packing and
// an optional fixed value.
//
// # Architecture Overview
//
//	bitpack/             Diagnostics and sinks shared by unpackers
//	├── loader/          XML and YAML schema front ends
//	├── schema/          Validated schema model, builder and fingerprint
//	├── modifier/        shr, minus, align and log2 value transforms
//	├── layout/          Flattened fields, word contributions, reserved masks
//	├── bits/            Word access and field extraction primitives
//	├── transcoder/      Run-time pack, unpack and print of dynamic records
//	├── codegen/         Go and WIT source generation
//	├── errors/          Structured error types
//	└── cmd/bitpack/     Command-line interface
//
// # Quick Start
//
// Load a schema and pack a record:
//
//	s, err := loader.LoadFile("gpu.xml", loader.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := transcoder.NewCompiler(s, transcoder.Options{}).Compile("Sampler")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rec := p.New()
//	_ = rec.Set("Wrap S", "Clamp to edge")
//	buf, err := p.Pack(rec)
//
// Unpacking reports bits set outside every declared field to a Sink and
// keeps decoding:
//
//	var c bitpack.Collector
//	rec, err = p.Unpack(buf, &c)
//	for _, d := range c.Diagnostics() {
//	    fmt.Println(d)
//	}
//
// # Contract Violations
//
// Packing a value a modifier cannot represent (shr with low bits set, minus
// below its bias, log2 of a non power of two) or a value too wide for its
// field is a caller bug and panics with *errors.Error. Use errors.Recover
// where an error return is preferred.
//
// # Thread Safety
//
// Schemas, layouts and compiled programs are immutable and safe for
// concurrent use. Records are not.
package bitpack
