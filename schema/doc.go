// Package schema is the data model of a bit-packed record description.
//
// A Schema holds Structs and Enums. A Struct is an ordered list of Fields,
// each a span of bits [Start, End] with a semantic type:
//
//	uint, hex, address     unsigned integers, up to 64 bits
//	int                    two's-complement, up to 32 bits
//	bool                   exactly one bit
//	float                  one word-aligned IEEE-754 word
//	lod                    10-bit 4.6 fixed-point level of detail
//	uint/float             32 bits printed both ways
//	Pixel Format           channels and texture type packed together
//	<enum name>            value of a declared Enum
//	<struct name>          nested Struct, flattened at its offset
//
// Schemas are assembled from declarations with a Builder; Build validates
// names, literals, widths, modifiers, defaults and struct references and
// returns an immutable Schema. Word layout is resolved separately by the
// layout package.
//
//	b := schema.NewBuilder("gpu")
//	b.AddEnum(schema.EnumDecl{Name: "Wrap", Values: []schema.ValueDecl{
//		{Name: "Repeat", Value: "0"},
//		{Name: "Clamp to edge", Value: "1"},
//	}})
//	b.AddStruct(schema.StructDecl{Name: "Sampler", Size: "8", Fields: []schema.FieldDecl{
//		{Name: "Wrap S", Start: "0", Size: "3", Type: "Wrap"},
//		{Name: "Min LOD", Start: "1:0", Size: "10", Type: "lod"},
//	}})
//	s, err := b.Build()
package schema
