// Package errors provides structured error types for the bitpack module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: struct name, field path, semantic type and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSchema, errors.KindInvalidWidth).
//		Struct("Texture").
//		Path("width").
//		Type("bool").
//		Detail("bool fields must be 1 bit wide, got %d", 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhasePack, path, 300, 8)
//	err := errors.FieldUnknown(errors.PhasePack, "Texture", "depth")
//
// Schema construction gathers every problem into a List. Contract violations
// found while packing or unpacking are raised with panic; Recover turns them
// back into errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
