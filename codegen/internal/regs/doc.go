// Package regs is generated from regs.yaml and checked in so the generated
// Pack, Unpack and Print methods compile and run under go test. Regenerate
// it after changing the schema or the generator.
package regs

//go:generate go run ../../../cmd/bitpack gen regs.yaml -o regs.go
