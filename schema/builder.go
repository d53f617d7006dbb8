package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/internal/attr"
	"github.com/wippyai/bitpack/modifier"
)

// ValueDecl declares an enumerator or a field alias
type ValueDecl struct {
	Name  string
	Value string
}

// EnumDecl declares an enum
type EnumDecl struct {
	Name   string
	Prefix string
	Values []ValueDecl
}

// FieldDecl declares a field. Numeric attributes keep their source text so
// that every front end goes through the same literal rules.
type FieldDecl struct {
	Name     string
	Start    string // "N" or "word:bit"
	Size     string
	Type     string
	Exact    string
	Default  string
	Modifier string
	Prefix   string
	Values   []ValueDecl
}

// StructDecl declares a struct
type StructDecl struct {
	Name            string
	Size            string
	Align           string
	NoDirectPacking bool
	Fields          []FieldDecl
}

// Builder accumulates declarations and produces an immutable Schema.
type Builder struct {
	name    string
	enums   []EnumDecl
	structs []StructDecl
}

// NewBuilder creates a builder for a schema called name
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddEnum records an enum declaration
func (b *Builder) AddEnum(d EnumDecl) *Builder {
	b.enums = append(b.enums, d)
	return b
}

// AddStruct records a struct declaration
func (b *Builder) AddStruct(d StructDecl) *Builder {
	b.structs = append(b.structs, d)
	return b
}

// Build validates every declaration and returns the schema. All problems are
// reported together as an *errors.List.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		Name:     b.name,
		byStruct: make(map[string]*Struct),
		byEnum:   make(map[string]*Enum),
	}
	var errs errors.List

	// Type names are shared by enums and structs.
	types := make(map[string]bool)
	claim := func(name string) bool {
		if types[name] || types[SafeName(name)] {
			errs.Add(errors.Duplicate(errors.PhaseSchema, "type", name))
			return false
		}
		types[name] = true
		types[SafeName(name)] = true
		return true
	}

	for _, d := range b.enums {
		if strings.TrimSpace(d.Name) == "" {
			errs.Add(errors.InvalidInput(errors.PhaseSchema, "enum without a name"))
			continue
		}
		if !claim(d.Name) {
			continue
		}
		e, err := buildEnum(d)
		errs.Add(err)
		s.enums = append(s.enums, e)
		s.byEnum[e.Name] = e
		s.byEnum[e.Ident] = e
	}

	// Register struct names before resolving fields so that references do
	// not depend on declaration order.
	declared := make([]StructDecl, 0, len(b.structs))
	for _, d := range b.structs {
		if strings.TrimSpace(d.Name) == "" {
			errs.Add(errors.InvalidInput(errors.PhaseSchema, "struct without a name"))
			continue
		}
		if !claim(d.Name) {
			continue
		}
		st := &Struct{
			Name:            d.Name,
			Ident:           SafeName(d.Name),
			NoDirectPacking: d.NoDirectPacking,
			byName:          make(map[string]*Field),
		}
		s.structs = append(s.structs, st)
		s.byStruct[st.Name] = st
		s.byStruct[st.Ident] = st
		declared = append(declared, d)
	}

	for i, d := range declared {
		errs.Add(s.buildStruct(s.structs[i], d))
	}

	errs.Add(s.checkCycles())

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildEnum(d EnumDecl) (*Enum, error) {
	e := &Enum{
		Name:   d.Name,
		Ident:  SafeName(d.Name),
		Prefix: d.Prefix,
	}
	var errs errors.List
	seen := make(map[string]bool)
	for _, vd := range d.Values {
		ident := SafeName(vd.Name)
		if seen[ident] {
			errs.Add(errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Path(d.Name, vd.Name).
				Detail("duplicate enum value %q", vd.Name).
				Build())
			continue
		}
		seen[ident] = true
		v, err := attr.ParseInt(vd.Value)
		if err != nil {
			errs.Add(inEnum(err, d.Name, vd.Name))
			continue
		}
		e.Values = append(e.Values, Value{Name: vd.Name, Ident: ident, Value: v})
	}
	e.index()
	return e, errs.Err()
}

func (s *Schema) buildStruct(st *Struct, d StructDecl) error {
	var errs errors.List

	if d.Size != "" {
		size, err := attr.ParseUint(d.Size)
		switch {
		case err != nil:
			errs.Add(inStruct(err, st.Name))
		case size == 0 || size%4 != 0:
			errs.Add(errors.New(errors.PhaseSchema, errors.KindInvalidLength).
				Struct(st.Name).
				Value(size).
				Detail("size %d is not a positive multiple of 4 bytes", size).
				Build())
		default:
			st.Size = int(size)
		}
	}

	if d.Align != "" {
		align, err := attr.ParseUint(d.Align)
		switch {
		case err != nil:
			errs.Add(inStruct(err, st.Name))
		case !bits.IsPowerOfTwo(align):
			errs.Add(errors.New(errors.PhaseSchema, errors.KindInvalidData).
				Struct(st.Name).
				Value(align).
				Detail("align %d is not a power of two", align).
				Build())
		default:
			st.Align = int(align)
		}
	}

	for _, fd := range d.Fields {
		f, err := s.buildField(st, fd)
		if err != nil {
			errs.Add(err)
			continue
		}
		if _, dup := st.byName[f.Name]; dup {
			errs.Add(errors.New(errors.PhaseSchema, errors.KindDuplicate).
				Struct(st.Name).
				Path(f.Name).
				Detail("duplicate field %q", fd.Name).
				Build())
			continue
		}
		st.Fields = append(st.Fields, f)
		st.byName[f.Name] = f
		st.byName[f.Label] = f
	}

	return errs.Err()
}

func (s *Schema) buildField(st *Struct, d FieldDecl) (*Field, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Struct(st.Name).
			Detail("field without a name").
			Build()
	}

	f := &Field{
		Name:  FieldIdent(d.Name),
		Label: d.Name,
	}
	if d.Prefix != "" {
		f.Prefix = strings.ToUpper(SafeName(d.Prefix))
	}
	fail := func(kind errors.Kind, format string, args ...any) error {
		return errors.New(errors.PhaseSchema, kind).
			Struct(st.Name).
			Path(f.Name).
			Type(d.Type).
			Detail(format, args...).
			Build()
	}

	start, err := attr.ParseStart(d.Start)
	if err != nil {
		return nil, inField(err, st.Name, f.Name)
	}
	size, err := attr.ParseUint(d.Size)
	if err != nil {
		return nil, inField(err, st.Name, f.Name)
	}
	if size == 0 {
		return nil, fail(errors.KindInvalidWidth, "size must be positive")
	}
	f.Start = start
	f.End = start + int(size) - 1

	typ, err := s.resolveType(d.Type)
	if err != nil {
		return nil, inField(err, st.Name, f.Name)
	}
	f.Type = typ

	if msg := checkWidth(f); msg != "" {
		return nil, fail(errors.KindInvalidWidth, "%s", msg)
	}

	for _, vd := range d.Values {
		v, err := attr.ParseInt(vd.Value)
		if err != nil {
			return nil, inField(err, st.Name, f.Name)
		}
		f.Values = append(f.Values, Value{Name: vd.Name, Ident: SafeName(vd.Name), Value: v})
	}

	if d.Modifier != "" {
		if !typ.Kind.Modifiable() {
			return nil, fail(errors.KindInvalidModifier, "modifier %q is not allowed on %s fields", d.Modifier, typ)
		}
		m, err := modifier.Parse(d.Modifier)
		if err != nil {
			return nil, inField(err, st.Name, f.Name)
		}
		f.Modifier = m
	}

	if d.Exact != "" {
		if typ.Kind == KindStruct {
			return nil, fail(errors.KindInvalidData, "struct fields cannot have an exact value")
		}
		if !f.Modifier.IsZero() {
			return nil, fail(errors.KindInvalidModifier, "exact fields cannot carry a modifier")
		}
		exact, err := s.storedLiteral(f, d.Exact)
		if err != nil {
			return nil, inField(err, st.Name, f.Name)
		}
		f.Exact = &exact
	}

	if d.Default != "" {
		if typ.Kind == KindStruct {
			return nil, fail(errors.KindInvalidData, "struct fields take their defaults from %s", typ.Ref)
		}
		def, err := s.defaultValue(f, d.Default)
		if err != nil {
			return nil, inField(err, st.Name, f.Name)
		}
		f.Default = def
	}

	return f, nil
}

func (s *Schema) resolveType(name string) (Type, error) {
	if k, ok := builtinKind(name); ok {
		return Type{Kind: k}, nil
	}
	if e, ok := s.byEnum[name]; ok {
		return Type{Kind: KindEnum, Ref: e.Name}, nil
	}
	if st, ok := s.byStruct[name]; ok {
		return Type{Kind: KindStruct, Ref: st.Name}, nil
	}
	return Type{}, errors.New(errors.PhaseSchema, errors.KindUnknownType).
		Type(name).
		Detail("unknown type %q", name).
		Build()
}

// checkWidth returns a description of the width problem, or "".
func checkWidth(f *Field) string {
	w := f.Width()
	switch f.Type.Kind {
	case KindBool:
		if w != 1 {
			return "bool fields must be 1 bit wide, got " + strconv.Itoa(w)
		}
	case KindFloat:
		if w != 32 || f.Start%bits.WordBits != 0 {
			return "float fields must span exactly one word-aligned 32-bit word"
		}
	case KindLOD:
		if w != 10 {
			return "lod fields must be 10 bits wide, got " + strconv.Itoa(w)
		}
	default:
		if limit := f.Type.Kind.MaxWidth(); limit > 0 && w > limit {
			return f.Type.String() + " fields are at most " + strconv.Itoa(limit) + " bits, got " + strconv.Itoa(w)
		}
	}
	return ""
}

// storedLiteral parses an exact value into the bit pattern stored in the field.
func (s *Schema) storedLiteral(f *Field, lit string) (uint64, error) {
	w := f.Width()
	if f.Type.Kind == KindInt {
		v, err := attr.ParseInt(lit)
		if err != nil {
			return 0, err
		}
		if !bits.FitsSint(v, w) {
			return 0, errors.Overflow(errors.PhaseSchema, nil, v, w)
		}
		return bits.PackSint(v, w), nil
	}
	v, err := s.unsignedLiteral(f, lit)
	if err != nil {
		return 0, err
	}
	if !bits.FitsUint(v, w) {
		return 0, errors.Overflow(errors.PhaseSchema, nil, v, w)
	}
	return v, nil
}

// unsignedLiteral accepts a number, a field alias, or an enumerator of the
// field's enum.
func (s *Schema) unsignedLiteral(f *Field, lit string) (uint64, error) {
	if v, ok := f.Alias(lit); ok {
		return uint64(v), nil
	}
	if f.Type.Kind == KindEnum {
		if e, ok := s.byEnum[f.Type.Ref]; ok {
			if v, ok := e.Value(lit); ok {
				return uint64(v), nil
			}
		}
	}
	if f.Type.Kind == KindBool {
		switch lit {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
	}
	v, err := attr.ParseUint(lit)
	if err != nil {
		if f.Type.Kind == KindEnum {
			return 0, errors.New(errors.PhaseSchema, errors.KindNotFound).
				Type(f.Type.Ref).
				Value(lit).
				Detail("%q is not a value of %s", lit, f.Type.Ref).
				Cause(err).
				Build()
		}
		return 0, err
	}
	return v, nil
}

// defaultValue resolves a default literal to the logical value carried by
// records: uint64, int64, bool or float32.
func (s *Schema) defaultValue(f *Field, lit string) (any, error) {
	w := f.Width()
	switch f.Type.Kind {
	case KindFloat, KindLOD:
		v, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			return nil, errors.InvalidLiteral(lit, "invalid float literal")
		}
		return float32(v), nil
	case KindBool:
		v, err := s.unsignedLiteral(f, lit)
		if err != nil {
			return nil, err
		}
		if v > 1 {
			return nil, errors.InvalidLiteral(lit, "bool default must be true, false, 0 or 1")
		}
		return v == 1, nil
	case KindInt:
		var v int64
		if a, ok := f.Alias(lit); ok {
			v = a
		} else {
			parsed, err := attr.ParseInt(lit)
			if err != nil {
				return nil, err
			}
			v = parsed
		}
		if !bits.FitsSint(v, w) {
			return nil, errors.Overflow(errors.PhaseSchema, nil, v, w)
		}
		return v, nil
	default:
		v, err := s.unsignedLiteral(f, lit)
		if err != nil {
			return nil, err
		}
		stored, err := f.Modifier.Pack(v)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseSchema, errors.KindInvalidData, err, "default violates modifier "+f.Modifier.String())
		}
		if !bits.FitsUint(stored, w) {
			return nil, errors.Overflow(errors.PhaseSchema, nil, v, w)
		}
		return v, nil
	}
}

// checkCycles rejects struct-typed fields that reference their own struct,
// directly or transitively.
func (s *Schema) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*Struct]int)
	var errs errors.List

	var visit func(st *Struct, chain []string) bool
	visit = func(st *Struct, chain []string) bool {
		switch state[st] {
		case visiting:
			errs.Add(errors.New(errors.PhaseSchema, errors.KindCycle).
				Struct(st.Name).
				Detail("struct cycle %s", strings.Join(append(chain, st.Name), " -> ")).
				Build())
			return false
		case done:
			return true
		}
		state[st] = visiting
		ok := true
		for _, f := range st.Fields {
			if f.Type.Kind != KindStruct {
				continue
			}
			if ref, found := s.byStruct[f.Type.Ref]; found {
				if !visit(ref, append(chain, st.Name)) {
					ok = false
					break
				}
			}
		}
		state[st] = done
		return ok
	}

	for _, st := range s.structs {
		if state[st] == unvisited {
			visit(st, nil)
		}
	}
	return errs.Err()
}

func inStruct(err error, structName string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Struct = structName
	}
	return err
}

func inField(err error, structName, field string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Struct = structName
		e.Path = append([]string{field}, e.Path...)
	}
	return err
}

func inEnum(err error, enumName, value string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = []string{enumName, value}
	}
	return err
}
