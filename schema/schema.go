package schema

import (
	"github.com/wippyai/bitpack/modifier"
)

// Value is one named integer of an Enum or a field alias.
type Value struct {
	Name  string // original label
	Ident string // sanitized
	Value int64
}

// Enum is a named set of values
type Enum struct {
	Name    string
	Ident   string
	Prefix  string
	Values  []Value
	byValue map[int64]int
	byName  map[string]int
}

// Lookup returns the name of the first value equal to v.
func (e *Enum) Lookup(v int64) (string, bool) {
	if i, ok := e.byValue[v]; ok {
		return e.Values[i].Name, true
	}
	return "", false
}

// Value resolves an enumerator by label or sanitized identifier.
func (e *Enum) Value(name string) (int64, bool) {
	if i, ok := e.byName[name]; ok {
		return e.Values[i].Value, true
	}
	if i, ok := e.byName[SafeName(name)]; ok {
		return e.Values[i].Value, true
	}
	return 0, false
}

func (e *Enum) index() {
	e.byValue = make(map[int64]int, len(e.Values))
	e.byName = make(map[string]int, 2*len(e.Values))
	for i, v := range e.Values {
		if _, dup := e.byValue[v.Value]; !dup {
			e.byValue[v.Value] = i
		}
		e.byName[v.Name] = i
		e.byName[v.Ident] = i
	}
}

// Field is a bit span of a Struct. Start and End are inclusive bit indexes
// relative to the owning struct.
type Field struct {
	Name     string // lower-case sanitized identifier
	Label    string // original label
	Start    int
	End      int
	Type     Type
	Exact    *uint64 // stored bit pattern, nil when the field is writable
	Default  any     // uint64, int64, bool or float32; nil when absent
	Modifier modifier.Modifier
	Prefix   string
	Values   []Value
}

// Width returns the number of bits in the field
func (f *Field) Width() int {
	return f.End - f.Start + 1
}

// ValueWidth returns the number of bits the logical value of f can need.
// Fixed fields keep their stored pattern, so it is their width.
func (f *Field) ValueWidth() int {
	if f.Exact != nil {
		return f.Width()
	}
	return f.Modifier.LogicalWidth(f.Width())
}

// Overlaps reports whether two distinct fields share any bit.
func (f *Field) Overlaps(o *Field) bool {
	return f != o && max(f.Start, o.Start) <= min(f.End, o.End)
}

// Alias resolves a field value alias by label or identifier.
func (f *Field) Alias(name string) (int64, bool) {
	for _, v := range f.Values {
		if v.Name == name || v.Ident == name || v.Ident == SafeName(name) {
			return v.Value, true
		}
	}
	return 0, false
}

// Struct is a fixed-size record
type Struct struct {
	Name            string
	Ident           string
	Size            int // declared byte length, 0 when computed
	Align           int // 0 when unspecified
	Fields          []*Field
	NoDirectPacking bool
	byName          map[string]*Field
}

// Field finds a field by identifier or label
func (s *Struct) Field(name string) (*Field, bool) {
	if f, ok := s.byName[name]; ok {
		return f, true
	}
	f, ok := s.byName[FieldIdent(name)]
	return f, ok
}

// Packable reports whether pack and unpack are provided for the struct
func (s *Struct) Packable() bool {
	return !s.NoDirectPacking
}

// Schema is an immutable set of structs and enums in declaration order.
type Schema struct {
	Name     string
	structs  []*Struct
	enums    []*Enum
	byStruct map[string]*Struct
	byEnum   map[string]*Enum
}

// Struct finds a struct by name
func (s *Schema) Struct(name string) (*Struct, bool) {
	st, ok := s.byStruct[name]
	return st, ok
}

// Enum finds an enum by name
func (s *Schema) Enum(name string) (*Enum, bool) {
	e, ok := s.byEnum[name]
	return e, ok
}

// Structs returns the structs in declaration order
func (s *Schema) Structs() []*Struct {
	return append([]*Struct(nil), s.structs...)
}

// Enums returns the enums in declaration order
func (s *Schema) Enums() []*Enum {
	return append([]*Enum(nil), s.enums...)
}
