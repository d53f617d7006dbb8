package transcoder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/internal/attr"
	"github.com/wippyai/bitpack/schema"
	"github.com/wippyai/bitpack/transcoder/internal/coerce"
)

// Record is a dynamic value of a schema struct. Field values use one Go type
// per semantic kind:
//
//	uint, hex, address, enum, Pixel Format, uint/float   uint64
//	int                                                  int64
//	bool                                                 bool
//	float, lod                                           float32
//	struct                                               *Record
//
// A Record is not safe for concurrent mutation.
type Record struct {
	schema *schema.Schema
	st     *schema.Struct
	values []any
}

func newRecord(s *schema.Schema, st *schema.Struct, defaults bool) *Record {
	r := &Record{schema: s, st: st, values: make([]any, len(st.Fields))}
	for i, f := range st.Fields {
		switch {
		case f.Type.Kind == schema.KindStruct:
			nested, _ := s.Struct(f.Type.Ref)
			r.values[i] = newRecord(s, nested, defaults)
		case f.Exact != nil:
			r.values[i] = logical(f, *f.Exact)
		case defaults && f.Default != nil:
			r.values[i] = f.Default
		default:
			r.values[i] = zeroValue(f.Type.Kind)
		}
	}
	return r
}

func zeroValue(k schema.Kind) any {
	switch k {
	case schema.KindInt:
		return int64(0)
	case schema.KindBool:
		return false
	case schema.KindFloat, schema.KindLOD:
		return float32(0)
	default:
		return uint64(0)
	}
}

// Struct returns the struct the record belongs to
func (r *Record) Struct() *schema.Struct {
	return r.st
}

func (r *Record) locate(path string) (*Record, int, error) {
	parts := strings.Split(path, ".")
	cur := r
	for i, part := range parts {
		f, ok := cur.st.Field(part)
		if !ok {
			return nil, 0, errors.FieldUnknown(errors.PhasePack, r.st.Name, path)
		}
		idx := cur.index(f)
		if i == len(parts)-1 {
			return cur, idx, nil
		}
		next, ok := cur.values[idx].(*Record)
		if !ok {
			return nil, 0, errors.New(errors.PhasePack, errors.KindTypeMismatch).
				Struct(r.st.Name).
				Path(parts[:i+1]...).
				Detail("%s is not a struct field", part).
				Build()
		}
		cur = next
	}
	return nil, 0, errors.FieldUnknown(errors.PhasePack, r.st.Name, path)
}

func (r *Record) index(f *schema.Field) int {
	for i, sf := range r.st.Fields {
		if sf == f {
			return i
		}
	}
	return -1
}

// Get returns the value at a dotted field path
func (r *Record) Get(path string) (any, bool) {
	rec, idx, err := r.locate(path)
	if err != nil {
		return nil, false
	}
	return rec.values[idx], true
}

// Uint returns an unsigned field value, or 0
func (r *Record) Uint(path string) uint64 {
	v, _ := r.Get(path)
	u, _ := v.(uint64)
	return u
}

// Int returns a signed field value, or 0
func (r *Record) Int(path string) int64 {
	v, _ := r.Get(path)
	i, _ := v.(int64)
	return i
}

// Bool returns a bool field value, or false
func (r *Record) Bool(path string) bool {
	v, _ := r.Get(path)
	b, _ := v.(bool)
	return b
}

// Float returns a float or lod field value, or 0
func (r *Record) Float(path string) float32 {
	v, _ := r.Get(path)
	f, _ := v.(float32)
	return f
}

// Record returns a nested struct value, or nil
func (r *Record) Record(path string) *Record {
	v, _ := r.Get(path)
	rec, _ := v.(*Record)
	return rec
}

// Set stores v at a dotted field path after converting it to the field's
// value type. Strings are accepted as literals, enumerator names, field
// aliases, "true"/"false" and float text. Fixed-value fields are read-only.
func (r *Record) Set(path string, v any) error {
	rec, idx, err := r.locate(path)
	if err != nil {
		return err
	}
	f := rec.st.Fields[idx]
	if f.Exact != nil {
		return errors.New(errors.PhasePack, errors.KindReadOnly).
			Struct(r.st.Name).
			Path(strings.Split(path, ".")...).
			Detail("field has the fixed value %#x", *f.Exact).
			Build()
	}

	if f.Type.Kind == schema.KindStruct {
		return rec.setStruct(idx, path, v)
	}

	val, err := convert(r.schema, f, v)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Struct = r.st.Name
			e.Path = strings.Split(path, ".")
		}
		return err
	}
	rec.values[idx] = val
	return nil
}

func (r *Record) setStruct(idx int, path string, v any) error {
	cur := r.values[idx].(*Record)
	switch src := v.(type) {
	case *Record:
		if src.st != cur.st {
			return errors.TypeMismatch(errors.PhasePack, strings.Split(path, "."), v, cur.st.Name)
		}
		r.values[idx] = src.Clone()
		return nil
	case map[string]any:
		next := cur.Clone()
		for k, fv := range src {
			if err := next.Set(k, fv); err != nil {
				return err
			}
		}
		r.values[idx] = next
		return nil
	default:
		return errors.TypeMismatch(errors.PhasePack, strings.Split(path, "."), v, cur.st.Name)
	}
}

// SetAll sets every entry of values, stopping at the first error.
func (r *Record) SetAll(values map[string]any) error {
	for k, v := range values {
		if err := r.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	out := &Record{schema: r.schema, st: r.st, values: make([]any, len(r.values))}
	for i, v := range r.values {
		if nested, ok := v.(*Record); ok {
			v = nested.Clone()
		}
		out.values[i] = v
	}
	return out
}

// Map returns the values keyed by field identifier, nested structs as maps.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for i, f := range r.st.Fields {
		v := r.values[i]
		if nested, ok := v.(*Record); ok {
			v = nested.Map()
		}
		out[f.Name] = v
	}
	return out
}

// Equal reports whether two records of the same struct hold equal values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil || r.st != o.st {
		return r == o
	}
	for i, v := range r.values {
		if a, ok := v.(*Record); ok {
			b, _ := o.values[i].(*Record)
			if !a.Equal(b) {
				return false
			}
			continue
		}
		if v != o.values[i] {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.st.Name, r.Map())
}

// convert turns v into the value type of f.
func convert(s *schema.Schema, f *schema.Field, v any) (any, error) {
	kind := f.Type.Kind
	if str, ok := v.(string); ok {
		return convertString(s, f, str)
	}
	switch kind {
	case schema.KindInt:
		if i, ok := coerce.Int64(v); ok {
			return i, nil
		}
	case schema.KindBool:
		if b, ok := coerce.Bool(v); ok {
			return b, nil
		}
	case schema.KindFloat, schema.KindLOD:
		if x, ok := coerce.Float32(v); ok {
			return x, nil
		}
	default:
		if u, ok := coerce.Uint64(v); ok {
			return u, nil
		}
	}
	return nil, errors.TypeMismatch(errors.PhasePack, nil, v, f.Type.String())
}

func convertString(sc *schema.Schema, f *schema.Field, s string) (any, error) {
	if a, ok := f.Alias(s); ok {
		if f.Type.Kind == schema.KindInt {
			return a, nil
		}
		return uint64(a), nil
	}
	if f.Type.Kind == schema.KindEnum {
		if e, ok := sc.Enum(f.Type.Ref); ok {
			if v, ok := e.Value(s); ok {
				return uint64(v), nil
			}
		}
	}
	switch f.Type.Kind {
	case schema.KindInt:
		return attr.ParseInt(s)
	case schema.KindBool:
		switch s {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, errors.InvalidLiteral(s, "expected true or false")
	case schema.KindFloat, schema.KindLOD:
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errors.InvalidLiteral(s, "invalid float literal")
		}
		return float32(x), nil
	default:
		return attr.ParseUint(s)
	}
}

// logical converts a stored bit pattern to the record value of f.
func logical(f *schema.Field, stored uint64) any {
	switch f.Type.Kind {
	case schema.KindInt:
		return bits.SignExtend(stored, f.Width())
	case schema.KindBool:
		return stored != 0
	case schema.KindFloat:
		return math.Float32frombits(uint32(stored))
	case schema.KindLOD:
		return float32(stored) / 64.0
	default:
		return stored
	}
}
