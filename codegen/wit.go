package codegen

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// Types builds the WIT type definitions of a schema: one enum per schema
// enum and one record per struct. Fixed-value fields are left out of records.
func Types(s *schema.Schema) ([]*wit.TypeDef, error) {
	var errs errors.List
	defs := make([]*wit.TypeDef, 0, len(s.Enums())+len(s.Structs()))
	byName := make(map[string]*wit.TypeDef)
	ids := make(map[string]string)

	declare := func(label string) *wit.TypeDef {
		id := kebab(label)
		if prev, ok := ids[id]; ok {
			errs.Add(errors.New(errors.PhaseGenerate, errors.KindDuplicate).
				Value(id).
				Detail("WIT name of %s collides with %s", label, prev).
				Build())
		}
		ids[id] = label
		td := &wit.TypeDef{Name: &id}
		byName[label] = td
		defs = append(defs, td)
		return td
	}

	for _, e := range s.Enums() {
		td := declare(e.Name)
		if len(e.Values) == 0 {
			errs.Add(errors.New(errors.PhaseGenerate, errors.KindUnsupported).
				Path(e.Name).
				Detail("WIT enums need at least one case").
				Build())
		}
		seen := make(map[string]bool)
		cases := make([]wit.EnumCase, 0, len(e.Values))
		for _, v := range e.Values {
			name := kebab(v.Name)
			if seen[name] {
				errs.Add(errors.Duplicate(errors.PhaseGenerate, "enum case", e.Name+"."+name))
				continue
			}
			seen[name] = true
			cases = append(cases, wit.EnumCase{Name: name})
		}
		td.Kind = &wit.Enum{Cases: cases}
	}
	for _, st := range s.Structs() {
		declare(st.Name)
	}

	for _, st := range s.Structs() {
		td := byName[st.Name]
		seen := make(map[string]bool)
		var fields []wit.Field
		for _, f := range st.Fields {
			if f.Exact != nil {
				continue
			}
			name := kebab(f.Label)
			if seen[name] {
				errs.Add(errors.Duplicate(errors.PhaseGenerate, "record field", st.Name+"."+name))
				continue
			}
			seen[name] = true
			fields = append(fields, wit.Field{Name: name, Type: witType(f, byName)})
		}
		if len(fields) == 0 {
			errs.Add(errors.New(errors.PhaseGenerate, errors.KindUnsupported).
				Struct(st.Name).
				Detail("WIT records need at least one writable field").
				Build())
		}
		td.Kind = &wit.Record{Fields: fields}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

func witType(f *schema.Field, defs map[string]*wit.TypeDef) wit.Type {
	switch f.Type.Kind {
	case schema.KindEnum, schema.KindStruct:
		return defs[f.Type.Ref]
	case schema.KindInt:
		return wit.S32{}
	case schema.KindBool:
		return wit.Bool{}
	case schema.KindFloat, schema.KindLOD:
		return wit.F32{}
	case schema.KindAddress:
		return wit.U64{}
	case schema.KindUint, schema.KindHex:
		if f.ValueWidth() > 32 {
			return wit.U64{}
		}
		return wit.U32{}
	default:
		return wit.U32{}
	}
}

// coreTypes names the core wasm value types a flattened value lowers to.
func coreTypes(flat []wit.Type) string {
	names := make([]string, len(flat))
	for i, t := range flat {
		switch t.(type) {
		case wit.U64, wit.S64:
			names[i] = "i64"
		case wit.F32:
			names[i] = "f32"
		case wit.F64:
			names[i] = "f64"
		default:
			names[i] = "i32"
		}
	}
	return strings.Join(names, " ")
}

// WIT renders the schema as a WIT package with a single "types" interface.
// Each record carries its flattened core signature as a doc comment.
func WIT(s *schema.Schema, opts Options) ([]byte, error) {
	opts = opts.withDefaults(s)
	id, err := wit.ParseIdent(opts.WITPackage)
	if err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Value(opts.WITPackage).
			Cause(err).
			Detail("invalid WIT package name").
			Build()
	}
	defs, err := Types(s)
	if err != nil {
		return nil, err
	}

	pkg := &wit.Package{Name: id}
	ifaceName := "types"
	iface := &wit.Interface{Name: &ifaceName, Package: pkg}
	for _, td := range defs {
		td.Owner = iface
		if _, ok := td.Kind.(*wit.Record); ok {
			td.Docs.Contents = "flat: " + coreTypes(td.Flat())
		}
		iface.TypeDefs.Set(*td.Name, td)
	}
	pkg.Interfaces.Set(ifaceName, iface)

	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by bitpack from schema %q.\n", s.Name)
	fmt.Fprintf(&b, "%s%s\n\n", fingerprintPrefix, s.Fingerprint())
	b.WriteString(pkg.WIT(nil, ""))

	Logger().Debug("generated wit",
		zap.String("schema", s.Name),
		zap.String("package", opts.WITPackage),
		zap.Int("types", len(defs)))
	return []byte(b.String()), nil
}
