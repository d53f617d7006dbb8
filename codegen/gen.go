package codegen

import (
	"bufio"
	"bytes"
	"fmt"
	"go/format"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/modifier"
	"github.com/wippyai/bitpack/schema"
)

const fingerprintPrefix = "// Fingerprint: "

// Options configure generation.
type Options struct {
	// Package is the Go package clause. Defaults to the schema name.
	Package string

	// Enums used to print Pixel Format fields. Empty means the defaults
	// "Channels" and "Texture Type".
	ChannelsEnum    string
	TextureTypeEnum string

	// WITPackage is the WIT package name. Defaults to "bitpack:<schema>".
	WITPackage string
}

func (o Options) withDefaults(s *schema.Schema) Options {
	if o.Package == "" {
		o.Package = packageName(s.Name)
	}
	if o.ChannelsEnum == "" {
		o.ChannelsEnum = "Channels"
	}
	if o.TextureTypeEnum == "" {
		o.TextureTypeEnum = "Texture Type"
	}
	if o.WITPackage == "" {
		o.WITPackage = "bitpack:" + kebab(s.Name)
	}
	return o
}

type generator struct {
	schema  *schema.Schema
	opts    Options
	layouts map[*schema.Struct]*layout.Layout
	names   map[string]string // schema type name -> Go type name
	taken   map[string]string // package-level identifier -> owner
	errs    errors.List
	out     bytes.Buffer

	usesFmt      bool
	usesMath     bool
	usesBits     bool
	usesModifier bool
	usesPixel    bool
}

// Generate returns gofmt-formatted Go source declaring, for every enum, a
// named type with its constants and, for every struct, a Go struct with a
// constructor, Print and, unless the struct disables direct packing, Pack,
// Unpack and UnpackStrict.
func Generate(s *schema.Schema, opts Options) ([]byte, error) {
	g := &generator{
		schema:  s,
		opts:    opts.withDefaults(s),
		layouts: make(map[*schema.Struct]*layout.Layout),
		names:   make(map[string]string),
		taken:   make(map[string]string),
	}

	resolver := layout.NewResolver(s)
	for _, st := range s.Structs() {
		l, err := resolver.Resolve(st)
		if err != nil {
			g.errs.Add(err)
			continue
		}
		g.layouts[st] = l
	}
	if err := g.errs.Err(); err != nil {
		return nil, err
	}

	g.nameTypes()
	g.emitBody()
	if err := g.errs.Err(); err != nil {
		return nil, err
	}

	body := bytes.Clone(g.out.Bytes())
	g.out.Reset()
	g.emitHeader()
	g.out.Write(body)

	src, err := format.Source(g.out.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "generated source does not parse")
	}

	Logger().Debug("generated go source",
		zap.String("schema", s.Name),
		zap.String("package", g.opts.Package),
		zap.Int("bytes", len(src)))
	return src, nil
}

// Fingerprint returns the schema fingerprint recorded in generated source.
func Fingerprint(src []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, fingerprintPrefix) {
			return strings.TrimPrefix(line, fingerprintPrefix), true
		}
		if strings.HasPrefix(line, "package ") {
			break
		}
	}
	return "", false
}

// UpToDate reports whether src was generated from s.
func UpToDate(s *schema.Schema, src []byte) bool {
	fp, ok := Fingerprint(src)
	return ok && fp == s.Fingerprint()
}

func (g *generator) claim(ident, owner string) {
	if prev, ok := g.taken[ident]; ok {
		g.errs.Add(errors.New(errors.PhaseGenerate, errors.KindDuplicate).
			Value(ident).
			Detail("Go identifier %s of %s collides with %s", ident, owner, prev).
			Build())
		return
	}
	g.taken[ident] = owner
}

func (g *generator) nameTypes() {
	for _, e := range g.schema.Enums() {
		name := exported(e.Name)
		g.claim(name, "enum "+e.Name)
		g.names[e.Name] = name
	}
	for _, st := range g.schema.Structs() {
		name := exported(st.Name)
		g.claim(name, "struct "+st.Name)
		g.claim("New"+name, "struct "+st.Name)
		if st.Packable() {
			g.claim(name+"Length", "struct "+st.Name)
			g.claim(name+"Words", "struct "+st.Name)
			if st.Align != 0 {
				g.claim(name+"Align", "struct "+st.Name)
			}
		}
		g.names[st.Name] = name
	}
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

func (g *generator) emitHeader() {
	g.p("// Code generated by bitpack from schema %q. DO NOT EDIT.", g.schema.Name)
	g.p("%s%s", fingerprintPrefix, g.schema.Fingerprint())
	g.p("")
	g.p("package %s", g.opts.Package)
	g.p("")

	var packable bool
	for _, st := range g.schema.Structs() {
		packable = packable || st.Packable()
	}
	var std, mod []string
	if g.usesFmt {
		std = append(std, `"fmt"`)
	}
	if len(g.schema.Structs()) > 0 {
		std = append(std, `"io"`)
	}
	if g.usesMath {
		std = append(std, `"math"`)
	}
	if packable {
		mod = append(mod, `"github.com/wippyai/bitpack"`)
	}
	if g.usesBits {
		mod = append(mod, `"github.com/wippyai/bitpack/bits"`)
	}
	if g.usesModifier {
		mod = append(mod, `"github.com/wippyai/bitpack/modifier"`)
	}
	if len(std)+len(mod) > 0 {
		g.p("import (")
		for _, i := range std {
			g.p("\t%s", i)
		}
		if len(std) > 0 && len(mod) > 0 {
			g.p("")
		}
		for _, i := range mod {
			g.p("\t%s", i)
		}
		g.p(")")
		g.p("")
	}
}

func (g *generator) emitBody() {
	for _, e := range g.schema.Enums() {
		g.emitEnum(e)
	}
	for _, st := range g.schema.Structs() {
		g.emitStruct(st)
	}
	if g.usesPixel {
		g.emitPixelFormat()
	}
}

func (g *generator) emitEnum(e *schema.Enum) {
	name := g.names[e.Name]
	g.p("// %s enumerates %s values.", name, e.Name)
	g.p("type %s uint32", name)
	g.p("")

	if len(e.Values) > 0 {
		g.p("const (")
		for _, v := range e.Values {
			if v.Value < 0 || v.Value > math.MaxUint32 {
				g.errs.Add(errors.New(errors.PhaseGenerate, errors.KindInvalidLiteral).
					Path(e.Name, v.Name).
					Value(v.Value).
					Detail("enum values must fit 32 unsigned bits").
					Build())
				continue
			}
			constName := enumConst(e, v)
			g.claim(constName, "enum value "+e.Name+"."+v.Name)
			g.p("\t%s %s = %d", constName, name, v.Value)
		}
		g.p(")")
		g.p("")
	}

	g.p("// Name returns the label of v and false for values %s does not list.", name)
	g.p("func (v %s) Name() (string, bool) {", name)
	g.p("\tswitch v {")
	seen := make(map[int64]bool)
	for _, v := range e.Values {
		if seen[v.Value] || v.Value < 0 || v.Value > math.MaxUint32 {
			continue
		}
		seen[v.Value] = true
		g.p("\tcase %d:", v.Value)
		g.p("\t\treturn %s, true", strconv.Quote(v.Name))
	}
	g.p("\t}")
	g.p("\treturn \"\", false")
	g.p("}")
	g.p("")
	g.p("func (v %s) String() string {", name)
	g.p("\tif name, ok := v.Name(); ok {")
	g.p("\t\treturn name")
	g.p("\t}")
	g.usesFmt = true
	g.p("\treturn fmt.Sprintf(\"unknown %%X (XXX)\", uint32(v))")
	g.p("}")
	g.p("")
}

func enumConst(e *schema.Enum, v schema.Value) string {
	if e.Prefix != "" {
		return exported(e.Prefix) + exported(v.Name)
	}
	return exported(e.Name) + exported(v.Name)
}

// goType returns the Go type holding the logical value of f.
func (g *generator) goType(f *schema.Field) string {
	switch f.Type.Kind {
	case schema.KindAddress:
		return "uint64"
	case schema.KindUint, schema.KindHex:
		if f.ValueWidth() > 32 {
			return "uint64"
		}
		return "uint32"
	case schema.KindInt:
		return "int32"
	case schema.KindBool:
		return "bool"
	case schema.KindFloat, schema.KindLOD:
		return "float32"
	case schema.KindEnum, schema.KindStruct:
		return g.names[f.Type.Ref]
	default:
		return "uint32"
	}
}

func (g *generator) emitStruct(st *schema.Struct) {
	name := g.names[st.Name]
	l := g.layouts[st]

	if st.Packable() {
		g.p("const (")
		g.p("\t%sLength = %d", name, l.Length)
		g.p("\t%sWords = %d", name, l.WordCount())
		if st.Align != 0 {
			g.p("\t%sAlign = %d", name, st.Align)
		}
		g.p(")")
		g.p("")
	}

	for _, f := range st.Fields {
		if len(f.Values) == 0 {
			continue
		}
		g.p("// %s.%s values", name, exported(f.Label))
		g.p("const (")
		for _, v := range f.Values {
			constName := exported(f.Prefix) + exported(v.Name)
			if f.Prefix == "" {
				constName = name + exported(f.Label) + exported(v.Name)
			}
			g.claim(constName, "value "+st.Name+"."+f.Label+"."+v.Name)
			g.p("\t%s = %d", constName, v.Value)
		}
		g.p(")")
		g.p("")
	}

	fieldNames := make(map[string]string)
	g.p("// %s is the unpacked form of %s.", name, st.Name)
	g.p("type %s struct {", name)
	for _, f := range st.Fields {
		fn := exported(f.Label)
		if prev, ok := fieldNames[fn]; ok {
			g.errs.Add(errors.New(errors.PhaseGenerate, errors.KindDuplicate).
				Struct(st.Name).
				Path(f.Name).
				Detail("Go field %s collides with %s", fn, prev).
				Build())
		}
		fieldNames[fn] = f.Label
		g.p("\t%s %s", fn, g.goType(f))
	}
	g.p("}")
	g.p("")

	g.emitNew(st, name)
	if st.Packable() {
		g.emitPack(l, name)
		g.emitUnpack(l, name)
	}
	g.emitPrint(st, name)
}

func (g *generator) emitNew(st *schema.Struct, name string) {
	g.p("// New%s returns a %s holding the declared defaults and fixed values.", name, name)
	g.p("func New%s() %s {", name, name)
	var inits []string
	for _, f := range st.Fields {
		var lit string
		switch {
		case f.Type.Kind == schema.KindStruct:
			lit = "New" + g.names[f.Type.Ref] + "()"
		case f.Exact != nil:
			lit = g.exactLiteral(f)
		case f.Default != nil:
			lit = g.literal(f.Default)
		default:
			continue
		}
		inits = append(inits, fmt.Sprintf("\t\t%s: %s,", exported(f.Label), lit))
	}
	if len(inits) == 0 {
		g.p("\treturn %s{}", name)
	} else {
		g.p("\treturn %s{", name)
		for _, line := range inits {
			g.p("%s", line)
		}
		g.p("\t}")
	}
	g.p("}")
	g.p("")
}

func (g *generator) literal(v any) string {
	switch x := v.(type) {
	case uint64:
		return strconv.FormatUint(x, 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return g.floatLiteral(x)
	}
	return fmt.Sprint(v)
}

func (g *generator) floatLiteral(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		g.usesMath = true
		return fmt.Sprintf("math.Float32frombits(%#x)", math.Float32bits(f))
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// exactLiteral renders the logical value of a fixed field.
func (g *generator) exactLiteral(f *schema.Field) string {
	stored := *f.Exact
	switch f.Type.Kind {
	case schema.KindInt:
		return strconv.FormatInt(bits.SignExtend(stored, f.Width()), 10)
	case schema.KindBool:
		return strconv.FormatBool(stored != 0)
	case schema.KindFloat:
		return g.floatLiteral(math.Float32frombits(uint32(stored)))
	case schema.KindLOD:
		return g.floatLiteral(float32(stored) / 64)
	default:
		return fmt.Sprintf("%#x", stored)
	}
}

// access returns the Go selector of a flattened field, e.g. v.Sampler.WrapS.
func (g *generator) access(st *schema.Struct, ref *layout.FieldRef) string {
	var b strings.Builder
	b.WriteString("v")
	cur := st
	for _, part := range ref.Path {
		f, _ := cur.Field(part)
		b.WriteByte('.')
		b.WriteString(exported(f.Label))
		if f.Type.Kind == schema.KindStruct {
			cur, _ = g.schema.Struct(f.Type.Ref)
		}
	}
	return b.String()
}

func local(ref *layout.FieldRef) string {
	return unexported(strings.Join(ref.Path, " ")) + "Bits"
}

func (g *generator) modifierLiteral(m modifier.Modifier) string {
	g.usesModifier = true
	if m.Op.HasArg() {
		return fmt.Sprintf("modifier.Modifier{Op: modifier.%s, Arg: %d}", exported(m.Op.String()), m.Arg)
	}
	return fmt.Sprintf("modifier.Modifier{Op: modifier.%s}", exported(m.Op.String()))
}

// storeExpr converts the Go value of a leaf to its stored bit pattern.
func (g *generator) storeExpr(st *schema.Struct, ref *layout.FieldRef) string {
	g.usesBits = true
	f := ref.Field
	val := g.access(st, ref)
	path := strconv.Quote(ref.Name())
	switch f.Type.Kind {
	case schema.KindInt:
		return fmt.Sprintf("bits.MustFitSint(int64(%s), %d, %s)", val, ref.Width(), path)
	case schema.KindBool:
		return fmt.Sprintf("bits.FromBool(%s)", val)
	case schema.KindFloat:
		return fmt.Sprintf("bits.PackFloat(%s)", val)
	case schema.KindLOD:
		return fmt.Sprintf("bits.PackLOD(%s)", val)
	}
	u := fmt.Sprintf("uint64(%s)", val)
	if !f.Modifier.IsZero() {
		u = fmt.Sprintf("%s.MustPack(%s, %s)", g.modifierLiteral(f.Modifier), u, path)
	}
	return fmt.Sprintf("bits.MustFitUint(%s, %d, %s)", u, ref.Width(), path)
}

func (g *generator) emitPack(l *layout.Layout, name string) {
	st := l.Struct
	g.p("// Pack writes v into cl, which must hold at least %sLength bytes.", name)
	g.p("// A value outside its field's domain panics with *errors.Error.")
	g.p("func (v *%s) Pack(cl []byte) {", name)
	if l.Length > 0 {
		g.p("\t_ = cl[%sLength-1]", name)
	}

	for _, ref := range l.Fields {
		if ref.Field.Exact != nil {
			continue
		}
		g.p("\t%s := %s", local(ref), g.storeExpr(st, ref))
	}
	if len(l.Fields) > 0 {
		g.p("")
	}

	for _, w := range l.Words {
		g.usesBits = true
		if len(w.Contributions) == 0 {
			g.p("\tbits.PutWord(cl, %d, 0)", w.Index)
			continue
		}
		terms := make([]string, 0, len(w.Contributions))
		for _, c := range w.Contributions {
			ref := c.Ref
			src := local(ref)
			if ref.Field.Exact != nil {
				src = fmt.Sprintf("%#x", *ref.Field.Exact)
			}
			terms = append(terms, fmt.Sprintf("bits.Place(%s, %d, %d, %d)", src, ref.Start, ref.End, w.Index))
		}
		g.p("\tbits.PutWord(cl, %d, %s)", w.Index, strings.Join(terms, "|\n\t\t"))
	}
	g.p("}")
	g.p("")
}

// loadExpr reads a leaf from cl and converts it to its Go value.
func (g *generator) loadExpr(ref *layout.FieldRef) string {
	g.usesBits = true
	f := ref.Field
	span := fmt.Sprintf("cl, %d, %d", ref.Start, ref.End)
	switch f.Type.Kind {
	case schema.KindInt:
		return fmt.Sprintf("int32(bits.Sint(%s))", span)
	case schema.KindBool:
		return fmt.Sprintf("bits.Uint(%s) != 0", span)
	case schema.KindFloat:
		return fmt.Sprintf("bits.Float(%s)", span)
	case schema.KindLOD:
		return fmt.Sprintf("bits.LOD(%s)", span)
	}
	raw := fmt.Sprintf("bits.Uint(%s)", span)
	if !f.Modifier.IsZero() && f.Exact == nil {
		raw = fmt.Sprintf("%s.MustUnpack(%s, %s)", g.modifierLiteral(f.Modifier), raw, strconv.Quote(ref.Name()))
	}
	typ := g.goType(f)
	if typ == "uint64" {
		return raw
	}
	return fmt.Sprintf("%s(%s)", typ, raw)
}

func (g *generator) emitUnpack(l *layout.Layout, name string) {
	st := l.Struct
	label := strconv.Quote(st.Name)

	g.p("// Unpack reads cl into v. Bits set outside every field are reported to")
	g.p("// sink, which may be nil, and decoding continues.")
	g.p("func (v *%s) Unpack(sink bitpack.Sink, cl []byte) {", name)
	if l.Length > 0 {
		g.p("\t_ = cl[%sLength-1]", name)
	}
	for _, w := range l.Words {
		if mask := w.ReservedMask(); mask != 0 {
			g.usesBits = true
			g.p("\tbits.CheckReserved(sink, %s, cl, %d, %#x)", label, w.Index, mask)
		}
	}
	for _, ref := range l.Fields {
		g.p("\t%s = %s", g.access(st, ref), g.loadExpr(ref))
	}
	g.p("}")
	g.p("")

	g.p("// UnpackStrict is Unpack that also reports fixed-value fields holding")
	g.p("// another pattern.")
	g.p("func (v *%s) UnpackStrict(sink bitpack.Sink, cl []byte) {", name)
	g.p("\tv.Unpack(sink, cl)")
	for _, ref := range l.Fields {
		if ref.Field.Exact == nil {
			continue
		}
		g.p("\tbits.CheckExact(sink, %s, %s, %d, bits.Uint(cl, %d, %d), %#x)",
			label, strconv.Quote(ref.Name()), ref.Start, ref.Start, ref.End, *ref.Field.Exact)
	}
	g.p("}")
	g.p("")
}

func (g *generator) emitPrint(st *schema.Struct, name string) {
	g.p("// Print writes v as indented text, one line per field.")
	g.p("func (v *%s) Print(w io.Writer, indent int) {", name)
	for _, f := range st.Fields {
		label := strconv.Quote(f.Label)
		val := "v." + exported(f.Label)
		line := func(verb, arg string) {
			g.usesFmt = true
			g.p("\tfmt.Fprintf(w, \"%%*s%%s: %s\\n\", indent, \"\", %s, %s)", verb, label, arg)
		}
		switch f.Type.Kind {
		case schema.KindStruct:
			g.usesFmt = true
			g.p("\tfmt.Fprintf(w, \"%%*s%%s:\\n\", indent, \"\", %s)", label)
			g.p("\t%s.Print(w, indent+2)", val)
		case schema.KindEnum:
			line("%s", val)
		case schema.KindAddress, schema.KindHex:
			line("0x%x", val)
		case schema.KindInt:
			line("%d", val)
		case schema.KindBool:
			line("%t", val)
		case schema.KindFloat, schema.KindLOD:
			line("%f", val)
		case schema.KindUintFloat:
			g.usesFmt = true
			g.usesMath = true
			g.p("\tfmt.Fprintf(w, \"%%*s%%s: 0x%%X (%%f)\\n\", indent, \"\", %s, %s, math.Float32frombits(%s))", label, val, val)
		case schema.KindPixelFormat:
			g.usesPixel = true
			line("%s", "pixelFormatString("+val+")")
		default:
			if f.Width() > 32 {
				line("0x%x", val)
			} else {
				line("%d", val)
			}
		}
	}
	g.p("}")
	g.p("")
}

func (g *generator) enumName(name string) (string, bool) {
	if e, ok := g.schema.Enum(name); ok {
		return g.names[e.Name], true
	}
	return "", false
}

func (g *generator) emitPixelFormat() {
	g.usesFmt = true
	g.p("func pixelFormatString(v uint32) string {")
	g.p("\tchannels := fmt.Sprintf(\"unknown channels %%02X\", v&0x7f)")
	if typ, ok := g.enumName(g.opts.ChannelsEnum); ok {
		g.p("\tif name, ok := %s(v & 0x7f).Name(); ok {", typ)
		g.p("\t\tchannels = name")
		g.p("\t}")
	}
	g.p("\ttextureType := fmt.Sprintf(\"unknown type %%02X\", v>>7)")
	if typ, ok := g.enumName(g.opts.TextureTypeEnum); ok {
		g.p("\tif name, ok := %s(v >> 7).Name(); ok {", typ)
		g.p("\t\ttextureType = name")
		g.p("\t}")
	}
	g.p("\treturn channels + \" \" + textureType")
	g.p("}")
}
