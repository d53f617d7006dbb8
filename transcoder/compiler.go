package transcoder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// Options configure compiled programs.
type Options struct {
	// StrictExact reports fixed-value fields that unpack to a different
	// pattern. Mismatches are diagnostics and never fail the unpack.
	StrictExact bool

	// Enums used to print Pixel Format fields. Empty means the defaults
	// "Channels" and "Texture Type".
	ChannelsEnum    string
	TextureTypeEnum string
}

func (o Options) withDefaults() Options {
	if o.ChannelsEnum == "" {
		o.ChannelsEnum = "Channels"
	}
	if o.TextureTypeEnum == "" {
		o.TextureTypeEnum = "Texture Type"
	}
	return o
}

// Compiler turns schema structs into Programs and caches them. It is safe for
// concurrent use.
type Compiler struct {
	schema   *schema.Schema
	resolver *layout.Resolver
	cache    sync.Map // *schema.Struct -> *Program
	opts     Options
}

func NewCompiler(s *schema.Schema, opts Options) *Compiler {
	return &Compiler{
		schema:   s,
		resolver: layout.NewResolver(s),
		opts:     opts.withDefaults(),
	}
}

// Schema returns the schema programs are compiled from
func (c *Compiler) Schema() *schema.Schema {
	return c.schema
}

// Compile returns the program for the struct called name.
func (c *Compiler) Compile(name string) (*Program, error) {
	st, ok := c.schema.Struct(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLayout, "struct", name)
	}
	return c.CompileStruct(st)
}

func (c *Compiler) CompileStruct(st *schema.Struct) (*Program, error) {
	if cached, ok := c.cache.Load(st); ok {
		return cached.(*Program), nil
	}

	l, err := c.resolver.Resolve(st)
	if err != nil {
		return nil, err
	}

	p := &Program{
		schema: c.schema,
		layout: l,
		opts:   c.opts,
		leaves: make([]leaf, len(l.Fields)),
		index:  make(map[*layout.FieldRef]int, len(l.Fields)),
	}
	for i, ref := range l.Fields {
		idx, err := c.indexPath(st, ref.Path)
		if err != nil {
			return nil, err
		}
		p.leaves[i] = leaf{ref: ref, field: ref.Field, path: ref.Name(), idx: idx}
		p.index[ref] = i
	}

	Logger().Debug("compiled program",
		zap.String("struct", st.Name),
		zap.Int("length", l.Length),
		zap.Int("leaves", len(p.leaves)),
		zap.Bool("packable", st.Packable()))

	actual, _ := c.cache.LoadOrStore(st, p)
	return actual.(*Program), nil
}

// indexPath converts a flattened field path into positions within the nested
// record values.
func (c *Compiler) indexPath(st *schema.Struct, path []string) ([]int, error) {
	idx := make([]int, 0, len(path))
	cur := st
	for depth, name := range path {
		pos := -1
		for i, f := range cur.Fields {
			if f.Name == name {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, errors.FieldUnknown(errors.PhaseLayout, st.Name, name)
		}
		idx = append(idx, pos)
		if depth == len(path)-1 {
			break
		}
		next, ok := c.schema.Struct(cur.Fields[pos].Type.Ref)
		if !ok {
			return nil, errors.NotFound(errors.PhaseLayout, "struct", cur.Fields[pos].Type.Ref)
		}
		cur = next
	}
	return idx, nil
}
