package layout

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// FieldRef is a leaf field placed at an absolute position within the root
// struct. Nested struct fields are flattened into refs whose Path runs from
// the root.
type FieldRef struct {
	Field *schema.Field
	Path  []string
	Start int
	End   int
}

// Name returns the dotted path of the field
func (r *FieldRef) Name() string {
	return strings.Join(r.Path, ".")
}

// Width returns the number of bits in the field
func (r *FieldRef) Width() int {
	return r.End - r.Start + 1
}

// Contribution is the part of a field that lands in one word. Bits Lo..Hi of
// the word hold bits Shift..Shift+(Hi-Lo) of the field's stored value.
type Contribution struct {
	Ref   *FieldRef
	Lo    int
	Hi    int
	Shift int
}

// Mask returns the word bits covered by the contribution
func (c Contribution) Mask() uint32 {
	return uint32(bits.Mask(c.Hi-c.Lo+1) << uint(c.Lo))
}

// Word lists the contributions to one 32-bit word in declaration order.
type Word struct {
	Index         int
	Contributions []Contribution
}

// Mask returns the union of bits owned by declared fields
func (w Word) Mask() uint32 {
	var m uint32
	for _, c := range w.Contributions {
		m |= c.Mask()
	}
	return m
}

// ReservedMask returns the bits that must be zero
func (w Word) ReservedMask() uint32 {
	return ^w.Mask()
}

// Layout is the resolved word map of a struct.
type Layout struct {
	Struct    *schema.Struct
	Length    int // bytes
	MinLength int // smallest word multiple covering every field
	Fields    []*FieldRef
	Words     []Word
}

// WordCount returns the number of 32-bit words in the buffer
func (l *Layout) WordCount() int {
	return l.Length / 4
}

// Field finds a flattened field by dotted path
func (l *Layout) Field(path string) (*FieldRef, bool) {
	for _, r := range l.Fields {
		if r.Name() == path {
			return r, true
		}
	}
	return nil, false
}

// Check verifies that every word bit is owned by at most one contribution.
// Together with the reserved mask this covers all 32 bits exactly once.
func (l *Layout) Check() error {
	for _, w := range l.Words {
		var seen uint32
		for _, c := range w.Contributions {
			if c.Lo < 0 || c.Hi > bits.WordBits-1 || c.Lo > c.Hi {
				return errors.New(errors.PhaseLayout, errors.KindInvalidData).
					Struct(l.Struct.Name).
					Path(c.Ref.Path...).
					Detail("contribution %d..%d outside word %d", c.Lo, c.Hi, w.Index).
					Build()
			}
			m := c.Mask()
			if seen&m != 0 {
				return errors.New(errors.PhaseLayout, errors.KindOverlap).
					Struct(l.Struct.Name).
					Path(c.Ref.Path...).
					Detail("word %d bits %#x claimed twice", w.Index, seen&m).
					Build()
			}
			seen |= m
		}
	}
	return nil
}

// Resolver computes layouts and caches them per struct. It is safe for
// concurrent use.
type Resolver struct {
	schema *schema.Schema
	mu     sync.Mutex
	cache  map[*schema.Struct]*Layout
}

// NewResolver creates a resolver for s
func NewResolver(s *schema.Schema) *Resolver {
	return &Resolver{
		schema: s,
		cache:  make(map[*schema.Struct]*Layout),
	}
}

// Schema returns the schema being resolved
func (r *Resolver) Schema() *schema.Schema {
	return r.schema
}

// ResolveName resolves the struct called name
func (r *Resolver) ResolveName(name string) (*Layout, error) {
	st, ok := r.schema.Struct(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLayout, "struct", name)
	}
	return r.Resolve(st)
}

// Resolve flattens st, validates its spans and builds the word map.
func (r *Resolver) Resolve(st *schema.Struct) (*Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[st]; ok {
		return cached, nil
	}

	l := &Layout{Struct: st}
	var errs errors.List

	r.flatten(st, st, 0, nil, &l.Fields, &errs)
	errs.Add(checkOverlaps(st, l.Fields))

	maxEnd := -1
	for _, f := range st.Fields {
		maxEnd = max(maxEnd, f.End)
	}
	l.MinLength = (maxEnd/bits.WordBits + 1) * 4
	if maxEnd < 0 {
		l.MinLength = 0
	}
	l.Length = l.MinLength
	if st.Size != 0 {
		if st.Size < l.MinLength {
			errs.Add(errors.New(errors.PhaseLayout, errors.KindInvalidLength).
				Struct(st.Name).
				Value(st.Size).
				Detail("declared size %d is below the %d bytes its fields need", st.Size, l.MinLength).
				Build())
		}
		l.Length = st.Size
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	l.Words = make([]Word, l.WordCount())
	for i := range l.Words {
		l.Words[i].Index = i
	}
	for _, ref := range l.Fields {
		for w := ref.Start / bits.WordBits; w <= ref.End/bits.WordBits; w++ {
			base := w * bits.WordBits
			lo := max(ref.Start, base)
			hi := min(ref.End, base+bits.WordBits-1)
			l.Words[w].Contributions = append(l.Words[w].Contributions, Contribution{
				Ref:   ref,
				Lo:    lo - base,
				Hi:    hi - base,
				Shift: lo - ref.Start,
			})
		}
	}

	if err := l.Check(); err != nil {
		return nil, err
	}

	Logger().Debug("resolved layout",
		zap.String("struct", st.Name),
		zap.Int("length", l.Length),
		zap.Int("fields", len(l.Fields)),
		zap.Int("words", len(l.Words)))

	r.cache[st] = l
	return l, nil
}

// flatten appends the leaf fields of st, shifted by offset, to out.
func (r *Resolver) flatten(root, st *schema.Struct, offset int, path []string, out *[]*FieldRef, errs *errors.List) {
	for _, f := range st.Fields {
		fieldPath := append(append([]string(nil), path...), f.Name)
		start, end := f.Start+offset, f.End+offset

		if f.Type.Kind != schema.KindStruct {
			*out = append(*out, &FieldRef{Field: f, Path: fieldPath, Start: start, End: end})
			continue
		}

		nested, ok := r.schema.Struct(f.Type.Ref)
		if !ok {
			errs.Add(errors.New(errors.PhaseLayout, errors.KindUnknownType).
				Struct(root.Name).
				Path(fieldPath...).
				Type(f.Type.Ref).
				Build())
			continue
		}

		before := len(*out)
		r.flatten(root, nested, start, fieldPath, out, errs)
		for _, leaf := range (*out)[before:] {
			if leaf.End > end {
				errs.Add(errors.New(errors.PhaseLayout, errors.KindInvalidWidth).
					Struct(root.Name).
					Path(leaf.Path...).
					Type(nested.Name).
					Detail("ends at bit %d, past the %d-bit field holding %s", leaf.End, f.Width(), nested.Name).
					Build())
				break
			}
		}
	}
}

func checkOverlaps(st *schema.Struct, refs []*FieldRef) error {
	sorted := append([]*FieldRef(nil), refs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var errs errors.List
	var furthest *FieldRef
	for _, ref := range sorted {
		if furthest != nil && ref.Start <= furthest.End {
			errs.Add(errors.New(errors.PhaseLayout, errors.KindOverlap).
				Struct(st.Name).
				Path(ref.Path...).
				Detail("bits %d..%d overlap %s (bits %d..%d)",
					ref.Start, ref.End, furthest.Name(), furthest.Start, furthest.End).
				Build())
		}
		if furthest == nil || ref.End > furthest.End {
			furthest = ref
		}
	}
	return errs.Err()
}

// ResolveAll resolves every struct in declaration order and reports every
// failure together.
func ResolveAll(s *schema.Schema) ([]*Layout, error) {
	r := NewResolver(s)
	var errs errors.List
	var out []*Layout
	for _, st := range s.Structs() {
		l, err := r.Resolve(st)
		if err != nil {
			errs.Add(err)
			continue
		}
		out = append(out, l)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
