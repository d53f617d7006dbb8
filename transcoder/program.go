package transcoder

import (
	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/bits"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// leaf is a flattened field together with its position in the record tree.
type leaf struct {
	ref   *layout.FieldRef
	field *schema.Field
	path  string
	idx   []int
}

// Program packs, unpacks and prints values of one struct. Programs are
// immutable and safe for concurrent use.
type Program struct {
	schema *schema.Schema
	layout *layout.Layout
	opts   Options
	leaves []leaf
	index  map[*layout.FieldRef]int
}

// Struct returns the compiled struct
func (p *Program) Struct() *schema.Struct {
	return p.layout.Struct
}

// Layout returns the resolved word map
func (p *Program) Layout() *layout.Layout {
	return p.layout
}

// Length returns the packed size in bytes
func (p *Program) Length() int {
	return p.layout.Length
}

// New returns a record holding the field defaults, fixed values and zero
// elsewhere.
func (p *Program) New() *Record {
	return newRecord(p.schema, p.layout.Struct, true)
}

// Zero returns a record with every writable field zero.
func (p *Program) Zero() *Record {
	return newRecord(p.schema, p.layout.Struct, false)
}

func (p *Program) checkRecord(rec *Record, phase errors.Phase) error {
	st := p.layout.Struct
	if rec == nil || rec.st != st {
		var got any
		if rec != nil {
			got = rec.st.Name
		}
		return errors.TypeMismatch(phase, nil, got, st.Name)
	}
	return nil
}

func (p *Program) checkPackable(phase errors.Phase) error {
	st := p.layout.Struct
	if !st.Packable() {
		return errors.New(phase, errors.KindUnsupported).
			Struct(st.Name).
			Detail("struct is declared without direct packing").
			Build()
	}
	return nil
}

func (p *Program) checkBuffer(buf []byte, phase errors.Phase) error {
	if len(buf) != p.layout.Length {
		return errors.New(phase, errors.KindInvalidLength).
			Struct(p.layout.Struct.Name).
			Value(len(buf)).
			Detail("buffer is %d bytes, want %d", len(buf), p.layout.Length).
			Build()
	}
	return nil
}

// Pack encodes rec into a new buffer of Length bytes.
//
// Misuse (a record of another struct, a struct without direct packing) is
// returned as an error. A value outside its modifier domain or too wide for
// its field is a contract violation and panics with *errors.Error.
func (p *Program) Pack(rec *Record) ([]byte, error) {
	buf := make([]byte, p.layout.Length)
	if err := p.PackInto(rec, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PackInto encodes rec into buf, which must be exactly Length bytes.
func (p *Program) PackInto(rec *Record, buf []byte) error {
	if err := p.checkPackable(errors.PhasePack); err != nil {
		return err
	}
	if err := p.checkRecord(rec, errors.PhasePack); err != nil {
		return err
	}
	if err := p.checkBuffer(buf, errors.PhasePack); err != nil {
		return err
	}

	// Every assertion runs before the first word is written.
	stored := make([]uint64, len(p.leaves))
	for i := range p.leaves {
		stored[i] = p.store(&p.leaves[i], rec.at(p.leaves[i].idx))
	}

	for _, w := range p.layout.Words {
		var word uint32
		for _, c := range w.Contributions {
			v := stored[p.index[c.Ref]] >> uint(c.Shift)
			word |= uint32(v&bits.Mask(c.Hi-c.Lo+1)) << uint(c.Lo)
		}
		bits.PutWord(buf, w.Index, word)
	}
	return nil
}

// store returns the bit pattern a leaf value occupies in its span.
func (p *Program) store(l *leaf, v any) uint64 {
	f := l.field
	width := l.ref.Width()
	if f.Exact != nil {
		return *f.Exact
	}

	switch f.Type.Kind {
	case schema.KindInt:
		return bits.MustFitSint(v.(int64), width, l.path)
	case schema.KindBool:
		return bits.FromBool(v.(bool))
	case schema.KindFloat:
		return bits.PackFloat(v.(float32))
	case schema.KindLOD:
		return bits.PackLOD(v.(float32))
	default:
		u := f.Modifier.MustPack(v.(uint64), l.path)
		return bits.MustFitUint(u, width, l.path)
	}
}

// Unpack decodes buf, which must be exactly Length bytes. Bits set outside
// every declared field are reported to sink and decoding continues. A nil
// sink discards diagnostics. A stored value that violates its modifier (a
// misaligned align field) panics with *errors.Error.
func (p *Program) Unpack(buf []byte, sink bitpack.Sink) (*Record, error) {
	rec := p.Zero()
	if err := p.UnpackInto(buf, rec, sink); err != nil {
		return nil, err
	}
	return rec, nil
}

// UnpackInto decodes buf into an existing record of the program's struct.
func (p *Program) UnpackInto(buf []byte, rec *Record, sink bitpack.Sink) error {
	if err := p.checkPackable(errors.PhaseUnpack); err != nil {
		return err
	}
	if err := p.checkRecord(rec, errors.PhaseUnpack); err != nil {
		return err
	}
	if err := p.checkBuffer(buf, errors.PhaseUnpack); err != nil {
		return err
	}
	if sink == nil {
		sink = bitpack.Discard
	}

	label := p.layout.Struct.Name
	stored := make([]uint64, len(p.leaves))
	for _, w := range p.layout.Words {
		bits.CheckReserved(sink, label, buf, w.Index, w.ReservedMask())
		word := bits.Word(buf, w.Index)
		for _, c := range w.Contributions {
			v := uint64(word>>uint(c.Lo)) & bits.Mask(c.Hi-c.Lo+1)
			stored[p.index[c.Ref]] |= v << uint(c.Shift)
		}
	}

	for i := range p.leaves {
		l := &p.leaves[i]
		f := l.field
		if f.Exact != nil {
			if p.opts.StrictExact {
				bits.CheckExact(sink, label, l.path, l.ref.Start, stored[i], *f.Exact)
			}
			rec.put(l.idx, logical(f, stored[i]))
			continue
		}
		v := logical(f, stored[i])
		if f.Type.Kind.Modifiable() {
			v = f.Modifier.MustUnpack(v.(uint64), l.path)
		}
		rec.put(l.idx, v)
	}
	return nil
}

// at returns the value at a compiled index path.
func (r *Record) at(idx []int) any {
	cur := r
	for _, i := range idx[:len(idx)-1] {
		cur = cur.values[i].(*Record)
	}
	return cur.values[idx[len(idx)-1]]
}

func (r *Record) put(idx []int, v any) {
	cur := r
	for _, i := range idx[:len(idx)-1] {
		cur = cur.values[i].(*Record)
	}
	cur.values[idx[len(idx)-1]] = v
}
