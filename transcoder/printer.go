package transcoder

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// Print writes rec as indented text, one line per field. Struct fields print
// a "<Label>:" header and their own fields indented by two more columns.
// Print is available for every struct, packable or not.
func (p *Program) Print(w io.Writer, rec *Record, indent int) error {
	if err := p.checkRecord(rec, errors.PhasePrint); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	p.print(bw, rec, indent)
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.PhasePrint, errors.KindInvalidData, err, "write failed")
	}
	return nil
}

func (p *Program) print(w io.Writer, rec *Record, indent int) {
	for i, f := range rec.st.Fields {
		v := rec.values[i]
		switch f.Type.Kind {
		case schema.KindStruct:
			fmt.Fprintf(w, "%*s%s:\n", indent, "", f.Label)
			p.print(w, v.(*Record), indent+2)
		case schema.KindPixelFormat:
			u := v.(uint64)
			fmt.Fprintf(w, "%*s%s: %s %s\n", indent, "", f.Label,
				p.enumName(p.opts.ChannelsEnum, u&0x7f, "unknown channels %02X"),
				p.enumName(p.opts.TextureTypeEnum, u>>7, "unknown type %02X"))
		default:
			fmt.Fprintf(w, "%*s%s: %s\n", indent, "", f.Label, p.formatValue(f, v))
		}
	}
}

func (p *Program) formatValue(f *schema.Field, v any) string {
	switch f.Type.Kind {
	case schema.KindEnum:
		u := v.(uint64)
		if e, ok := p.schema.Enum(f.Type.Ref); ok {
			if name, ok := e.Lookup(int64(u)); ok {
				return name
			}
		}
		return fmt.Sprintf("unknown %X (XXX)", u)
	case schema.KindAddress, schema.KindHex:
		return fmt.Sprintf("0x%x", v.(uint64))
	case schema.KindInt:
		return fmt.Sprintf("%d", v.(int64))
	case schema.KindBool:
		if v.(bool) {
			return "true"
		}
		return "false"
	case schema.KindFloat, schema.KindLOD:
		return fmt.Sprintf("%f", v.(float32))
	case schema.KindUintFloat:
		u := v.(uint64)
		return fmt.Sprintf("0x%X (%f)", u, math.Float32frombits(uint32(u)))
	default:
		if f.Width() > 32 {
			return fmt.Sprintf("0x%x", v.(uint64))
		}
		return fmt.Sprintf("%d", v.(uint64))
	}
}

func (p *Program) enumName(enum string, v uint64, unknown string) string {
	if e, ok := p.schema.Enum(enum); ok {
		if name, ok := e.Lookup(int64(v)); ok {
			return name
		}
	}
	return fmt.Sprintf(unknown, v)
}
