package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/codegen"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/transcoder"
)

// CheckCmd validates a schema.
type CheckCmd struct {
	Schema string `arg:"" help:"Schema file" type:"existingfile"`
}

func (c *CheckCmd) Run(ctx *kong.Context, g *Globals) error {
	s, err := g.load(c.Schema)
	if err != nil {
		return err
	}
	layouts, err := layout.ResolveAll(s)
	if err != nil {
		return err
	}
	for _, l := range layouts {
		packing := ""
		if !l.Struct.Packable() {
			packing = ", no direct packing"
		}
		fmt.Fprintf(ctx.Stdout, "%s: %d bytes, %d fields%s\n", l.Struct.Name, l.Length, len(l.Fields), packing)
	}
	fmt.Fprintf(ctx.Stdout, "ok: %d structs, %d enums\n", len(s.Structs()), len(s.Enums()))
	return nil
}

// LayoutCmd prints the word map of a struct.
type LayoutCmd struct {
	Schema string `arg:"" help:"Schema file" type:"existingfile"`
	Struct string `arg:"" help:"Struct name"`
}

func (c *LayoutCmd) Run(ctx *kong.Context, g *Globals) error {
	s, err := g.load(c.Schema)
	if err != nil {
		return err
	}
	l, err := layout.NewResolver(s).ResolveName(c.Struct)
	if err != nil {
		return err
	}
	writeLayout(ctx.Stdout, l)
	return nil
}

func writeLayout(w io.Writer, l *layout.Layout) {
	fmt.Fprintf(w, "%s: %d bytes, %d words\n", l.Struct.Name, l.Length, l.WordCount())
	for _, word := range l.Words {
		fmt.Fprintf(w, "word %d  reserved %08X\n", word.Index, word.ReservedMask())
		for _, c := range word.Contributions {
			hi := c.Shift + c.Hi - c.Lo
			fmt.Fprintf(w, "  %2d..%-2d  %s[%d..%d] %s\n", c.Lo, c.Hi, c.Ref.Name(), c.Shift, hi, c.Ref.Field.Type)
		}
	}
}

// GenCmd generates Go source.
type GenCmd struct {
	Schema  string `arg:"" help:"Schema file" type:"existingfile"`
	Out     string `short:"o" help:"Output file. Standard output when empty." type:"path"`
	Package string `name:"package" env:"BITPACK_PACKAGE" help:"Go package name. Defaults to the schema name."`
	Force   bool   `help:"Rewrite the output even when it is up to date."`
}

func (c *GenCmd) Run(ctx *kong.Context, g *Globals) error {
	s, err := g.load(c.Schema)
	if err != nil {
		return err
	}
	if c.Out != "" && !c.Force {
		if old, err := os.ReadFile(c.Out); err == nil && codegen.UpToDate(s, old) {
			g.Log().Info("output up to date", zap.String("path", c.Out), zap.String("fingerprint", s.Fingerprint()))
			return nil
		}
	}
	src, err := codegen.Generate(s, codegen.Options{Package: c.Package})
	if err != nil {
		return err
	}
	return writeOutput(ctx.Stdout, c.Out, src)
}

// WITCmd generates WIT type definitions.
type WITCmd struct {
	Schema  string `arg:"" help:"Schema file" type:"existingfile"`
	Out     string `short:"o" help:"Output file. Standard output when empty." type:"path"`
	Package string `name:"package" help:"WIT package name. Defaults to bitpack:<schema>."`
}

func (c *WITCmd) Run(ctx *kong.Context, g *Globals) error {
	s, err := g.load(c.Schema)
	if err != nil {
		return err
	}
	src, err := codegen.WIT(s, codegen.Options{WITPackage: c.Package})
	if err != nil {
		return err
	}
	return writeOutput(ctx.Stdout, c.Out, src)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// HashCmd prints the schema fingerprint.
type HashCmd struct {
	Schema    string `arg:"" help:"Schema file" type:"existingfile"`
	Canonical bool   `help:"Print the canonical text the fingerprint is computed over."`
}

func (c *HashCmd) Run(ctx *kong.Context, g *Globals) error {
	s, err := g.load(c.Schema)
	if err != nil {
		return err
	}
	if c.Canonical {
		fmt.Fprint(ctx.Stdout, s.Canonical())
		return nil
	}
	fmt.Fprintln(ctx.Stdout, s.Fingerprint())
	return nil
}

func (g *Globals) program(path, name string, opts transcoder.Options) (*transcoder.Program, error) {
	s, err := g.load(path)
	if err != nil {
		return nil, err
	}
	return transcoder.NewCompiler(s, opts).Compile(name)
}

// parseAssignments applies "path=value" pairs to rec.
func parseAssignments(rec *transcoder.Record, sets []string) error {
	for _, set := range sets {
		path, value, ok := strings.Cut(set, "=")
		if !ok {
			return errors.InvalidInput(errors.PhasePack, fmt.Sprintf("assignment %q is not path=value", set))
		}
		if err := rec.Set(strings.TrimSpace(path), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

// packRecord packs rec, turning contract panics into errors.
func packRecord(p *transcoder.Program, rec *transcoder.Record) (buf []byte, err error) {
	defer errors.Recover(&err)
	return p.Pack(rec)
}

// unpackRecord unpacks buf, turning contract panics into errors.
func unpackRecord(p *transcoder.Program, buf []byte, sink bitpack.Sink) (rec *transcoder.Record, err error) {
	defer errors.Recover(&err)
	return p.Unpack(buf, sink)
}

// parseHex decodes a hex string, ignoring whitespace, underscores and a
// leading 0x.
func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '_':
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.New(errors.PhaseUnpack, errors.KindInvalidInput).
			Cause(err).
			Detail("invalid hex input").
			Build()
	}
	return buf, nil
}

// PackCmd packs field values.
type PackCmd struct {
	Schema string   `arg:"" help:"Schema file" type:"existingfile"`
	Struct string   `arg:"" help:"Struct name"`
	Set    []string `short:"s" help:"Field assignment path=value, repeatable." sep:"none"`
	Zero   bool     `help:"Start from zero instead of the declared defaults."`
	Out    string   `short:"o" help:"Write raw bytes to a file instead of printing hex." type:"path"`
}

func (c *PackCmd) Run(ctx *kong.Context, g *Globals) error {
	p, err := g.program(c.Schema, c.Struct, transcoder.Options{})
	if err != nil {
		return err
	}
	rec := p.New()
	if c.Zero {
		rec = p.Zero()
	}
	if err := parseAssignments(rec, c.Set); err != nil {
		return err
	}
	buf, err := packRecord(p, rec)
	if err != nil {
		return err
	}
	if c.Out != "" {
		return writeOutput(ctx.Stdout, c.Out, buf)
	}
	fmt.Fprintln(ctx.Stdout, hex.EncodeToString(buf))
	return nil
}

// UnpackCmd unpacks and prints a buffer.
type UnpackCmd struct {
	Schema string `arg:"" help:"Schema file" type:"existingfile"`
	Struct string `arg:"" help:"Struct name"`
	Hex    string `arg:"" optional:"" help:"Buffer as hex. Read from --in when empty."`
	In     string `help:"Read raw bytes from a file." type:"existingfile"`
	Strict bool   `help:"Also report fixed-value fields that read back differently."`
	Indent int    `default:"0" help:"Indent of the printed record."`
}

func (c *UnpackCmd) Run(ctx *kong.Context, g *Globals) error {
	p, err := g.program(c.Schema, c.Struct, transcoder.Options{StrictExact: c.Strict})
	if err != nil {
		return err
	}

	var buf []byte
	switch {
	case c.In != "":
		if buf, err = os.ReadFile(c.In); err != nil {
			return err
		}
	case c.Hex != "":
		if buf, err = parseHex(c.Hex); err != nil {
			return err
		}
	default:
		return errors.InvalidInput(errors.PhaseUnpack, "no buffer given")
	}

	sink := bitpack.Tee(bitpack.WriterSink(ctx.Stderr), bitpack.LoggerSink(g.Log()))
	rec, err := unpackRecord(p, buf, sink)
	if err != nil {
		return err
	}
	return p.Print(ctx.Stdout, rec, c.Indent)
}

// InspectCmd starts the interactive decoder.
type InspectCmd struct {
	Schema string `arg:"" help:"Schema file" type:"existingfile"`
	Struct string `arg:"" help:"Struct name"`
	Hex    string `arg:"" optional:"" help:"Initial buffer as hex."`
	Strict bool   `help:"Also report fixed-value fields that read back differently."`
}

func (c *InspectCmd) Run(g *Globals) error {
	p, err := g.program(c.Schema, c.Struct, transcoder.Options{StrictExact: c.Strict})
	if err != nil {
		return err
	}
	return runInspector(p, c.Hex)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "bitpack %s\n", version)
	return nil
}

// render returns the printed form of rec.
func render(p *transcoder.Program, rec *transcoder.Record) string {
	var b bytes.Buffer
	if err := p.Print(&b, rec, 0); err != nil {
		return err.Error()
	}
	return b.String()
}
