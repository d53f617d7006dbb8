package loader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// Format selects a front end
type Format uint8

const (
	FormatAuto Format = iota
	FormatXML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, errors.Unsupported(errors.PhaseLoad, "format "+name)
}

// FormatOf guesses the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	}
	return FormatAuto
}

// Options control loading.
type Options struct {
	// Name of the schema. Defaults to the file name without extension, or
	// to the YAML document's name field.
	Name   string
	Format Format
}

// Declarations is the front-end output before schema validation.
type Declarations struct {
	Name    string
	Enums   []schema.EnumDecl
	Structs []schema.StructDecl
}

// Builder returns a schema builder holding every declaration.
func (d *Declarations) Builder() *schema.Builder {
	b := schema.NewBuilder(d.Name)
	for _, e := range d.Enums {
		b.AddEnum(e)
	}
	for _, s := range d.Structs {
		b.AddStruct(s)
	}
	return b
}

// Read parses declarations from r.
func Read(r io.Reader, opts Options) (*Declarations, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Load("read failed", err)
	}

	format := opts.Format
	if format == FormatAuto {
		format = sniff(data)
	}

	var decls *Declarations
	switch format {
	case FormatXML:
		decls, err = readXML(bytes.NewReader(data))
	case FormatYAML:
		decls, err = readYAML(data)
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "format "+format.String())
	}
	if err != nil {
		return nil, err
	}
	if opts.Name != "" {
		decls.Name = opts.Name
	}

	Logger().Debug("read declarations",
		zap.Stringer("format", format),
		zap.String("schema", decls.Name),
		zap.Int("enums", len(decls.Enums)),
		zap.Int("structs", len(decls.Structs)))
	return decls, nil
}

// Load parses and validates a schema from r.
func Load(r io.Reader, opts Options) (*schema.Schema, error) {
	decls, err := Read(r, opts)
	if err != nil {
		return nil, err
	}
	return decls.Builder().Build()
}

// LoadFile loads the schema in path. The format follows the extension unless
// opts.Format is set.
func LoadFile(path string, opts Options) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("cannot open "+path, err)
	}
	defer f.Close()

	if opts.Format == FormatAuto {
		opts.Format = FormatOf(path)
	}

	Logger().Info("loading schema", zap.String("path", path), zap.Stringer("format", opts.Format))
	decls, err := Read(f, opts)
	if err != nil {
		return nil, err
	}
	if decls.Name == "" {
		base := filepath.Base(path)
		decls.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return decls.Builder().Build()
}

// sniff treats input starting with '<' as XML and anything else as YAML.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatYAML
}
