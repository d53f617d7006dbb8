package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// literal keeps the source text of a scalar so that 0x10, 1:4 and 012 reach
// the schema builder unchanged.
type literal string

func (l *literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("line %d: expected a scalar", node.Line).
			Build()
	}
	*l = literal(node.Value)
	return nil
}

type yamlValue struct {
	Name  string  `yaml:"name"`
	Value literal `yaml:"value"`
}

type yamlEnum struct {
	Name   string      `yaml:"name"`
	Prefix string      `yaml:"prefix,omitempty"`
	Values []yamlValue `yaml:"values"`
}

type yamlField struct {
	Name     string      `yaml:"name"`
	Start    literal     `yaml:"start"`
	Size     literal     `yaml:"size"`
	Type     string      `yaml:"type"`
	Exact    literal     `yaml:"exact,omitempty"`
	Default  literal     `yaml:"default,omitempty"`
	Modifier string      `yaml:"modifier,omitempty"`
	Prefix   string      `yaml:"prefix,omitempty"`
	Values   []yamlValue `yaml:"values,omitempty"`
}

type yamlStruct struct {
	Name            string      `yaml:"name"`
	Size            literal     `yaml:"size,omitempty"`
	Align           literal     `yaml:"align,omitempty"`
	NoDirectPacking bool        `yaml:"no_direct_packing,omitempty"`
	Fields          []yamlField `yaml:"fields"`
}

type yamlDocument struct {
	Name    string       `yaml:"name,omitempty"`
	Enums   []yamlEnum   `yaml:"enums,omitempty"`
	Structs []yamlStruct `yaml:"structs,omitempty"`
}

func readYAML(data []byte) (*Declarations, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseFailed("yaml", err)
	}

	d := &Declarations{Name: doc.Name}
	for _, e := range doc.Enums {
		d.Enums = append(d.Enums, schema.EnumDecl{
			Name:   e.Name,
			Prefix: e.Prefix,
			Values: yamlValues(e.Values),
		})
	}
	for _, s := range doc.Structs {
		sd := schema.StructDecl{
			Name:            s.Name,
			Size:            string(s.Size),
			Align:           string(s.Align),
			NoDirectPacking: s.NoDirectPacking,
		}
		for _, f := range s.Fields {
			sd.Fields = append(sd.Fields, schema.FieldDecl{
				Name:     f.Name,
				Start:    string(f.Start),
				Size:     string(f.Size),
				Type:     f.Type,
				Exact:    string(f.Exact),
				Default:  string(f.Default),
				Modifier: f.Modifier,
				Prefix:   f.Prefix,
				Values:   yamlValues(f.Values),
			})
		}
		d.Structs = append(d.Structs, sd)
	}
	return d, nil
}

func yamlValues(in []yamlValue) []schema.ValueDecl {
	if len(in) == 0 {
		return nil
	}
	out := make([]schema.ValueDecl, len(in))
	for i, v := range in {
		out[i] = schema.ValueDecl{Name: v.Name, Value: string(v.Value)}
	}
	return out
}
