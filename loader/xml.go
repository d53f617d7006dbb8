package loader

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

var (
	fieldExpr = xpath.MustCompile("field")
	valueExpr = xpath.MustCompile("value")
)

func readXML(r io.Reader) (*Declarations, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.ParseFailed("xml", err)
	}

	d := &Declarations{}
	var errs errors.List
	walkXML(doc, d, &errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// walkXML visits elements in document order. Enums and structs may sit at any
// depth below the root element.
func walkXML(n *xmlquery.Node, d *Declarations, errs *errors.List) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "enum":
			e, err := xmlEnum(child)
			errs.Add(err)
			if err == nil {
				d.Enums = append(d.Enums, e)
			}
		case "struct":
			s, err := xmlStruct(child)
			errs.Add(err)
			if err == nil {
				d.Structs = append(d.Structs, s)
			}
		default:
			walkXML(child, d, errs)
		}
	}
}

func xmlEnum(n *xmlquery.Node) (schema.EnumDecl, error) {
	name, err := required(n, "name")
	if err != nil {
		return schema.EnumDecl{}, err
	}
	values, err := xmlValues(n, name)
	return schema.EnumDecl{
		Name:   name,
		Prefix: n.SelectAttr("prefix"),
		Values: values,
	}, err
}

func xmlStruct(n *xmlquery.Node) (schema.StructDecl, error) {
	name, err := required(n, "name")
	if err != nil {
		return schema.StructDecl{}, err
	}
	d := schema.StructDecl{
		Name:            name,
		Size:            n.SelectAttr("size"),
		Align:           n.SelectAttr("align"),
		NoDirectPacking: flag(n, "no-direct-packing"),
	}

	var errs errors.List
	for _, fn := range xmlquery.QuerySelectorAll(n, fieldExpr) {
		f, err := xmlField(fn, name)
		if err != nil {
			errs.Add(err)
			continue
		}
		d.Fields = append(d.Fields, f)
	}
	return d, errs.Err()
}

func xmlField(n *xmlquery.Node, structName string) (schema.FieldDecl, error) {
	var errs errors.List
	get := func(attr string) string {
		v, err := required(n, attr)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Struct = structName
				if label := n.SelectAttr("name"); label != "" {
					e.Path = []string{label}
				}
			}
			errs.Add(err)
		}
		return v
	}

	d := schema.FieldDecl{
		Name:     get("name"),
		Start:    get("start"),
		Size:     get("size"),
		Type:     get("type"),
		Exact:    n.SelectAttr("exact"),
		Default:  n.SelectAttr("default"),
		Modifier: n.SelectAttr("modifier"),
		Prefix:   n.SelectAttr("prefix"),
	}
	values, err := xmlValues(n, structName+"."+d.Name)
	errs.Add(err)
	d.Values = values
	return d, errs.Err()
}

func xmlValues(n *xmlquery.Node, owner string) ([]schema.ValueDecl, error) {
	var errs errors.List
	var out []schema.ValueDecl
	for _, vn := range xmlquery.QuerySelectorAll(n, valueExpr) {
		name, err := required(vn, "name")
		if err != nil {
			errs.Add(err)
			continue
		}
		value, err := required(vn, "value")
		if err != nil {
			errs.Add(errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Path(owner, name).
				Detail("value element without a value attribute").
				Build())
			continue
		}
		out = append(out, schema.ValueDecl{Name: name, Value: value})
	}
	return out, errs.Err()
}

func hasAttr(n *xmlquery.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func required(n *xmlquery.Node, name string) (string, error) {
	if !hasAttr(n, name) {
		return "", errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("<%s> is missing the %q attribute", n.Data, name).
			Build()
	}
	return n.SelectAttr(name), nil
}

// flag reports a boolean attribute. Presence alone sets it unless the value
// is "false" or "0".
func flag(n *xmlquery.Node, name string) bool {
	if !hasAttr(n, name) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(n.SelectAttr(name))) {
	case "false", "0", "no":
		return false
	}
	return true
}
