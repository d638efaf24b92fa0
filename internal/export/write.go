package export

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/adapter"
	"github.com/roach88/facet/internal/codegen"
	"github.com/roach88/facet/internal/document/pbdoc"
	"github.com/roach88/facet/internal/document/xmldoc"
	"github.com/roach88/facet/internal/document/yamldoc"
)

// Format names an output document format.
type Format string

const (
	// XML writes one document: a root element named after the table with
	// one row element per entity.
	XML Format = "xml"
	// YAML writes one YAML document per entity.
	YAML Format = "yaml"
	// JSON writes one protobuf Struct JSON object per line.
	JSON Format = "json"
)

// RowElement is the XML element name used for each row.
const RowElement = "row"

// Formats lists the supported formats.
var Formats = []Format{XML, YAML, JSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Newf("unknown document format %q (want xml, yaml or json)", s)
}

// Write renders entities, as returned by Rows, to w.
func (e *Entity) Write(w io.Writer, f Format, entities []any, p *adapter.Provider) error {
	switch f {
	case XML:
		root := xmldoc.New(codegen.Identifier(e.Table.Name))
		for _, ent := range entities {
			if err := e.Mapping.Write(ent, root.AppendChild(RowElement), p); err != nil {
				return err
			}
		}
		return root.Encode(w)
	case YAML:
		for i, ent := range entities {
			doc := yamldoc.New()
			if err := e.Mapping.Write(ent, doc, p); err != nil {
				return err
			}
			out, err := doc.Marshal()
			if err != nil {
				return errors.Wrap(err, "marshal yaml")
			}
			if i > 0 {
				if _, err := io.WriteString(w, "---\n"); err != nil {
					return err
				}
			}
			if _, err := w.Write(out); err != nil {
				return err
			}
		}
		return nil
	case JSON:
		for _, ent := range entities {
			doc := pbdoc.New()
			if err := e.Mapping.Write(ent, doc, p); err != nil {
				return err
			}
			out, err := doc.MarshalJSON()
			if err != nil {
				return errors.Wrap(err, "marshal json")
			}
			if _, err := w.Write(append(out, '\n')); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Newf("unknown document format %q", f)
	}
}
