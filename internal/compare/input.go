package compare

import "gopkg.in/yaml.v3"

// Document is one side of a comparison as handed over by a format-specific
// parser. For tabular kinds Columns is the header row and each Row is one
// data row. For tree kinds Columns is the optional canonical path order and
// Rows hold path-keyed nodes (usually a single row).
type Document struct {
	Columns []Key `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows    []Row `json:"rows" yaml:"rows"`
}

// Empty reports whether the document carries no keys at all, which is how a
// partial or still-loading upload looks.
func (d Document) Empty() bool {
	if len(d.Columns) > 0 {
		return false
	}
	for _, r := range d.Rows {
		if r.Len() > 0 {
			return false
		}
	}
	return true
}

// PairedCell is a cell whose two sides were already lined up by the parser.
// Status is optional and only honoured for tree kinds.
type PairedCell struct {
	Source Value  `json:"sourceValue,omitzero" yaml:"sourceValue"`
	Target Value  `json:"targetValue,omitzero" yaml:"targetValue"`
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// UnmarshalYAML keeps an explicit null side (`sourceValue: ~`) as null.
// yaml.v3 skips unmarshalers for null nodes, so those fields are marked here.
func (c *PairedCell) UnmarshalYAML(node *yaml.Node) error {
	type plain PairedCell
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i+1].ShortTag() != "!!null" {
				continue
			}
			switch node.Content[i].Value {
			case "sourceValue":
				p.Source.setNull()
			case "targetValue":
				p.Target.setNull()
			}
		}
	}
	*c = PairedCell(p)
	return nil
}

// PairedRow is one row of a pre-paired payload.
type PairedRow struct {
	Cells Ordered[PairedCell] `json:"cells" yaml:"cells"`
}

// Payload is the pre-paired comparison input: tabular payloads carry
// Headers, tree payloads carry Columns as the canonical path order. Summary
// is whatever the producer computed; the engine never trusts it.
type Payload struct {
	Kind    Kind        `json:"fileType" yaml:"fileType"`
	Headers []Key       `json:"headers,omitempty" yaml:"headers,omitempty"`
	Columns []Key       `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows    []PairedRow `json:"rows" yaml:"rows"`
	Summary *Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// order returns the key order the payload declares for its shape.
func (p Payload) order() []Key {
	if p.Kind.Shape() == ShapeTree {
		return p.Columns
	}
	if len(p.Headers) > 0 {
		return p.Headers
	}
	return p.Columns
}
