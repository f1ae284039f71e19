package compare

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ordered is a string-keyed map that remembers first-insertion order.
// Decoding from JSON or YAML keeps the document's key order; setting an
// existing key replaces its value in place (last seen wins).
type Ordered[V any] struct {
	keys   []Key
	values map[Key]V
}

// Set stores v under k.
func (o *Ordered[V]) Set(k Key, v V) {
	if o.values == nil {
		o.values = make(map[Key]V)
	}
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

// Get returns the value stored under k.
func (o Ordered[V]) Get(k Key) (V, bool) {
	v, ok := o.values[k]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (o Ordered[V]) Keys() []Key { return o.keys }

// Len returns the number of keys.
func (o Ordered[V]) Len() int { return len(o.keys) }

// MarshalJSON writes the object in insertion order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object token by token so key order survives.
func (o *Ordered[V]) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = Ordered[V]{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	*o = Ordered[V]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		o.Set(Key(name), v)
	}
	_, err = dec.Token()
	return err
}

// UnmarshalYAML reads a mapping node in document order.
func (o *Ordered[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.ShortTag() == "!!null" {
		*o = Ordered[V]{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	*o = Ordered[V]{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		kn, vn := node.Content[i], node.Content[i+1]
		var v V
		if vn.ShortTag() == "!!null" {
			if n, ok := any(&v).(interface{ setNull() }); ok {
				n.setNull()
			}
		} else if err := vn.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", kn.Value, err)
		}
		o.Set(Key(kn.Value), v)
	}
	return nil
}

// Row is one parsed row (tabular) or one group of path-keyed nodes (tree).
type Row = Ordered[Value]

// RowOf builds a Row from alternating key/value pairs.
func RowOf(pairs ...any) Row {
	var r Row
	for i := 0; i+1 < len(pairs); i += 2 {
		var k Key
		switch t := pairs[i].(type) {
		case Key:
			k = t
		case string:
			k = Key(t)
		default:
			panic(fmt.Sprintf("RowOf: key %d has type %T", i, pairs[i]))
		}
		switch t := pairs[i+1].(type) {
		case Value:
			r.Set(k, t)
		case string:
			r.Set(k, String(t))
		case nil:
			r.Set(k, Null())
		default:
			panic(fmt.Sprintf("RowOf: value for %q has type %T", k, pairs[i+1]))
		}
	}
	return r
}
