package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type valueState uint8

const (
	valueAbsent valueState = iota
	valueNull
	valuePresent
)

// Value is an optional scalar as produced by a parser. The zero Value is
// absent. A present value holds the canonical JSON encoding of a string,
// number or bool; numbers keep their literal text so "1.50" and "1.5" differ.
type Value struct {
	state valueState
	raw   []byte
}

// Null returns an explicit null value.
func Null() Value { return Value{state: valueNull} }

// String returns a present string value.
func String(s string) Value {
	b, _ := json.Marshal(s)
	return Value{state: valuePresent, raw: b}
}

// Bool returns a present boolean value.
func Bool(b bool) Value {
	return Value{state: valuePresent, raw: []byte(strconv.FormatBool(b))}
}

// Number returns a present numeric value from its literal text.
func Number(text string) (Value, error) {
	text = strings.TrimSpace(text)
	if !json.Valid([]byte(text)) || !isNumberLiteral(text) {
		return Value{}, fmt.Errorf("invalid number literal %q", text)
	}
	return Value{state: valuePresent, raw: []byte(text)}, nil
}

func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// Absent reports whether the value was never set.
func (v Value) Absent() bool { return v.state == valueAbsent }

// IsNull reports whether the value is an explicit null.
func (v Value) IsNull() bool { return v.state == valueNull }

// Present reports whether the value carries a scalar. Null is not present.
func (v Value) Present() bool { return v.state == valuePresent }

// IsZero reports absence; it lets encoding/json omit absent fields.
func (v Value) IsZero() bool { return v.state == valueAbsent }

// Blank reports whether v is a present string whose trimmed text is empty.
func (v Value) Blank() bool {
	if !v.Present() || len(v.raw) == 0 || v.raw[0] != '"' {
		return false
	}
	return strings.TrimSpace(v.Text()) == ""
}

// Real reports whether v is present and not blank.
func (v Value) Real() bool { return v.Present() && !v.Blank() }

// Equal compares two present values by their canonical encoding.
// It is false when either side is not present.
func (v Value) Equal(o Value) bool {
	return v.Present() && o.Present() && bytes.Equal(v.raw, o.raw)
}

// Identical reports whether v and o have the same state and encoding.
func (v Value) Identical(o Value) bool {
	return v.state == o.state && bytes.Equal(v.raw, o.raw)
}

// Text returns the display form: strings unquoted, other scalars verbatim,
// and the empty string for null or absent values.
func (v Value) Text() string {
	if !v.Present() {
		return ""
	}
	if len(v.raw) > 0 && v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// GoString is used by %#v in test failures.
func (v Value) GoString() string {
	switch v.state {
	case valueAbsent:
		return "<absent>"
	case valueNull:
		return "null"
	}
	return string(v.raw)
}

// MarshalJSON writes null for null (and absent) values and the canonical
// scalar otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON accepts null or a scalar.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = Null()
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	switch t := x.(type) {
	case string:
		*v = String(t)
	case json.Number:
		*v = Value{state: valuePresent, raw: []byte(t.String())}
	case bool:
		*v = Bool(t)
	default:
		return fmt.Errorf("%w: got %s", ErrNotScalar, b)
	}
	return nil
}

// UnmarshalYAML decodes a scalar node by its resolved tag.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d", ErrNotScalar, node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*v = Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!int", "!!float":
		n, err := Number(node.Value)
		if err != nil {
			// YAML-only spellings (0x1F, .inf, 1_000) are kept as text.
			*v = String(node.Value)
			return nil
		}
		*v = n
	default:
		*v = String(node.Value)
	}
	return nil
}

// setNull lets generic decoders mark an explicit null.
func (v *Value) setNull() { *v = Null() }
