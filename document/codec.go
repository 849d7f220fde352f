package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/pipetools/piperrors"
)

// FromJSON decodes a JSON document into a Document, preserving the key
// order of every object. JSON is decoded through the YAML parser (JSON is
// a YAML subset), which keeps ordering information that encoding/json's
// map decoding would lose.
func FromJSON(data []byte) (Document, error) {
	return FromYAML(data)
}

// FromYAML decodes a YAML (or JSON) document into a Document, preserving
// mapping key order. The top-level value must be a mapping.
func FromYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &piperrors.SyntaxError{Message: err.Error()}
	}
	node := &root
	if node.Kind == 0 {
		// Empty input leaves the node unset and decodes as an empty
		// document.
		return NewMapping(), nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewMapping(), nil
		}
		node = node.Content[0]
	}
	el, err := elementFromNode(node)
	if err != nil {
		return nil, err
	}
	m, ok := el.(*Mapping)
	if !ok {
		return nil, &piperrors.TypeMismatchError{
			Expected: KindMapping.String(),
			Actual:   el.Kind().String(),
		}
	}
	return m, nil
}

// FromNode builds an Element from an already-decoded YAML node, preserving
// mapping key order. Alias nodes are followed; document nodes are unwrapped.
func FromNode(node *yaml.Node) (Element, error) {
	if node.Kind == 0 {
		return Null{}, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		node = node.Content[0]
	}
	return elementFromNode(node)
}

func elementFromNode(node *yaml.Node) (Element, error) {
	switch node.Kind {
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			val, err := elementFromNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, val)
		}
		return m, nil

	case yaml.SequenceNode:
		a := NewArray()
		for _, item := range node.Content {
			el, err := elementFromNode(item)
			if err != nil {
				return nil, err
			}
			a.Append(el)
		}
		return a, nil

	case yaml.ScalarNode:
		return scalarFromNode(node)

	case yaml.AliasNode:
		return elementFromNode(node.Alias)

	default:
		return nil, &piperrors.SyntaxError{
			Line:    node.Line,
			Column:  node.Column,
			Message: fmt.Sprintf("unsupported node kind %d", node.Kind),
		}
	}
}

func scalarFromNode(node *yaml.Node) (Element, error) {
	switch node.Tag {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, scalarError(node, err)
		}
		return Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, scalarError(node, err)
		}
		return Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, scalarError(node, err)
		}
		return Float(f), nil
	case "!!binary":
		raw, err := base64.StdEncoding.DecodeString(node.Value)
		if err != nil {
			return nil, scalarError(node, err)
		}
		return Bytes(raw), nil
	default:
		// Strings, timestamps and unknown scalar tags stay textual.
		return String(node.Value), nil
	}
}

func scalarError(node *yaml.Node, cause error) error {
	return &piperrors.SyntaxError{
		Input:   node.Value,
		Line:    node.Line,
		Column:  node.Column,
		Message: cause.Error(),
	}
}

// ValueFromJSON decodes a single JSON value of any kind into an Element,
// preserving object key order. Unlike [FromJSON] the top-level value need
// not be an object.
func ValueFromJSON(data []byte) (Element, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &piperrors.SyntaxError{Message: err.Error()}
	}
	node := &root
	if node.Kind == 0 {
		return Null{}, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		node = node.Content[0]
	}
	return elementFromNode(node)
}

// FromValue builds an Element from a plain Go value, as produced by
// encoding/json or yaml decoding into any. Mapping key order follows Go
// map iteration and is therefore unspecified; use [FromJSON] or [FromYAML]
// when serialization stability matters.
//
// Supported inputs: nil, bool, int, int64, uint64, float64, json.Number,
// string, []byte, []any, map[string]any, and Element values (passed
// through unchanged).
func FromValue(v any) (Element, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Element:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case string:
		return String(val), nil
	case []byte:
		return Bytes(val).Clone(), nil
	case []any:
		a := NewArray()
		for _, item := range val {
			el, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			a.Append(el)
		}
		return a, nil
	case map[string]any:
		m := NewMapping()
		for key, item := range val {
			el, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			m.Set(key, el)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("cannot build element from %T", v)
	}
}

// ToValue converts an Element back to a plain Go value: Null to nil, Array
// to []any, Mapping to map[string]any (key order lost), scalars to their
// underlying Go types.
func ToValue(el Element) any {
	switch e := el.(type) {
	case Null:
		return nil
	case Bool:
		return bool(e)
	case Int:
		return int64(e)
	case Float:
		return float64(e)
	case String:
		return string(e)
	case Bytes:
		return []byte(e)
	case *Array:
		out := make([]any, 0, e.Len())
		for _, item := range e.Items() {
			out = append(out, ToValue(item))
		}
		return out
	case *Mapping:
		out := make(map[string]any, e.Len())
		for _, key := range e.keys {
			out[key] = ToValue(e.values[key])
		}
		return out
	default:
		return nil
	}
}

// ToJSON serializes the document with every mapping emitting its keys in
// insertion order.
func ToJSON(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON implements json.Marshaler.
func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// MarshalJSON implements json.Marshaler.
func (i Int) MarshalJSON() ([]byte, error) { return json.Marshal(int64(i)) }

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) { return json.Marshal(float64(f)) }

// MarshalJSON implements json.Marshaler.
func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

// MarshalJSON implements json.Marshaler. Bytes serialize as standard
// base64, matching encoding/json's []byte convention.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) {
	if a == nil || len(a.items) == 0 {
		return []byte("[]"), nil
	}
	out := []byte{'['}
	for i, el := range a.items {
		if i > 0 {
			out = append(out, ',')
		}
		item, err := json.Marshal(el)
		if err != nil {
			return nil, err
		}
		out = append(out, item...)
	}
	return append(out, ']'), nil
}

// MarshalJSON implements json.Marshaler. Keys are emitted in insertion
// order for stable serialization.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.keys) == 0 {
		return []byte("{}"), nil
	}
	out := []byte{'{'}
	for i, key := range m.keys {
		if i > 0 {
			out = append(out, ',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		out = append(out, k...)
		out = append(out, ':')
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return append(out, '}'), nil
}
