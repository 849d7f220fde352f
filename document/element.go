// Package document defines the variant value tree that pipelines operate on.
//
// An [Element] is one node of a JSON-like document: a null, boolean, integer,
// float, string, raw byte sequence, array, or mapping. A [Document] is a
// [Mapping] promoted to root status; it exclusively owns its entire subtree
// for the duration of a pipeline run. Callers that want to share a document
// across runs, or keep a pristine copy in case a run fails partway through,
// should [Mapping.Clone] it first.
//
// The model performs no implicit numeric coercion: an [Int] is never equal
// to a [Float], and the typed accessors ([AsInt], [AsFloat], ...) fail with
// a [piperrors.TypeMismatchError] when the stored variant differs. Coercion
// is the caller's responsibility and must be explicit.
package document

import (
	"bytes"

	"github.com/erraggy/pipetools/piperrors"
)

// Kind identifies the concrete variant stored in an Element.
type Kind uint8

const (
	// KindNull is the null element.
	KindNull Kind = iota
	// KindBool is a boolean element.
	KindBool
	// KindInt is a signed 64-bit integer element.
	KindInt
	// KindFloat is an IEEE double element.
	KindFloat
	// KindString is a UTF-8 string element.
	KindString
	// KindBytes is a raw octet sequence element, distinct from String so
	// processors can operate on binary payloads.
	KindBytes
	// KindArray is an ordered sequence of elements.
	KindArray
	// KindMapping is an ordered collection of string-keyed elements.
	KindMapping
)

// String returns the lowercase name of the kind, as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Element is one node of a document tree. The concrete types are closed:
// [Null], [Bool], [Int], [Float], [String], [Bytes], [*Array] and
// [*Mapping]. Trees are always acyclic and finite; no element may contain
// itself transitively.
type Element interface {
	// Kind returns the concrete variant of the element.
	Kind() Kind
	// Equal reports structural equality with another element.
	// Int and Float never compare equal, even for the same numeric value.
	Equal(other Element) bool
	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Element
}

// Document is the root mapping of a document tree being transformed.
// A Document is never shared between concurrent pipeline runs.
type Document = *Mapping

// Null is the null element.
type Null struct{}

// Kind implements Element.
func (Null) Kind() Kind { return KindNull }

// Equal implements Element.
func (Null) Equal(other Element) bool {
	_, ok := other.(Null)
	return ok
}

// Clone implements Element.
func (Null) Clone() Element { return Null{} }

// Bool is a boolean element.
type Bool bool

// Kind implements Element.
func (Bool) Kind() Kind { return KindBool }

// Equal implements Element.
func (b Bool) Equal(other Element) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// Clone implements Element.
func (b Bool) Clone() Element { return b }

// Int is a signed 64-bit integer element.
type Int int64

// Kind implements Element.
func (Int) Kind() Kind { return KindInt }

// Equal implements Element.
func (i Int) Equal(other Element) bool {
	o, ok := other.(Int)
	return ok && i == o
}

// Clone implements Element.
func (i Int) Clone() Element { return i }

// Float is an IEEE double element.
type Float float64

// Kind implements Element.
func (Float) Kind() Kind { return KindFloat }

// Equal implements Element.
func (f Float) Equal(other Element) bool {
	o, ok := other.(Float)
	return ok && f == o
}

// Clone implements Element.
func (f Float) Clone() Element { return f }

// String is a UTF-8 string element.
type String string

// Kind implements Element.
func (String) Kind() Kind { return KindString }

// Equal implements Element.
func (s String) Equal(other Element) bool {
	o, ok := other.(String)
	return ok && s == o
}

// Clone implements Element.
func (s String) Clone() Element { return s }

// Bytes is a raw octet sequence element.
type Bytes []byte

// Kind implements Element.
func (Bytes) Kind() Kind { return KindBytes }

// Equal implements Element.
func (b Bytes) Equal(other Element) bool {
	o, ok := other.(Bytes)
	return ok && bytes.Equal(b, o)
}

// Clone implements Element.
func (b Bytes) Clone() Element {
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

// Array is an ordered sequence of elements. The zero value is an empty
// array ready for use; Array is always handled through a pointer so that
// mutations through a field path are visible to the owning tree.
type Array struct {
	items []Element
}

// NewArray returns an array holding the given elements.
func NewArray(items ...Element) *Array {
	return &Array{items: items}
}

// Kind implements Element.
func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i, or false if i is out of range.
func (a *Array) At(i int) (Element, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// SetAt replaces the element at index i, reporting whether i was in range.
func (a *Array) SetAt(i int, el Element) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	a.items[i] = el
	return true
}

// Append adds elements at the end of the array.
func (a *Array) Append(items ...Element) {
	a.items = append(a.items, items...)
}

// RemoveAt deletes the element at index i, shifting subsequent elements
// down. It reports whether i was in range.
func (a *Array) RemoveAt(i int) bool {
	if i < 0 || i >= len(a.items) {
		return false
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	return true
}

// Items returns the backing slice. Callers must not grow or shrink it;
// use Append and RemoveAt for structural changes.
func (a *Array) Items() []Element { return a.items }

// Equal implements Element.
func (a *Array) Equal(other Element) bool {
	o, ok := other.(*Array)
	if !ok || len(a.items) != len(o.items) {
		return false
	}
	for i, el := range a.items {
		if !el.Equal(o.items[i]) {
			return false
		}
	}
	return true
}

// Clone implements Element.
func (a *Array) Clone() Element {
	items := make([]Element, len(a.items))
	for i, el := range a.items {
		items[i] = el.Clone()
	}
	return &Array{items: items}
}

// Mapping is an ordered collection of string-keyed elements. Keys are
// unique; insertion order is preserved so serialization is stable.
// Mapping is always handled through a pointer.
type Mapping struct {
	keys   []string
	values map[string]Element
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Element)}
}

// Kind implements Element.
func (*Mapping) Kind() Kind { return KindMapping }

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.keys) }

// Get returns the element stored under key, or false if absent.
func (m *Mapping) Get(key string) (Element, bool) {
	el, ok := m.values[key]
	return el, ok
}

// Set stores el under key. An existing key keeps its position in the
// insertion order; a new key is appended at the end.
func (m *Mapping) Set(key string, el Element) {
	if m.values == nil {
		m.values = make(map[string]Element)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = el
}

// Delete removes the entry under key, reporting whether it existed.
func (m *Mapping) Delete(key string) bool {
	if _, exists := m.values[key]; !exists {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Equal implements Element. Two mappings are equal when they hold the same
// key set with structurally equal values; insertion order does not affect
// equality, only serialization.
func (m *Mapping) Equal(other Element) bool {
	o, ok := other.(*Mapping)
	if !ok || len(m.keys) != len(o.keys) {
		return false
	}
	for key, el := range m.values {
		oel, ok := o.values[key]
		if !ok || !el.Equal(oel) {
			return false
		}
	}
	return true
}

// Clone implements Element.
func (m *Mapping) Clone() Element {
	out := &Mapping{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Element, len(m.values)),
	}
	copy(out.keys, m.keys)
	for key, el := range m.values {
		out.values[key] = el.Clone()
	}
	return out
}

// CloneDocument returns a deep copy of the document. It is the convenience
// callers use to keep a pristine copy before a run that may fail partway.
func (m *Mapping) CloneDocument() Document {
	return m.Clone().(*Mapping)
}

func mismatch(expected Kind, el Element) error {
	return &piperrors.TypeMismatchError{
		Expected: expected.String(),
		Actual:   el.Kind().String(),
	}
}

// AsBool returns the element's boolean value, or a TypeMismatchError.
func AsBool(el Element) (bool, error) {
	b, ok := el.(Bool)
	if !ok {
		return false, mismatch(KindBool, el)
	}
	return bool(b), nil
}

// AsInt returns the element's integer value, or a TypeMismatchError.
// A Float is not implicitly truncated; coercion must be explicit.
func AsInt(el Element) (int64, error) {
	i, ok := el.(Int)
	if !ok {
		return 0, mismatch(KindInt, el)
	}
	return int64(i), nil
}

// AsFloat returns the element's float value, or a TypeMismatchError.
// An Int is not implicitly widened; coercion must be explicit.
func AsFloat(el Element) (float64, error) {
	f, ok := el.(Float)
	if !ok {
		return 0, mismatch(KindFloat, el)
	}
	return float64(f), nil
}

// AsString returns the element's string value, or a TypeMismatchError.
func AsString(el Element) (string, error) {
	s, ok := el.(String)
	if !ok {
		return "", mismatch(KindString, el)
	}
	return string(s), nil
}

// AsBytes returns the element's raw bytes, or a TypeMismatchError.
func AsBytes(el Element) ([]byte, error) {
	b, ok := el.(Bytes)
	if !ok {
		return nil, mismatch(KindBytes, el)
	}
	return []byte(b), nil
}

// AsArray returns the element as an array, or a TypeMismatchError.
func AsArray(el Element) (*Array, error) {
	a, ok := el.(*Array)
	if !ok {
		return nil, mismatch(KindArray, el)
	}
	return a, nil
}

// AsMapping returns the element as a mapping, or a TypeMismatchError.
func AsMapping(el Element) (*Mapping, error) {
	m, ok := el.(*Mapping)
	if !ok {
		return nil, mismatch(KindMapping, el)
	}
	return m, nil
}
