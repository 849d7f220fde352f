package fieldpath

import (
	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/piperrors"
)

// Get resolves the path against root and returns the addressed element.
//
// A Key segment requires the current element to be a mapping with the key
// present; an Index segment requires an array with the index in bounds. An
// intermediate element of the wrong variant yields a TypeMismatchError,
// a missing key a NotFoundError, and an out-of-bounds index an IndexError.
func (p Path) Get(root document.Element) (document.Element, error) {
	current := root
	for i, seg := range p.segments {
		next, err := p.step(current, seg, i)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// GetAs resolves the path and converts the final element with conv,
// typically one of the document.As* accessors:
//
//	name, err := fieldpath.GetAs(doc, path, document.AsString)
func GetAs[T any](root document.Element, p Path, conv func(document.Element) (T, error)) (T, error) {
	el, err := p.Get(root)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := conv(el)
	if err != nil {
		var zero T
		if tm, ok := err.(*piperrors.TypeMismatchError); ok && tm.Path == "" {
			tm.Path = p.String()
		}
		return zero, err
	}
	return v, nil
}

// step resolves a single segment at position i of the walk.
func (p Path) step(current document.Element, seg Segment, i int) (document.Element, error) {
	switch s := seg.(type) {
	case Key:
		m, ok := current.(*document.Mapping)
		if !ok {
			return nil, &piperrors.TypeMismatchError{
				Path:     p.prefix(i + 1),
				Expected: document.KindMapping.String(),
				Actual:   current.Kind().String(),
			}
		}
		el, ok := m.Get(string(s))
		if !ok {
			return nil, &piperrors.NotFoundError{Path: p.prefix(i + 1)}
		}
		return el, nil

	case Index:
		a, ok := current.(*document.Array)
		if !ok {
			return nil, &piperrors.TypeMismatchError{
				Path:     p.prefix(i + 1),
				Expected: document.KindArray.String(),
				Actual:   current.Kind().String(),
			}
		}
		el, ok := a.At(int(s))
		if !ok {
			return nil, &piperrors.IndexError{
				Path:   p.prefix(i + 1),
				Index:  int(s),
				Length: a.Len(),
			}
		}
		return el, nil

	default:
		return nil, &piperrors.NotFoundError{Path: p.prefix(i + 1)}
	}
}

// Set assigns value at the path, overwriting any existing leaf. Walking
// behaves like Get except that an intermediate Key segment whose key does
// not exist auto-creates an empty mapping when the following segment is a
// Key. Arrays are never auto-created or grown: an Index segment into a
// missing or too-short array fails.
func (p Path) Set(root document.Element, value document.Element) error {
	current := root
	last := len(p.segments) - 1

	for i, seg := range p.segments[:last] {
		key, isKey := seg.(Key)
		if !isKey {
			next, err := p.step(current, seg, i)
			if err != nil {
				return err
			}
			current = next
			continue
		}

		m, ok := current.(*document.Mapping)
		if !ok {
			return &piperrors.TypeMismatchError{
				Path:     p.prefix(i + 1),
				Expected: document.KindMapping.String(),
				Actual:   current.Kind().String(),
			}
		}
		next, ok := m.Get(string(key))
		if !ok {
			if _, followsKey := p.segments[i+1].(Key); !followsKey {
				// The next segment indexes an array that does not exist.
				return &piperrors.NotFoundError{Path: p.prefix(i + 1)}
			}
			created := document.NewMapping()
			m.Set(string(key), created)
			current = created
			continue
		}
		current = next
	}

	switch s := p.segments[last].(type) {
	case Key:
		m, ok := current.(*document.Mapping)
		if !ok {
			return &piperrors.TypeMismatchError{
				Path:     p.String(),
				Expected: document.KindMapping.String(),
				Actual:   current.Kind().String(),
			}
		}
		m.Set(string(s), value)
		return nil

	case Index:
		a, ok := current.(*document.Array)
		if !ok {
			return &piperrors.TypeMismatchError{
				Path:     p.String(),
				Expected: document.KindArray.String(),
				Actual:   current.Kind().String(),
			}
		}
		if !a.SetAt(int(s), value) {
			return &piperrors.IndexError{Path: p.String(), Index: int(s), Length: a.Len()}
		}
		return nil

	default:
		return &piperrors.NotFoundError{Path: p.String()}
	}
}

// Remove deletes the element at the path: a final Key segment removes the
// mapping entry, a final Index segment removes the array element and
// shifts subsequent elements down. Removing a non-existent leaf yields a
// NotFoundError; callers honoring ignore_missing discard it.
func (p Path) Remove(root document.Element) error {
	current := root
	last := len(p.segments) - 1

	for i, seg := range p.segments[:last] {
		next, err := p.step(current, seg, i)
		if err != nil {
			return err
		}
		current = next
	}

	switch s := p.segments[last].(type) {
	case Key:
		m, ok := current.(*document.Mapping)
		if !ok {
			return &piperrors.TypeMismatchError{
				Path:     p.String(),
				Expected: document.KindMapping.String(),
				Actual:   current.Kind().String(),
			}
		}
		if !m.Delete(string(s)) {
			return &piperrors.NotFoundError{Path: p.String()}
		}
		return nil

	case Index:
		a, ok := current.(*document.Array)
		if !ok {
			return &piperrors.TypeMismatchError{
				Path:     p.String(),
				Expected: document.KindArray.String(),
				Actual:   current.Kind().String(),
			}
		}
		if !a.RemoveAt(int(s)) {
			return &piperrors.IndexError{Path: p.String(), Index: int(s), Length: a.Len()}
		}
		return nil

	default:
		return &piperrors.NotFoundError{Path: p.String()}
	}
}

// Exists reports whether the path currently resolves in root.
func (p Path) Exists(root document.Element) bool {
	_, err := p.Get(root)
	return err == nil
}
