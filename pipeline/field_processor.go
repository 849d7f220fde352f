package pipeline

import (
	"context"
	"errors"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/piperrors"
)

// FieldProcessor is the generic single-field transform. It owns the
// shared mechanics of reading a source field, asserting or coercing it to
// T, delegating to a one-value transform, and writing the result to the
// target field. Processors that fit this shape implement only the
// transform; the surrounding read/assert/write/cleanup behavior is
// implemented once here.
//
// T is the value type the transform operates on; Decode bridges from the
// document's variant model, typically one of the document.As* accessors or
// an explicit coercion.
type FieldProcessor[T any] struct {
	Options

	// Field is the source path to read.
	Field fieldpath.Path
	// TargetField receives the result; the zero path means write back to
	// Field.
	TargetField fieldpath.Path
	// IgnoreMissing makes a missing source field a successful no-op
	// instead of a NotFound failure.
	IgnoreMissing bool
	// RemoveIfSuccessful removes the source field after a successful
	// write to a distinct target field.
	RemoveIfSuccessful bool

	// Decode asserts or coerces the source element to T.
	Decode func(el document.Element) (T, error)
	// Process transforms the decoded value into the result element.
	Process func(ctx context.Context, value T) (document.Element, error)
}

// Target returns the effective target path: TargetField when set,
// otherwise Field.
func (p *FieldProcessor[T]) Target() fieldpath.Path {
	if !p.TargetField.IsZero() {
		return p.TargetField
	}
	return p.Field
}

// Apply implements [Processor].
func (p *FieldProcessor[T]) Apply(ctx context.Context, doc document.Document) error {
	el, err := p.Field.Get(doc)
	if err != nil {
		if p.IgnoreMissing && errors.Is(err, piperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	value, err := p.Decode(el)
	if err != nil {
		var tm *piperrors.TypeMismatchError
		if errors.As(err, &tm) && tm.Path == "" {
			tm.Path = p.Field.String()
		}
		return err
	}

	result, err := p.Process(ctx, value)
	if err != nil {
		return err
	}

	target := p.Target()
	if err := target.Set(doc, result); err != nil {
		return err
	}
	if p.RemoveIfSuccessful && !target.Equal(p.Field) {
		if err := p.Field.Remove(doc); err != nil {
			return err
		}
	}
	return nil
}

// Ensure FieldProcessor satisfies the processor contract at compile time,
// embedded Options field included.
var _ Processor = (*FieldProcessor[string])(nil)
