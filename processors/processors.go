// Package processors provides the built-in processors backing the default
// ingest registry.
//
// Each processor is a single transformation step satisfying
// [pipeline.Processor]. Field-oriented processors build on the generic
// [pipeline.FieldProcessor]; the rest implement Apply directly. All
// processors leave recovery policy to the pipeline engine and report
// failures through their returned error.
package processors

import (
	"context"
	"errors"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/pipeline"
	"github.com/erraggy/pipetools/piperrors"
)

// Set assigns a literal value to a field, auto-creating intermediate
// mappings as needed.
type Set struct {
	pipeline.Options

	// Field is the destination path.
	Field fieldpath.Path
	// Value is the element to assign. It is cloned on every apply so one
	// processor can safely serve many documents.
	Value document.Element
	// Override controls whether an existing field is overwritten.
	Override bool
	// IgnoreEmptyValue skips the assignment when Value is null or an
	// empty string.
	IgnoreEmptyValue bool
}

// ProcessorType implements pipeline.Typer.
func (*Set) ProcessorType() string { return "set" }

// Apply implements pipeline.Processor.
func (p *Set) Apply(_ context.Context, doc document.Document) error {
	if p.IgnoreEmptyValue {
		if p.Value == nil || p.Value.Equal(document.Null{}) || p.Value.Equal(document.String("")) {
			return nil
		}
	}
	if !p.Override && p.Field.Exists(doc) {
		return nil
	}
	return p.Field.Set(doc, p.Value.Clone())
}

// Copy duplicates the value of one field into another, leaving the source
// in place. It backs the "set" discriminator's copy_from option.
type Copy struct {
	pipeline.Options

	// Field is the source path.
	Field fieldpath.Path
	// TargetField is the destination path.
	TargetField fieldpath.Path
	// IgnoreMissing makes a missing source a successful no-op.
	IgnoreMissing bool
	// Override controls whether an existing target is overwritten.
	Override bool
}

// ProcessorType implements pipeline.Typer.
func (*Copy) ProcessorType() string { return "copy" }

// Apply implements pipeline.Processor.
func (p *Copy) Apply(_ context.Context, doc document.Document) error {
	el, err := p.Field.Get(doc)
	if err != nil {
		if p.IgnoreMissing && isNotFound(err) {
			return nil
		}
		return err
	}
	if !p.Override && p.TargetField.Exists(doc) {
		return nil
	}
	return p.TargetField.Set(doc, el.Clone())
}

// Remove deletes a field from the document.
type Remove struct {
	pipeline.Options

	// Field is the path to delete.
	Field fieldpath.Path
	// IgnoreMissing makes removal of a non-existent field a successful
	// no-op.
	IgnoreMissing bool
}

// ProcessorType implements pipeline.Typer.
func (*Remove) ProcessorType() string { return "remove" }

// Apply implements pipeline.Processor.
func (p *Remove) Apply(_ context.Context, doc document.Document) error {
	if err := p.Field.Remove(doc); err != nil {
		if p.IgnoreMissing && isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

// Keep removes every top-level subtree not covered by one of its fields.
// It backs the "remove" discriminator's keep option. Fields address
// mapping keys only; array contents under a kept field are kept whole.
type Keep struct {
	pipeline.Options

	// Fields are the paths to preserve.
	Fields []fieldpath.Path
}

// ProcessorType implements pipeline.Typer.
func (*Keep) ProcessorType() string { return "keep" }

// Apply implements pipeline.Processor.
func (p *Keep) Apply(_ context.Context, doc document.Document) error {
	keep := make([][]fieldpath.Segment, 0, len(p.Fields))
	for _, f := range p.Fields {
		keep = append(keep, f.Segments())
	}
	prune(doc, keep)
	return nil
}

// prune removes mapping entries not on the path of any kept field.
func prune(m *document.Mapping, keep [][]fieldpath.Segment) {
	for _, key := range m.Keys() {
		var tails [][]fieldpath.Segment
		covered := false
		for _, segs := range keep {
			k, ok := segs[0].(fieldpath.Key)
			if !ok || string(k) != key {
				continue
			}
			if len(segs) == 1 {
				// The whole subtree is kept.
				covered = true
				break
			}
			tails = append(tails, segs[1:])
		}
		if covered {
			continue
		}
		if len(tails) == 0 {
			m.Delete(key)
			continue
		}
		el, _ := m.Get(key)
		if child, ok := el.(*document.Mapping); ok {
			prune(child, tails)
		}
	}
}

// Rename moves a field to a new path.
type Rename struct {
	pipeline.Options

	// Field is the current path.
	Field fieldpath.Path
	// TargetField is the new path.
	TargetField fieldpath.Path
	// IgnoreMissing makes a missing source a successful no-op.
	IgnoreMissing bool
	// Override allows overwriting an existing target; without it an
	// occupied target is a failure.
	Override bool
}

// ProcessorType implements pipeline.Typer.
func (*Rename) ProcessorType() string { return "rename" }

// Apply implements pipeline.Processor.
func (p *Rename) Apply(_ context.Context, doc document.Document) error {
	el, err := p.Field.Get(doc)
	if err != nil {
		if p.IgnoreMissing && isNotFound(err) {
			return nil
		}
		return err
	}
	if !p.Override && p.TargetField.Exists(doc) {
		return &piperrors.ProcessingError{
			Type:    "rename",
			Tag:     p.Tag,
			Message: "target field " + p.TargetField.String() + " already exists",
		}
	}
	if err := p.TargetField.Set(doc, el); err != nil {
		return err
	}
	return p.Field.Remove(doc)
}

// Append adds values to an array field. A missing field becomes a new
// array; an existing scalar is first wrapped into a one-element array.
type Append struct {
	pipeline.Options

	// Field is the array path.
	Field fieldpath.Path
	// Values are the elements to add; cloned on every apply.
	Values []document.Element
	// AllowDuplicates, when false, skips values already present.
	AllowDuplicates bool
}

// ProcessorType implements pipeline.Typer.
func (*Append) ProcessorType() string { return "append" }

// Apply implements pipeline.Processor.
func (p *Append) Apply(_ context.Context, doc document.Document) error {
	arr := document.NewArray()
	if el, err := p.Field.Get(doc); err == nil {
		if existing, ok := el.(*document.Array); ok {
			arr = existing
		} else {
			arr.Append(el)
		}
	} else if !isNotFound(err) {
		return err
	}

	for _, v := range p.Values {
		if !p.AllowDuplicates && contains(arr, v) {
			continue
		}
		arr.Append(v.Clone())
	}
	return p.Field.Set(doc, arr)
}

func contains(arr *document.Array, el document.Element) bool {
	for _, item := range arr.Items() {
		if item.Equal(el) {
			return true
		}
	}
	return false
}

// Drop requests the document be discarded. The engine propagates
// [piperrors.ErrDropped] untouched, so neither ignore_failure nor
// on_failure applies.
type Drop struct {
	pipeline.Options
}

// ProcessorType implements pipeline.Typer.
func (*Drop) ProcessorType() string { return "drop" }

// Apply implements pipeline.Processor.
func (*Drop) Apply(_ context.Context, _ document.Document) error {
	return piperrors.ErrDropped
}

// Fail unconditionally raises a processing failure with a configured
// message, typically used inside a conditional or failure path to surface
// a descriptive error.
type Fail struct {
	pipeline.Options

	// Message is the failure text.
	Message string
}

// ProcessorType implements pipeline.Typer.
func (*Fail) ProcessorType() string { return "fail" }

// Apply implements pipeline.Processor.
func (p *Fail) Apply(_ context.Context, _ document.Document) error {
	return &piperrors.ProcessingError{Type: "fail", Tag: p.Tag, Message: p.Message}
}

func isNotFound(err error) bool {
	return errors.Is(err, piperrors.ErrNotFound)
}

// Ensure every built-in satisfies the processor contract at compile time.
var (
	_ pipeline.Processor = (*Set)(nil)
	_ pipeline.Processor = (*Copy)(nil)
	_ pipeline.Processor = (*Remove)(nil)
	_ pipeline.Processor = (*Keep)(nil)
	_ pipeline.Processor = (*Rename)(nil)
	_ pipeline.Processor = (*Append)(nil)
	_ pipeline.Processor = (*Drop)(nil)
	_ pipeline.Processor = (*Fail)(nil)
	_ pipeline.Processor = (*JSON)(nil)
	_ pipeline.Processor = (*ToInteger)(nil)
	_ pipeline.Processor = (*ToFloat)(nil)
	_ pipeline.Processor = (*ToString)(nil)
	_ pipeline.Processor = (*ToBoolean)(nil)
	_ pipeline.Processor = (*ToIP)(nil)
	_ pipeline.Processor = (*Lowercase)(nil)
	_ pipeline.Processor = (*Uppercase)(nil)
)
