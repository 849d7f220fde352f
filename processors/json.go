package processors

import (
	"context"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/pipeline"
	"github.com/erraggy/pipetools/piperrors"
)

// JSON parses the string at Field as a JSON value. The parsed value is
// written to TargetField (the source field by default) unless AddToRoot is
// set, in which case it must decode to a mapping whose entries are merged
// into the document root.
type JSON struct {
	pipeline.Options

	Field       fieldpath.Path
	TargetField fieldpath.Path
	AddToRoot   bool
}

// ProcessorType implements pipeline.Typer.
func (*JSON) ProcessorType() string { return "json" }

// Apply implements pipeline.Processor.
func (p *JSON) Apply(_ context.Context, doc document.Document) error {
	el, err := p.Field.Get(doc)
	if err != nil {
		return err
	}
	raw, err := document.AsString(el)
	if err != nil {
		return err
	}
	parsed, err := document.ValueFromJSON([]byte(raw))
	if err != nil {
		return &piperrors.ProcessingError{Type: "json", Tag: p.Tag, Message: "invalid JSON", Cause: err}
	}
	if p.AddToRoot {
		m, ok := parsed.(*document.Mapping)
		if !ok {
			return &piperrors.ProcessingError{
				Type:    "json",
				Tag:     p.Tag,
				Message: "cannot add to root: parsed value is " + parsed.Kind().String() + ", not a mapping",
			}
		}
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			doc.Set(k, v)
		}
		return nil
	}
	target := p.TargetField
	if target.IsZero() {
		target = p.Field
	}
	return target.Set(doc, parsed)
}
