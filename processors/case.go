package processors

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/pipeline"
)

// Lowercase lowercases the string at the source field.
type Lowercase struct {
	pipeline.FieldProcessor[string]
}

// NewLowercase builds a Lowercase for the given source field.
func NewLowercase(field fieldpath.Path) *Lowercase {
	p := &Lowercase{}
	p.Field = field
	p.Decode = document.AsString
	caser := cases.Lower(language.Und)
	p.Process = func(_ context.Context, s string) (document.Element, error) {
		return document.String(caser.String(s)), nil
	}
	return p
}

// ProcessorType implements pipeline.Typer.
func (*Lowercase) ProcessorType() string { return "lowercase" }

// Uppercase uppercases the string at the source field.
type Uppercase struct {
	pipeline.FieldProcessor[string]
}

// NewUppercase builds an Uppercase for the given source field.
func NewUppercase(field fieldpath.Path) *Uppercase {
	p := &Uppercase{}
	p.Field = field
	p.Decode = document.AsString
	caser := cases.Upper(language.Und)
	p.Process = func(_ context.Context, s string) (document.Element, error) {
		return document.String(caser.String(s)), nil
	}
	return p
}

// ProcessorType implements pipeline.Typer.
func (*Uppercase) ProcessorType() string { return "uppercase" }
