package pipeline

import (
	"context"
	"fmt"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
)

// Condition is a boolean predicate gating whether a processor step runs.
// Evaluate must not mutate the document. The engine treats an evaluation
// error as the condition being false: a step whose condition cannot be
// resolved is skipped, never failed.
type Condition interface {
	Evaluate(ctx context.Context, doc document.Document) (bool, error)
}

// ConditionFunc adapts a plain function to the Condition interface.
type ConditionFunc func(ctx context.Context, doc document.Document) (bool, error)

// Evaluate implements Condition.
func (f ConditionFunc) Evaluate(ctx context.Context, doc document.Document) (bool, error) {
	return f(ctx, doc)
}

// FieldExists is a Condition that is true when the given path resolves in
// the document.
type FieldExists struct {
	Field fieldpath.Path
}

// Evaluate implements Condition.
func (c FieldExists) Evaluate(_ context.Context, doc document.Document) (bool, error) {
	return c.Field.Exists(doc), nil
}

// ScriptEngine evaluates an opaque predicate expression against a
// document. The expression grammar is the engine's concern; the pipeline
// machinery only consumes the boolean outcome.
type ScriptEngine interface {
	EvaluateScript(ctx context.Context, source string, doc document.Document) (bool, error)
}

// ScriptCondition wraps a predicate expression in an external scripting
// language, such as the `if` option of an ingest pipeline's processors.
// It delegates to a pluggable [ScriptEngine]; with no engine configured,
// every evaluation fails, which the pipeline engine treats as false.
type ScriptCondition struct {
	// Source is the predicate expression, kept verbatim.
	Source string
	// Engine evaluates Source. Optional.
	Engine ScriptEngine
}

// Evaluate implements Condition.
func (c *ScriptCondition) Evaluate(ctx context.Context, doc document.Document) (bool, error) {
	if c.Engine == nil {
		return false, fmt.Errorf("no script engine configured for condition %q", c.Source)
	}
	return c.Engine.EvaluateScript(ctx, c.Source, doc)
}
