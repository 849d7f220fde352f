// Package pipeline implements the processor execution engine.
//
// A [Pipeline] is an ordered sequence of [Processor] steps applied to a
// single document. Order is load-bearing: a later processor may depend on a
// field a prior one just set, so steps run strictly sequentially and never
// concurrently within one run. Separate documents may be processed by
// separate runs concurrently, because each document is exclusively owned by
// its run.
//
// Every processor carries a recovery policy in its [Options]: an optional
// [Condition] gating whether the step runs at all, an IgnoreFailure flag
// that discards the step's failure, and an optional OnFailure pipeline run
// in place of normal failure propagation. Processors themselves must not
// implement recovery inside Apply; the engine is the single place where
// failures are intercepted and routed.
//
// A failed run leaves the document in its last-mutated state. There is no
// rollback; callers needing atomicity clone the document first and discard
// the clone on failure.
package pipeline

import (
	"context"
	"errors"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/piperrors"
)

// Processor is a single transformation step. Apply mutates the document in
// place and reports failure through its error; it must not swallow or
// reroute its own failures, that is the engine's job.
//
// Apply receives the caller's context so cancellation and deadlines reach
// processors performing external work (lookups, enrichment). The engine
// propagates the context but never injects cancellation of its own.
type Processor interface {
	Apply(ctx context.Context, doc document.Document) error

	// ProcessorOptions returns the processor's execution options.
	// Implementations typically embed [Options], which provides this
	// method. The method name deliberately differs from the Options type
	// so the embedded field does not shadow it.
	ProcessorOptions() *Options
}

// Typer is implemented by processors that expose their kind for
// diagnostics, e.g. "json" or "convert".
type Typer interface {
	ProcessorType() string
}

// Options holds the execution policy shared by every processor. Embed it
// in a processor struct to satisfy the ProcessorOptions method of
// [Processor].
type Options struct {
	// Description is an optional human-readable description.
	Description string
	// Tag identifies the processor instance in failures and logs.
	Tag string
	// Condition gates execution; nil means the processor always runs.
	Condition Condition
	// IgnoreFailure discards a failure of this processor.
	IgnoreFailure bool
	// OnFailure, when set, runs in place of normal failure propagation;
	// its outcome becomes the step's outcome.
	OnFailure *Pipeline
}

// ProcessorOptions implements [Processor].
func (o *Options) ProcessorOptions() *Options { return o }

// Pipeline is an ordered sequence of processors plus an optional
// failure-path pipeline.
type Pipeline struct {
	// Name identifies the pipeline in failures and logs.
	Name string
	// Processors run strictly in order.
	Processors []Processor
	// OnFailure, when set, runs once if any processor's failure propagates,
	// and its outcome becomes the run's outcome.
	OnFailure *Pipeline
	// Logger receives step-level diagnostics. Defaults to NopLogger.
	Logger Logger
}

// Run applies the pipeline to the document in place. The returned error is
// nil on success, [piperrors.ErrDropped] if a processor requested the
// document be discarded, or a [piperrors.PipelineError] wrapping the
// failing processor's error.
func (p *Pipeline) Run(ctx context.Context, doc document.Document) error {
	err := p.run(ctx, doc)
	if err == nil || errors.Is(err, piperrors.ErrDropped) {
		return err
	}
	// Caller cancellation is not a processor failure; propagate it
	// untouched rather than routing it to the failure pipeline.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if p.OnFailure != nil {
		p.logger().Debug("pipeline failed, running failure pipeline",
			"pipeline", p.Name, "error", err)
		return p.OnFailure.Run(ctx, doc)
	}
	return err
}

func (p *Pipeline) run(ctx context.Context, doc document.Document) error {
	log := p.logger()
	for _, proc := range p.Processors {
		if err := ctx.Err(); err != nil {
			return err
		}

		opts := proc.ProcessorOptions()
		if opts.Condition != nil {
			ok, err := opts.Condition.Evaluate(ctx, doc)
			if err != nil {
				// An unresolvable condition means skip, not fail.
				log.Debug("condition evaluation failed, skipping step",
					"pipeline", p.Name, "processor", processorType(proc), "tag", opts.Tag, "error", err)
				continue
			}
			if !ok {
				log.Debug("condition false, skipping step",
					"pipeline", p.Name, "processor", processorType(proc), "tag", opts.Tag)
				continue
			}
		}

		err := proc.Apply(ctx, doc)
		if err == nil {
			continue
		}
		if errors.Is(err, piperrors.ErrDropped) {
			// A drop request is control flow, not a failure; it bypasses
			// IgnoreFailure and OnFailure.
			return err
		}
		if opts.IgnoreFailure {
			log.Debug("processor failure ignored",
				"pipeline", p.Name, "processor", processorType(proc), "tag", opts.Tag, "error", err)
			continue
		}
		if opts.OnFailure != nil {
			log.Debug("processor failed, running step failure pipeline",
				"pipeline", p.Name, "processor", processorType(proc), "tag", opts.Tag, "error", err)
			if ferr := opts.OnFailure.Run(ctx, doc); ferr != nil {
				return ferr
			}
			continue
		}
		log.Error("processor failed",
			"pipeline", p.Name, "processor", processorType(proc), "tag", opts.Tag, "error", err)
		return &piperrors.PipelineError{
			Pipeline: p.Name,
			Type:     processorType(proc),
			Tag:      opts.Tag,
			Cause:    err,
		}
	}
	return nil
}

func (p *Pipeline) logger() Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return NopLogger{}
}

func processorType(p Processor) string {
	if t, ok := p.(Typer); ok {
		return t.ProcessorType()
	}
	return ""
}
