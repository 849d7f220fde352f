// Package ingest parses, validates, and converts external ingest-pipeline
// descriptions into executable pipelines.
//
// An ingest-pipeline description is a JSON- or YAML-compatible value with
// an ordered "processors" array of single-key records, each mapping a
// discriminator string (the external processor type) to that kind's option
// object, plus an optional "on_failure" array of the same shape for the
// failure path. A bare record array is also accepted.
//
// Discriminators resolve against a [Registry]; the shared [Default]
// registry covers the built-in kinds and can be extended copy-on-derive.
// Validation and parsing aggregate all per-record errors in one pass
// rather than stopping at the first, so a caller sees every problem with
// its record index and discriminator.
//
//	result, err := ingest.Parse(raw)
//	if err != nil {
//	    return err
//	}
//	if !result.Valid() {
//	    return errors.Join(result.Errors...)
//	}
//	pl, err := result.Convert()
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/pipetools/pipeline"
	"github.com/erraggy/pipetools/piperrors"
)

// ValidationResult reports the outcome of validating a pipeline
// description without constructing any processors.
type ValidationResult struct {
	// Description is the pipeline's own description, if the input was a
	// full pipeline object.
	Description string

	// Processors holds the normalized single-key record maps for the
	// main sequence, in input order. Records that failed validation are
	// elided.
	Processors []map[string]any

	// OnFailure holds the normalized failure-path records.
	OnFailure []map[string]any

	// Errors aggregates every per-record problem found, each carrying
	// the originating record index and discriminator.
	Errors []error
}

// Valid reports whether the description passed with no errors.
func (r *ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// Validate checks a pipeline description against the configured registry.
//
// raw may be a []byte or string of JSON/YAML text, or an already-decoded
// value (map[string]any, []any). The returned error covers input-level
// failures only (unreadable text, wrong top-level shape); per-record
// problems are aggregated in the result.
func Validate(raw any, opts ...Option) (*ValidationResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Description: env.description}
	p := &parser{cfg: cfg}
	result.Processors = p.validateRecords(env.processors)
	result.OnFailure = p.validateRecords(env.onFailure)
	result.Errors = p.errs
	return result, nil
}

// ParseResult holds the typed records decoded from a pipeline description.
type ParseResult struct {
	// Name is the pipeline's name or description, if present.
	Name string

	// Records are the typed main-sequence records, in input order.
	// Records that failed validation are elided.
	Records []Record

	// FailureRecords are the typed failure-path records.
	FailureRecords []Record

	// Errors aggregates every per-record problem found.
	Errors []error

	cfg *config
}

// Valid reports whether the description parsed with no errors.
func (r *ParseResult) Valid() bool { return len(r.Errors) == 0 }

// Parse decodes a pipeline description into typed records.
//
// raw accepts the same shapes as [Validate]. Per-record problems are
// aggregated in the result; the returned error covers input-level
// failures only.
func Parse(raw any, opts ...Option) (*ParseResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Name: env.description, cfg: cfg}
	p := &parser{cfg: cfg}
	result.Records = p.parseRecords(env.processors)
	result.FailureRecords = p.parseRecords(env.onFailure)
	result.Errors = p.errs
	return result, nil
}

// Convert builds an executable pipeline from the parsed records,
// concatenating each record's processors in input order and wiring the
// failure-path records into the pipeline's OnFailure.
func (r *ParseResult) Convert() (*pipeline.Pipeline, error) {
	if !r.Valid() {
		return nil, errors.Join(r.Errors...)
	}

	procs, err := convertRecords(r.Records)
	if err != nil {
		return nil, err
	}

	var fallback *pipeline.Pipeline
	if len(r.FailureRecords) > 0 {
		inner, err := convertRecords(r.FailureRecords)
		if err != nil {
			return nil, err
		}
		fallback = &pipeline.Pipeline{Processors: inner, Logger: r.cfg.logger}
	}

	return &pipeline.Pipeline{
		Name:       r.Name,
		Processors: procs,
		OnFailure:  fallback,
		Logger:     r.cfg.logger,
	}, nil
}

// ParsePipeline is the one-call form: parse a description and convert it
// into an executable pipeline, failing on any validation error.
func ParsePipeline(raw any, opts ...Option) (*pipeline.Pipeline, error) {
	result, err := Parse(raw, opts...)
	if err != nil {
		return nil, err
	}
	return result.Convert()
}

// envelope is the decoded top-level shape, before record resolution.
type envelope struct {
	description string
	processors  []yaml.Node
	onFailure   []yaml.Node
}

func decodeEnvelope(raw any) (*envelope, error) {
	node, err := toNode(raw)
	if err != nil {
		return nil, err
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, &piperrors.SyntaxError{Message: "empty pipeline description"}
		}
		node = node.Content[0]
	}

	env := &envelope{}
	switch node.Kind {
	case yaml.SequenceNode:
		// A bare processor array.
		if err := node.Decode(&env.processors); err != nil {
			return nil, &piperrors.SyntaxError{Message: err.Error()}
		}
		return env, nil

	case yaml.MappingNode:
		var doc struct {
			Name        string      `yaml:"name"`
			Description string      `yaml:"description"`
			Processors  []yaml.Node `yaml:"processors"`
			OnFailure   []yaml.Node `yaml:"on_failure"`
		}
		if err := decodeStrict(node, &doc); err != nil {
			return nil, &piperrors.SyntaxError{Message: err.Error()}
		}
		env.description = doc.Description
		if env.description == "" {
			env.description = doc.Name
		}
		env.processors = doc.Processors
		env.onFailure = doc.OnFailure
		return env, nil

	default:
		return nil, &piperrors.SyntaxError{
			Message: "pipeline description must be an object or a processor array",
		}
	}
}

// toNode normalizes the accepted raw input shapes into a YAML node tree.
func toNode(raw any) (*yaml.Node, error) {
	switch v := raw.(type) {
	case *yaml.Node:
		return v, nil
	case []byte:
		return unmarshalNode(v)
	case string:
		return unmarshalNode([]byte(v))
	default:
		// Round-trip decoded values (map[string]any, []any) through the
		// marshaller so the record machinery sees one input shape.
		data, err := yaml.Marshal(raw)
		if err != nil {
			return nil, &piperrors.SyntaxError{Message: err.Error()}
		}
		return unmarshalNode(data)
	}
}

func unmarshalNode(data []byte) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &piperrors.SyntaxError{Message: err.Error()}
	}
	return &node, nil
}

// parser walks record arrays, accumulating every error it finds.
type parser struct {
	cfg  *config
	errs []error
}

// validateRecords checks each record and returns the normalized maps of
// the valid ones.
func (p *parser) validateRecords(nodes []yaml.Node) []map[string]any {
	normalized := make([]map[string]any, 0, len(nodes))
	for i := range nodes {
		rec, disc, optNode := p.parseRecord(i, &nodes[i])
		if rec == nil {
			continue
		}
		var opts map[string]any
		if optNode != nil && optNode.Kind != 0 && optNode.Tag != "!!null" {
			if err := optNode.Decode(&opts); err != nil {
				p.fail(i, disc, "", err)
				continue
			}
		}
		if opts == nil {
			opts = map[string]any{}
		}
		normalized = append(normalized, map[string]any{disc: opts})
	}
	return normalized
}

// parseRecords decodes each record into its typed form.
func (p *parser) parseRecords(nodes []yaml.Node) []Record {
	records := make([]Record, 0, len(nodes))
	for i := range nodes {
		rec, _, _ := p.parseRecord(i, &nodes[i])
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// parseRecord resolves and decodes one single-key record. It returns nil
// after recording an error.
func (p *parser) parseRecord(index int, node *yaml.Node) (Record, string, *yaml.Node) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		p.fail(index, "", "record must be a single-key object", nil)
		return nil, "", nil
	}
	disc := node.Content[0].Value
	optNode := node.Content[1]

	factory, ok := p.cfg.registry.Lookup(disc)
	if !ok {
		p.errs = append(p.errs, &piperrors.UnknownProcessorError{Index: index, Type: disc})
		return nil, "", nil
	}

	rec := factory()
	if optNode.Kind != 0 && optNode.Tag != "!!null" {
		if err := decodeStrict(optNode, rec); err != nil {
			p.fail(index, disc, "", err)
			return nil, "", nil
		}
	}

	base := rec.common()
	base.engine = p.cfg.engine

	// Nested failure-path records resolve against the same registry.
	// Their errors are reported under the enclosing record's index.
	if len(base.OnFailure) > 0 {
		before := len(p.errs)
		nested := p.parseRecords(base.OnFailure)
		if len(p.errs) > before {
			for j := before; j < len(p.errs); j++ {
				p.errs[j] = &piperrors.ValidationError{
					Index: index,
					Type:  disc,
					Field: "on_failure",
					Cause: p.errs[j],
				}
			}
			return nil, "", nil
		}
		base.onFailure = nested
	}

	if err := rec.Validate(); err != nil {
		p.fail(index, disc, "", err)
		return nil, "", nil
	}
	return rec, disc, optNode
}

func (p *parser) fail(index int, disc, msg string, cause error) {
	p.errs = append(p.errs, &piperrors.ValidationError{
		Index:   index,
		Type:    disc,
		Message: msg,
		Cause:   cause,
	})
}

// decodeStrict decodes a node into out, rejecting unknown fields. The
// node is round-tripped through text because strict decoding is a decoder
// setting, not a node operation.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
