package ingest

import (
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/pipetools/pipeline"
)

// Record is one external processor record: a validated option set for a
// single discriminator, convertible into internal processors. Implement it
// by embedding [RecordOptions] in a struct with yaml-tagged option fields
// and registering a [Factory] for its discriminator.
type Record interface {
	// Type returns the record's discriminator.
	Type() string

	// Validate checks cross-field option invariants. Structural checks
	// (unknown options, wrong value shapes) are already rejected during
	// decoding.
	Validate() error

	// Convert builds the internal processors backing this record, in
	// execution order. Most kinds produce exactly one; some expand into
	// several.
	Convert() ([]pipeline.Processor, error)

	common() *RecordOptions
}

// RecordOptions holds the options shared by every record kind.
type RecordOptions struct {
	// Description is free-form documentation carried through unchanged.
	Description string `yaml:"description"`
	// If is a script source gating execution of the produced processors.
	If string `yaml:"if"`
	// IgnoreFailure discards failures of the produced processors.
	IgnoreFailure bool `yaml:"ignore_failure"`
	// OnFailure is the nested failure-path record list, decoded against
	// the same registry by the parser.
	OnFailure []yaml.Node `yaml:"on_failure"`
	// Tag labels the produced processors for diagnostics.
	Tag string `yaml:"tag"`

	// Populated by the parser, not by decoding.
	onFailure []Record
	engine    pipeline.ScriptEngine
}

func (o *RecordOptions) common() *RecordOptions { return o }

// decorate stamps the shared options onto every produced processor,
// converting the nested failure records into a per-step fallback pipeline.
func (o *RecordOptions) decorate(procs ...pipeline.Processor) ([]pipeline.Processor, error) {
	var fallback *pipeline.Pipeline
	if len(o.onFailure) > 0 {
		inner, err := convertRecords(o.onFailure)
		if err != nil {
			return nil, err
		}
		fallback = &pipeline.Pipeline{Processors: inner}
	}

	var cond pipeline.Condition
	if o.If != "" {
		cond = &pipeline.ScriptCondition{Source: o.If, Engine: o.engine}
	}

	for _, proc := range procs {
		opts := proc.ProcessorOptions()
		opts.Description = o.Description
		opts.Tag = o.Tag
		opts.Condition = cond
		opts.IgnoreFailure = o.IgnoreFailure
		opts.OnFailure = fallback
	}
	return procs, nil
}

func convertRecords(records []Record) ([]pipeline.Processor, error) {
	var procs []pipeline.Processor
	for _, rec := range records {
		out, err := rec.Convert()
		if err != nil {
			return nil, err
		}
		procs = append(procs, out...)
	}
	return procs, nil
}

// StringList decodes either a single YAML string or a sequence of strings,
// matching option fields that accept both shapes.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var one string
	if err := unmarshal(&one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := unmarshal(&many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}
