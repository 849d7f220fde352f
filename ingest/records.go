package ingest

import (
	"errors"
	"fmt"
	"math"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/pipeline"
	"github.com/erraggy/pipetools/processors"
)

// The built-in record kinds. Unless noted, each produces exactly one
// processor; remove with several fields expands 1:N.

// AppendRecord backs the "append" discriminator.
type AppendRecord struct {
	RecordOptions `yaml:",inline"`

	Field           string `yaml:"field"`
	Value           any    `yaml:"value"`
	AllowDuplicates bool   `yaml:"allow_duplicates"`
}

// Type implements Record.
func (*AppendRecord) Type() string { return "append" }

// Validate implements Record.
func (r *AppendRecord) Validate() error {
	if err := requireField(r.Field); err != nil {
		return err
	}
	if r.Value == nil {
		return errors.New("value is required")
	}
	return nil
}

// Convert implements Record.
func (r *AppendRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}
	el, err := document.FromValue(r.Value)
	if err != nil {
		return nil, err
	}
	values := []document.Element{el}
	if arr, ok := el.(*document.Array); ok {
		values = arr.Items()
	}
	return r.decorate(&processors.Append{
		Field:           field,
		Values:          values,
		AllowDuplicates: r.AllowDuplicates,
	})
}

// ConvertRecord backs the "convert" discriminator. Each target type maps
// to one of the internal typed-conversion processors.
type ConvertRecord struct {
	RecordOptions `yaml:",inline"`

	Field         string `yaml:"field"`
	TargetField   string `yaml:"target_field"`
	TargetType    string `yaml:"type"`
	IgnoreMissing bool   `yaml:"ignore_missing"`
}

// Type implements Record.
func (*ConvertRecord) Type() string { return "convert" }

// Validate implements Record.
func (r *ConvertRecord) Validate() error {
	if err := requireField(r.Field); err != nil {
		return err
	}
	switch r.TargetType {
	case "integer", "long", "float", "double", "string", "boolean", "ip":
		return nil
	case "auto":
		return errors.New(`type "auto" is not supported`)
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown type %q", r.TargetType)
	}
}

// Convert implements Record.
func (r *ConvertRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}

	var proc pipeline.Processor
	switch r.TargetType {
	case "integer":
		proc = processors.NewToInteger(field, math.MinInt32, math.MaxInt32)
	case "long":
		proc = processors.NewToInteger(field, math.MinInt64, math.MaxInt64)
	case "float":
		proc = processors.NewToFloat(field, "float")
	case "double":
		proc = processors.NewToFloat(field, "double")
	case "string":
		proc = processors.NewToString(field)
	case "boolean":
		proc = processors.NewToBoolean(field)
	case "ip":
		proc = processors.NewToIP(field)
	default:
		return nil, fmt.Errorf("unknown type %q", r.TargetType)
	}

	if err := r.setTarget(proc); err != nil {
		return nil, err
	}
	return r.decorate(proc)
}

func (r *ConvertRecord) setTarget(proc pipeline.Processor) error {
	var target fieldpath.Path
	if r.TargetField != "" {
		var err error
		target, err = fieldpath.Parse(r.TargetField)
		if err != nil {
			return err
		}
	}
	switch p := proc.(type) {
	case *processors.ToInteger:
		p.TargetField, p.IgnoreMissing = target, r.IgnoreMissing
	case *processors.ToFloat:
		p.TargetField, p.IgnoreMissing = target, r.IgnoreMissing
	case *processors.ToString:
		p.TargetField, p.IgnoreMissing = target, r.IgnoreMissing
	case *processors.ToBoolean:
		p.TargetField, p.IgnoreMissing = target, r.IgnoreMissing
	case *processors.ToIP:
		p.TargetField, p.IgnoreMissing = target, r.IgnoreMissing
	}
	return nil
}

// DropRecord backs the "drop" discriminator.
type DropRecord struct {
	RecordOptions `yaml:",inline"`
}

// Type implements Record.
func (*DropRecord) Type() string { return "drop" }

// Validate implements Record.
func (*DropRecord) Validate() error { return nil }

// Convert implements Record.
func (r *DropRecord) Convert() ([]pipeline.Processor, error) {
	return r.decorate(&processors.Drop{})
}

// FailRecord backs the "fail" discriminator.
type FailRecord struct {
	RecordOptions `yaml:",inline"`

	Message string `yaml:"message"`
}

// Type implements Record.
func (*FailRecord) Type() string { return "fail" }

// Validate implements Record.
func (r *FailRecord) Validate() error {
	if r.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// Convert implements Record.
func (r *FailRecord) Convert() ([]pipeline.Processor, error) {
	return r.decorate(&processors.Fail{Message: r.Message})
}

// JSONRecord backs the "json" discriminator.
type JSONRecord struct {
	RecordOptions `yaml:",inline"`

	Field       string `yaml:"field"`
	TargetField string `yaml:"target_field"`
	AddToRoot   bool   `yaml:"add_to_root"`
}

// Type implements Record.
func (*JSONRecord) Type() string { return "json" }

// Validate implements Record.
func (r *JSONRecord) Validate() error {
	if err := requireField(r.Field); err != nil {
		return err
	}
	if r.AddToRoot && r.TargetField != "" {
		return errors.New("target_field and add_to_root are mutually exclusive")
	}
	return nil
}

// Convert implements Record.
func (r *JSONRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}
	proc := &processors.JSON{Field: field, AddToRoot: r.AddToRoot}
	if r.TargetField != "" {
		if proc.TargetField, err = fieldpath.Parse(r.TargetField); err != nil {
			return nil, err
		}
	}
	return r.decorate(proc)
}

// LowercaseRecord backs the "lowercase" discriminator.
type LowercaseRecord struct {
	RecordOptions `yaml:",inline"`

	Field         string `yaml:"field"`
	TargetField   string `yaml:"target_field"`
	IgnoreMissing bool   `yaml:"ignore_missing"`
}

// Type implements Record.
func (*LowercaseRecord) Type() string { return "lowercase" }

// Validate implements Record.
func (r *LowercaseRecord) Validate() error { return requireField(r.Field) }

// Convert implements Record.
func (r *LowercaseRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}
	proc := processors.NewLowercase(field)
	proc.IgnoreMissing = r.IgnoreMissing
	if r.TargetField != "" {
		if proc.TargetField, err = fieldpath.Parse(r.TargetField); err != nil {
			return nil, err
		}
	}
	return r.decorate(proc)
}

// UppercaseRecord backs the "uppercase" discriminator.
type UppercaseRecord struct {
	RecordOptions `yaml:",inline"`

	Field         string `yaml:"field"`
	TargetField   string `yaml:"target_field"`
	IgnoreMissing bool   `yaml:"ignore_missing"`
}

// Type implements Record.
func (*UppercaseRecord) Type() string { return "uppercase" }

// Validate implements Record.
func (r *UppercaseRecord) Validate() error { return requireField(r.Field) }

// Convert implements Record.
func (r *UppercaseRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}
	proc := processors.NewUppercase(field)
	proc.IgnoreMissing = r.IgnoreMissing
	if r.TargetField != "" {
		if proc.TargetField, err = fieldpath.Parse(r.TargetField); err != nil {
			return nil, err
		}
	}
	return r.decorate(proc)
}

// RemoveRecord backs the "remove" discriminator. With field set it expands
// into one Remove per listed path; with keep set it produces a single Keep.
type RemoveRecord struct {
	RecordOptions `yaml:",inline"`

	Field         StringList `yaml:"field"`
	Keep          StringList `yaml:"keep"`
	IgnoreMissing bool       `yaml:"ignore_missing"`
}

// Type implements Record.
func (*RemoveRecord) Type() string { return "remove" }

// Validate implements Record.
func (r *RemoveRecord) Validate() error {
	if (len(r.Field) == 0) == (len(r.Keep) == 0) {
		return errors.New("exactly one of field and keep must be set")
	}
	return nil
}

// Convert implements Record.
func (r *RemoveRecord) Convert() ([]pipeline.Processor, error) {
	if len(r.Keep) > 0 {
		fields, err := parsePaths(r.Keep)
		if err != nil {
			return nil, err
		}
		return r.decorate(&processors.Keep{Fields: fields})
	}

	fields, err := parsePaths(r.Field)
	if err != nil {
		return nil, err
	}
	procs := make([]pipeline.Processor, 0, len(fields))
	for _, f := range fields {
		procs = append(procs, &processors.Remove{Field: f, IgnoreMissing: r.IgnoreMissing})
	}
	return r.decorate(procs...)
}

// RenameRecord backs the "rename" discriminator.
type RenameRecord struct {
	RecordOptions `yaml:",inline"`

	Field         string `yaml:"field"`
	TargetField   string `yaml:"target_field"`
	IgnoreMissing bool   `yaml:"ignore_missing"`
	Override      bool   `yaml:"override"`
}

// Type implements Record.
func (*RenameRecord) Type() string { return "rename" }

// Validate implements Record.
func (r *RenameRecord) Validate() error {
	if err := requireField(r.Field); err != nil {
		return err
	}
	if r.TargetField == "" {
		return errors.New("target_field is required")
	}
	return nil
}

// Convert implements Record.
func (r *RenameRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}
	target, err := fieldpath.Parse(r.TargetField)
	if err != nil {
		return nil, err
	}
	return r.decorate(&processors.Rename{
		Field:         field,
		TargetField:   target,
		IgnoreMissing: r.IgnoreMissing,
		Override:      r.Override,
	})
}

// SetRecord backs the "set" discriminator. With value set it produces a
// Set; with copy_from set it produces a Copy from that path into field.
// A null value counts as unset.
type SetRecord struct {
	RecordOptions `yaml:",inline"`

	Field            string `yaml:"field"`
	Value            any    `yaml:"value"`
	CopyFrom         string `yaml:"copy_from"`
	Override         bool   `yaml:"override"`
	IgnoreEmptyValue bool   `yaml:"ignore_empty_value"`
}

// Type implements Record.
func (*SetRecord) Type() string { return "set" }

// Validate implements Record.
func (r *SetRecord) Validate() error {
	if err := requireField(r.Field); err != nil {
		return err
	}
	if (r.Value == nil) == (r.CopyFrom == "") {
		return errors.New("exactly one of value and copy_from must be set")
	}
	return nil
}

// Convert implements Record.
func (r *SetRecord) Convert() ([]pipeline.Processor, error) {
	field, err := fieldpath.Parse(r.Field)
	if err != nil {
		return nil, err
	}

	if r.CopyFrom != "" {
		source, err := fieldpath.Parse(r.CopyFrom)
		if err != nil {
			return nil, err
		}
		return r.decorate(&processors.Copy{
			Field:       source,
			TargetField: field,
			Override:    r.Override,
		})
	}

	value, err := document.FromValue(r.Value)
	if err != nil {
		return nil, err
	}
	return r.decorate(&processors.Set{
		Field:            field,
		Value:            value,
		Override:         r.Override,
		IgnoreEmptyValue: r.IgnoreEmptyValue,
	})
}

func requireField(field string) error {
	if field == "" {
		return errors.New("field is required")
	}
	return nil
}

func parsePaths(raw []string) ([]fieldpath.Path, error) {
	paths := make([]fieldpath.Path, 0, len(raw))
	for _, s := range raw {
		p, err := fieldpath.Parse(s)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
