package processors

import (
	"context"
	"fmt"
	"math"
	"net/netip"
	"strconv"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/pipeline"
	"github.com/erraggy/pipetools/piperrors"
)

// The typed conversion processors back the "convert" discriminator: each
// external convert record expands, per its type option, into one of these.
// Coercion is explicit here; the document model itself never coerces.

// ToInteger converts the source field to an integer within [Min, Max].
// Accepted inputs: integers, floats with integral value, booleans, and
// decimal strings.
type ToInteger struct {
	pipeline.FieldProcessor[document.Element]

	// Min and Max bound the accepted range, e.g. int32 bounds for the
	// external "integer" type and int64 bounds for "long".
	Min int64
	Max int64
}

// NewToInteger builds a ToInteger for the given source field.
func NewToInteger(field fieldpath.Path, min, max int64) *ToInteger {
	p := &ToInteger{Min: min, Max: max}
	p.Field = field
	p.Decode = identity
	p.Process = p.process
	return p
}

// ProcessorType implements pipeline.Typer.
func (*ToInteger) ProcessorType() string { return "convert" }

func (p *ToInteger) process(_ context.Context, el document.Element) (document.Element, error) {
	i, err := coerceInt(el)
	if err != nil {
		return nil, convertErr(p.Tag, err)
	}
	if i < p.Min || i > p.Max {
		return nil, convertErr(p.Tag, fmt.Errorf("value %d outside [%d, %d]", i, p.Min, p.Max))
	}
	return document.Int(i), nil
}

func coerceInt(el document.Element) (int64, error) {
	switch v := el.(type) {
	case document.Int:
		return int64(v), nil
	case document.Float:
		f := float64(v)
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, fmt.Errorf("float %v is not integral", f)
		}
		return int64(f), nil
	case document.Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case document.String:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", string(v))
		}
		return i, nil
	default:
		return 0, &piperrors.TypeMismatchError{Expected: "integer", Actual: el.Kind().String()}
	}
}

// ToFloat converts the source field to a floating-point number.
type ToFloat struct {
	pipeline.FieldProcessor[document.Element]

	// Precision is "float" for 32-bit rounding or "double" for full
	// 64-bit precision, matching the external convert types.
	Precision string
}

// NewToFloat builds a ToFloat for the given source field.
func NewToFloat(field fieldpath.Path, precision string) *ToFloat {
	p := &ToFloat{Precision: precision}
	p.Field = field
	p.Decode = identity
	p.Process = p.process
	return p
}

// ProcessorType implements pipeline.Typer.
func (*ToFloat) ProcessorType() string { return "convert" }

func (p *ToFloat) process(_ context.Context, el document.Element) (document.Element, error) {
	var f float64
	switch v := el.(type) {
	case document.Float:
		f = float64(v)
	case document.Int:
		f = float64(v)
	case document.Bool:
		if v {
			f = 1
		}
	case document.String:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, convertErr(p.Tag, fmt.Errorf("cannot parse %q as float", string(v)))
		}
		f = parsed
	default:
		return nil, &piperrors.TypeMismatchError{Expected: "float", Actual: el.Kind().String()}
	}
	if p.Precision == "float" {
		f = float64(float32(f))
	}
	return document.Float(f), nil
}

// ToString converts the source field to its string representation.
type ToString struct {
	pipeline.FieldProcessor[document.Element]
}

// NewToString builds a ToString for the given source field.
func NewToString(field fieldpath.Path) *ToString {
	p := &ToString{}
	p.Field = field
	p.Decode = identity
	p.Process = p.process
	return p
}

// ProcessorType implements pipeline.Typer.
func (*ToString) ProcessorType() string { return "convert" }

func (p *ToString) process(_ context.Context, el document.Element) (document.Element, error) {
	switch v := el.(type) {
	case document.String:
		return v, nil
	case document.Int:
		return document.String(strconv.FormatInt(int64(v), 10)), nil
	case document.Float:
		return document.String(strconv.FormatFloat(float64(v), 'g', -1, 64)), nil
	case document.Bool:
		return document.String(strconv.FormatBool(bool(v))), nil
	default:
		return nil, &piperrors.TypeMismatchError{Expected: "scalar", Actual: el.Kind().String()}
	}
}

// ToBoolean converts the source field to a boolean. Only booleans and the
// strings "true" and "false" are accepted.
type ToBoolean struct {
	pipeline.FieldProcessor[document.Element]
}

// NewToBoolean builds a ToBoolean for the given source field.
func NewToBoolean(field fieldpath.Path) *ToBoolean {
	p := &ToBoolean{}
	p.Field = field
	p.Decode = identity
	p.Process = p.process
	return p
}

// ProcessorType implements pipeline.Typer.
func (*ToBoolean) ProcessorType() string { return "convert" }

func (p *ToBoolean) process(_ context.Context, el document.Element) (document.Element, error) {
	switch v := el.(type) {
	case document.Bool:
		return v, nil
	case document.String:
		switch string(v) {
		case "true":
			return document.Bool(true), nil
		case "false":
			return document.Bool(false), nil
		}
		return nil, convertErr(p.Tag, fmt.Errorf("cannot parse %q as boolean", string(v)))
	default:
		return nil, &piperrors.TypeMismatchError{Expected: "boolean", Actual: el.Kind().String()}
	}
}

// ToIP validates that the source field holds an IPv4 or IPv6 address and
// normalizes it to canonical textual form.
type ToIP struct {
	pipeline.FieldProcessor[string]
}

// NewToIP builds a ToIP for the given source field.
func NewToIP(field fieldpath.Path) *ToIP {
	p := &ToIP{}
	p.Field = field
	p.Decode = document.AsString
	p.Process = p.process
	return p
}

// ProcessorType implements pipeline.Typer.
func (*ToIP) ProcessorType() string { return "convert" }

func (p *ToIP) process(_ context.Context, value string) (document.Element, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return nil, convertErr(p.Tag, fmt.Errorf("cannot parse %q as IP address", value))
	}
	return document.String(addr.String()), nil
}

func identity(el document.Element) (document.Element, error) { return el, nil }

func convertErr(tag string, cause error) error {
	return &piperrors.ProcessingError{Type: "convert", Tag: tag, Cause: cause}
}
