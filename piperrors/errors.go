// Package piperrors provides structured error types for pipetools.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - SyntaxError: malformed field path or pipeline description text
//   - NotFoundError: a field path segment did not resolve
//   - IndexError: an array index segment was out of range
//   - TypeMismatchError: an element variant did not match the expected type
//   - UnknownProcessorError: an unregistered processor discriminator
//   - ValidationError: a processor record violated its option schema
//   - ProcessingError: a processor's own transform logic failed
//   - PipelineError: a pipeline run aborted on a failing processor
//
// # Usage with errors.Is
//
//	err := pl.Run(ctx, doc)
//	if errors.Is(err, piperrors.ErrDropped) {
//	    // The document asked to be discarded; not a failure.
//	}
//	var pe *piperrors.PipelineError
//	if errors.As(err, &pe) {
//	    log.Printf("pipeline failed at %q: %v", pe.Tag, pe.Cause)
//	}
package piperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrSyntax indicates malformed field path or pipeline description text.
	ErrSyntax = errors.New("syntax error")

	// ErrNotFound indicates a field was missing during resolution or removal.
	ErrNotFound = errors.New("field not found")

	// ErrIndexOutOfRange indicates an array index segment was out of bounds.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrTypeMismatch indicates an element variant did not match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownProcessor indicates an unregistered processor discriminator.
	ErrUnknownProcessor = errors.New("unknown processor type")

	// ErrValidation indicates a processor record violated its option schema.
	ErrValidation = errors.New("validation error")

	// ErrProcessing indicates a processor's transform logic failed.
	ErrProcessing = errors.New("processing failure")

	// ErrPipelineFailure indicates a pipeline run aborted on a processor.
	ErrPipelineFailure = errors.New("pipeline failure")

	// ErrDropped indicates a processor requested the document be discarded.
	// This is a control-flow signal, not a failure: the pipeline engine
	// propagates it untouched, bypassing ignore_failure and on_failure.
	ErrDropped = errors.New("document dropped")
)

// SyntaxError represents malformed field path or pipeline description text.
type SyntaxError struct {
	// Input is the text that failed to parse
	Input string
	// Offset is the byte offset at which parsing failed
	Offset int
	// Line is the 1-based line number where the error occurred (0 if unknown)
	Line int
	// Column is the 1-based column number where the error occurred (0 if unknown)
	Column int
	// Message describes the syntax problem
	Message string
}

// Error returns a human-readable error message.
func (e *SyntaxError) Error() string {
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
	} else {
		msg = fmt.Sprintf("syntax error at offset %d", e.Offset)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Input != "" {
		msg += fmt.Sprintf(" in %q", e.Input)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NotFoundError represents a failure to resolve a field path because a
// key segment did not exist in the document.
type NotFoundError struct {
	// Path is the serialized field path up to and including the missing segment
	Path string
}

// Error returns a human-readable error message.
func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return "field not found"
	}
	return "field not found: " + e.Path
}

// Is reports whether target matches this error type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IndexError represents an array index segment that was out of range.
type IndexError struct {
	// Path is the serialized field path up to and including the index segment
	Path string
	// Index is the requested array index
	Index int
	// Length is the actual array length
	Length int
}

// Error returns a human-readable error message.
func (e *IndexError) Error() string {
	msg := fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Length)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// TypeMismatchError represents an element whose variant did not match the
// type expected by a resolution, accessor, or processor.
type TypeMismatchError struct {
	// Path is the serialized field path of the offending element (may be empty)
	Path string
	// Expected is the expected element kind or type name
	Expected string
	// Actual is the actual element kind or type name
	Actual string
}

// Error returns a human-readable error message.
func (e *TypeMismatchError) Error() string {
	msg := "type mismatch"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Expected != "" {
		msg += fmt.Sprintf(": expected %s, got %s", e.Expected, e.Actual)
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnknownProcessorError represents a processor record whose discriminator
// is not present in the registry used to parse or validate it.
type UnknownProcessorError struct {
	// Index is the zero-based position of the record in its processor array
	Index int
	// Type is the unregistered discriminator string
	Type string
}

// Error returns a human-readable error message.
func (e *UnknownProcessorError) Error() string {
	return fmt.Sprintf("unknown processor type %q at index %d", e.Type, e.Index)
}

// Is reports whether target matches this error type.
func (e *UnknownProcessorError) Is(target error) bool {
	return target == ErrUnknownProcessor
}

// ValidationError represents a processor record that violated its option
// schema. Validation aggregates every record's errors in one pass, so a
// single raw pipeline may yield several of these.
type ValidationError struct {
	// Index is the zero-based position of the record in its processor array
	Index int
	// Type is the record's discriminator string
	Type string
	// Field is the offending option name, if one can be identified
	Field string
	// Message describes the violation
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error in %q processor at index %d", e.Type, e.Index)
	if e.Field != "" {
		msg += ", option " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProcessingError represents a failure inside a processor's own transform
// logic, e.g. a value that could not be converted or parsed.
type ProcessingError struct {
	// Type is the processor kind, e.g. "json" or "convert"
	Type string
	// Tag is the processor's configured tag, if any
	Tag string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ProcessingError) Error() string {
	msg := "processing failure"
	if e.Type != "" {
		msg += " in " + e.Type + " processor"
	}
	if e.Tag != "" {
		msg += fmt.Sprintf(" (tag %q)", e.Tag)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}

// PipelineError represents a pipeline run that aborted because a processor
// failed without recovery. The document is left in its last-mutated state;
// callers needing atomicity should clone before running.
type PipelineError struct {
	// Pipeline is the name of the failing pipeline, if set
	Pipeline string
	// Type is the failing processor's kind, if known
	Type string
	// Tag is the failing processor's configured tag, if any
	Tag string
	// Cause is the processor's failure
	Cause error
}

// Error returns a human-readable error message.
func (e *PipelineError) Error() string {
	msg := "pipeline"
	if e.Pipeline != "" {
		msg += " " + e.Pipeline
	}
	msg += " failed"
	if e.Type != "" {
		msg += " at " + e.Type + " processor"
	}
	if e.Tag != "" {
		msg += fmt.Sprintf(" (tag %q)", e.Tag)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *PipelineError) Is(target error) bool {
	return target == ErrPipelineFailure
}
