// Package fieldpath implements the addressing language for locations inside
// a document tree.
//
// A path is a non-empty sequence of segments. A [Key] segment selects an
// entry of a mapping; an [Index] segment selects a position of an array.
// The textual grammar separates key segments with dots and writes index
// segments in brackets:
//
//	user.name
//	tags[2]
//	a.b[2].c
//
// Keys containing a literal dot, bracket, or backslash escape it with a
// backslash, e.g. `metrics.cpu\.total`. Serialization is deterministic, so
// parsing a serialized path and re-serializing it yields identical text.
//
// Paths are immutable once parsed and safe for concurrent use.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/pipetools/piperrors"
)

// Segment is one step of a path: either a [Key] or an [Index].
type Segment interface {
	isSegment()
	appendTo(b *strings.Builder, first bool)
}

// Key selects a mapping entry by name.
type Key string

func (Key) isSegment() {}

func (k Key) appendTo(b *strings.Builder, first bool) {
	if !first {
		b.WriteByte('.')
	}
	for _, r := range string(k) {
		switch r {
		case '.', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
}

// Index selects an array position. Negative indexes are invalid.
type Index int

func (Index) isSegment() {}

func (i Index) appendTo(b *strings.Builder, _ bool) {
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(int(i)))
	b.WriteByte(']')
}

// Path is a parsed address into a document. The zero value is invalid;
// obtain paths from [Parse], [New], or [MustParse].
type Path struct {
	segments []Segment
}

// New builds a path from segments. It fails if no segments are given or an
// Index segment is negative.
func New(segments ...Segment) (Path, error) {
	if len(segments) == 0 {
		return Path{}, fmt.Errorf("fieldpath: path must have at least one segment")
	}
	for _, seg := range segments {
		if idx, ok := seg.(Index); ok && idx < 0 {
			return Path{}, fmt.Errorf("fieldpath: negative index %d", idx)
		}
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return Path{segments: out}, nil
}

// Parse parses the textual form of a path. Malformed text yields a
// [piperrors.SyntaxError] carrying the byte offset of the problem.
func Parse(text string) (Path, error) {
	if text == "" {
		return Path{}, syntaxErr(text, 0, "empty path")
	}

	var segments []Segment
	var key strings.Builder
	keyStarted := false
	i := 0

	flushKey := func(at int) error {
		if !keyStarted {
			return nil
		}
		if key.Len() == 0 {
			return syntaxErr(text, at, "empty key segment")
		}
		segments = append(segments, Key(key.String()))
		key.Reset()
		keyStarted = false
		return nil
	}

	for i < len(text) {
		c := text[i]
		switch c {
		case '\\':
			if i+1 >= len(text) {
				return Path{}, syntaxErr(text, i, "trailing escape character")
			}
			next := text[i+1]
			if next != '.' && next != '[' && next != ']' && next != '\\' {
				return Path{}, syntaxErr(text, i, fmt.Sprintf("invalid escape sequence \\%c", next))
			}
			key.WriteByte(next)
			keyStarted = true
			i += 2

		case '.':
			if !keyStarted {
				// A dot may only follow a completed key; after a bracket it
				// introduces the next key instead.
				if len(segments) == 0 || !endsWithIndex(segments) {
					return Path{}, syntaxErr(text, i, "empty key segment")
				}
				if i+1 >= len(text) {
					return Path{}, syntaxErr(text, i, "path ends with a separator")
				}
				i++
				keyStarted = true
				continue
			}
			if err := flushKey(i); err != nil {
				return Path{}, err
			}
			if i+1 >= len(text) {
				return Path{}, syntaxErr(text, i, "path ends with a separator")
			}
			i++
			keyStarted = true

		case '[':
			if err := flushKey(i); err != nil {
				return Path{}, err
			}
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return Path{}, syntaxErr(text, i, "unterminated index segment")
			}
			digits := text[i+1 : i+end]
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 0 || (len(digits) > 1 && digits[0] == '0') {
				return Path{}, syntaxErr(text, i+1, fmt.Sprintf("invalid array index %q", digits))
			}
			segments = append(segments, Index(idx))
			i += end + 1
			// After an index only ".", "[", or end of input may follow.
			if i < len(text) && text[i] != '.' && text[i] != '[' {
				return Path{}, syntaxErr(text, i, "expected '.' or '[' after index segment")
			}

		case ']':
			return Path{}, syntaxErr(text, i, "unexpected ']'")

		default:
			key.WriteByte(c)
			keyStarted = true
			i++
		}
	}

	if err := flushKey(len(text)); err != nil {
		return Path{}, err
	}
	if len(segments) == 0 {
		return Path{}, syntaxErr(text, 0, "empty path")
	}
	return Path{segments: segments}, nil
}

func endsWithIndex(segments []Segment) bool {
	_, ok := segments[len(segments)-1].(Index)
	return ok
}

// MustParse is like [Parse] but panics on error. Intended for constants
// and tests.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func syntaxErr(input string, offset int, message string) error {
	return &piperrors.SyntaxError{Input: input, Offset: offset, Message: message}
}

// String returns the canonical textual form. Parse(p.String()) always
// succeeds and yields a path equal to p.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segments {
		seg.appendTo(&b, i == 0)
	}
	return b.String()
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// IsZero reports whether the path is the invalid zero value.
func (p Path) IsZero() bool { return len(p.segments) == 0 }

// Equal reports whether both paths have identical segment sequences.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if seg != other.segments[i] {
			return false
		}
	}
	return true
}

// Parent returns the path without its final segment. The parent of a
// single-segment path is the path itself.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return p
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Child returns a new path with seg appended.
func (p Path) Child(seg Segment) Path {
	segments := make([]Segment, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, seg)
	return Path{segments: segments}
}

// prefix returns the serialized form of the first n segments, used in
// resolution error messages.
func (p Path) prefix(n int) string {
	return Path{segments: p.segments[:n]}.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("fieldpath: cannot marshal zero path")
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting the canonical text form.
func (p Path) MarshalYAML() (any, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("fieldpath: cannot marshal zero path")
	}
	return p.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler so processor records can
// declare options as Path directly.
func (p *Path) UnmarshalYAML(unmarshal func(any) error) error {
	var text string
	if err := unmarshal(&text); err != nil {
		return err
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
