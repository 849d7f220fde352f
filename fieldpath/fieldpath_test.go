package fieldpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/pipetools/piperrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{"single key", "message", []Segment{Key("message")}},
		{"dotted keys", "user.name.first", []Segment{Key("user"), Key("name"), Key("first")}},
		{"key and index", "a.b[2]", []Segment{Key("a"), Key("b"), Index(2)}},
		{"index then key", "a[0].b", []Segment{Key("a"), Index(0), Key("b")}},
		{"consecutive indexes", "grid[1][2]", []Segment{Key("grid"), Index(1), Index(2)}},
		{"leading index", "[3]", []Segment{Index(3)}},
		{"escaped dot", `metrics.cpu\.total`, []Segment{Key("metrics"), Key("cpu.total")}},
		{"escaped brackets", `odd\[key\]`, []Segment{Key("odd[key]")}},
		{"escaped backslash", `back\\slash`, []Segment{Key(`back\slash`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Segments())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"empty", "", 0},
		{"double dot", "a..b", 2},
		{"leading dot", ".a", 0},
		{"trailing dot", "a.", 1},
		{"trailing dot after index", "a[0].", 4},
		{"trailing escape", `a\`, 1},
		{"bad escape", `a\x`, 1},
		{"unterminated index", "a[2", 1},
		{"negative index", "a[-1]", 2},
		{"non-numeric index", "a[x]", 2},
		{"leading zero index", "a[01]", 2},
		{"stray close bracket", "a]b", 1},
		{"key glued to index", "a[0]b", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, piperrors.ErrSyntax))

			var se *piperrors.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.offset, se.Offset)
			assert.Equal(t, tt.text, se.Input)
		})
	}
}

func TestParseTrailingSeparator(t *testing.T) {
	// The diagnostic reads the same whether the trailing dot follows a
	// key or an index segment.
	for _, text := range []string{"a.", "a[0]."} {
		t.Run(text, func(t *testing.T) {
			_, err := Parse(text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "path ends with a separator")
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	// Parsing a serialized path and re-serializing it yields identical
	// text for all canonical forms.
	paths := []string{
		"a",
		"a.b.c",
		"a.b[2]",
		"a[0][1].b",
		"[7]",
		`metrics.cpu\.total`,
		`odd\[key\]`,
		`back\\slash.rest`,
	}
	for _, text := range paths {
		t.Run(text, func(t *testing.T) {
			p, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, MustParse("a.b[1]").Equal(MustParse("a.b[1]")))
	assert.False(t, MustParse("a.b[1]").Equal(MustParse("a.b[2]")))
	assert.False(t, MustParse("a.b").Equal(MustParse("a.b.c")))
	// A key spelled like an index is not an index.
	escaped, err := Parse(`a.\[1\]`)
	require.NoError(t, err)
	assert.False(t, escaped.Equal(MustParse("a[1]")))
}

func TestParentChild(t *testing.T) {
	p := MustParse("a.b[2]")
	assert.Equal(t, "a.b", p.Parent().String())
	assert.Equal(t, "a", p.Parent().Parent().String())
	// The parent of a single-segment path is itself.
	assert.Equal(t, "a", MustParse("a").Parent().String())

	child := MustParse("a").Child(Key("b")).Child(Index(0))
	assert.Equal(t, "a.b[0]", child.String())
}

func TestNew(t *testing.T) {
	p, err := New(Key("a"), Index(3))
	require.NoError(t, err)
	assert.Equal(t, "a[3]", p.String())

	_, err = New()
	assert.Error(t, err)

	_, err = New(Key("a"), Index(-1))
	assert.Error(t, err)
}

func TestTextMarshaling(t *testing.T) {
	p := MustParse(`a.b\.c[1]`)
	text, err := p.MarshalText()
	require.NoError(t, err)

	var back Path
	require.NoError(t, back.UnmarshalText(text))
	assert.True(t, p.Equal(back))

	var bad Path
	assert.Error(t, bad.UnmarshalText([]byte("a..b")))

	var zero Path
	_, err = zero.MarshalText()
	assert.Error(t, err)
}
