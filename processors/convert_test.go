package processors

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/piperrors"
)

func TestToInteger(t *testing.T) {
	ctx := context.Background()

	t.Run("parses decimal string", func(t *testing.T) {
		doc := mustDoc(t, `{"n": "42"}`)
		p := NewToInteger(path(t, "n"), math.MinInt64, math.MaxInt64)
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "n").Get(doc)
		assert.Equal(t, document.Int(42), el)
	})

	t.Run("integral float", func(t *testing.T) {
		doc := mustDoc(t, `{"n": 3.0}`)
		p := NewToInteger(path(t, "n"), math.MinInt64, math.MaxInt64)
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "n").Get(doc)
		assert.Equal(t, document.Int(3), el)
	})

	t.Run("fractional float fails", func(t *testing.T) {
		doc := mustDoc(t, `{"n": 3.5}`)
		p := NewToInteger(path(t, "n"), math.MinInt64, math.MaxInt64)
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrProcessing)
	})

	t.Run("range enforced", func(t *testing.T) {
		doc := mustDoc(t, `{"n": 300}`)
		p := NewToInteger(path(t, "n"), -128, 127)
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrProcessing)
	})

	t.Run("boolean coerces to 0 or 1", func(t *testing.T) {
		doc := mustDoc(t, `{"n": true}`)
		p := NewToInteger(path(t, "n"), math.MinInt64, math.MaxInt64)
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "n").Get(doc)
		assert.Equal(t, document.Int(1), el)
	})

	t.Run("target field leaves source", func(t *testing.T) {
		doc := mustDoc(t, `{"n": "7"}`)
		p := NewToInteger(path(t, "n"), math.MinInt64, math.MaxInt64)
		p.TargetField = path(t, "parsed")
		require.NoError(t, p.Apply(ctx, doc))
		src, _ := path(t, "n").Get(doc)
		dst, _ := path(t, "parsed").Get(doc)
		assert.Equal(t, document.String("7"), src)
		assert.Equal(t, document.Int(7), dst)
	})
}

func TestToFloat(t *testing.T) {
	ctx := context.Background()

	t.Run("parses string", func(t *testing.T) {
		doc := mustDoc(t, `{"n": "2.25"}`)
		p := NewToFloat(path(t, "n"), "double")
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "n").Get(doc)
		assert.Equal(t, document.Float(2.25), el)
	})

	t.Run("float precision rounds through float32", func(t *testing.T) {
		doc := mustDoc(t, `{"n": "1.1"}`)
		p := NewToFloat(path(t, "n"), "float")
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "n").Get(doc)
		assert.Equal(t, document.Float(float64(float32(1.1))), el)
	})

	t.Run("garbage string fails", func(t *testing.T) {
		doc := mustDoc(t, `{"n": "wat"}`)
		p := NewToFloat(path(t, "n"), "double")
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrProcessing)
	})
}

func TestToString(t *testing.T) {
	ctx := context.Background()

	doc := mustDoc(t, `{"i": 42, "f": 2.5, "b": true}`)
	for _, field := range []string{"i", "f", "b"} {
		require.NoError(t, NewToString(path(t, field)).Apply(ctx, doc))
	}
	out, _ := document.ToJSON(doc)
	assert.JSONEq(t, `{"i": "42", "f": "2.5", "b": "true"}`, string(out))
}

func TestToBoolean(t *testing.T) {
	ctx := context.Background()

	t.Run("only true and false strings accepted", func(t *testing.T) {
		doc := mustDoc(t, `{"a": "true", "b": "false"}`)
		require.NoError(t, NewToBoolean(path(t, "a")).Apply(ctx, doc))
		require.NoError(t, NewToBoolean(path(t, "b")).Apply(ctx, doc))
		a, _ := path(t, "a").Get(doc)
		b, _ := path(t, "b").Get(doc)
		assert.Equal(t, document.Bool(true), a)
		assert.Equal(t, document.Bool(false), b)
	})

	t.Run("yes is rejected", func(t *testing.T) {
		doc := mustDoc(t, `{"a": "yes"}`)
		assert.ErrorIs(t, NewToBoolean(path(t, "a")).Apply(ctx, doc), piperrors.ErrProcessing)
	})

	t.Run("non-scalar is a type mismatch", func(t *testing.T) {
		doc := mustDoc(t, `{"a": [1]}`)
		err := NewToBoolean(path(t, "a")).Apply(ctx, doc)
		assert.ErrorIs(t, err, piperrors.ErrTypeMismatch)
	})
}

func TestToIP(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes IPv6", func(t *testing.T) {
		doc := mustDoc(t, `{"ip": "2001:0DB8:0:0:0:0:0:1"}`)
		p := NewToIP(path(t, "ip"))
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "ip").Get(doc)
		assert.Equal(t, document.String("2001:db8::1"), el)
	})

	t.Run("accepts IPv4", func(t *testing.T) {
		doc := mustDoc(t, `{"ip": "192.168.0.1"}`)
		require.NoError(t, NewToIP(path(t, "ip")).Apply(ctx, doc))
	})

	t.Run("rejects hostnames", func(t *testing.T) {
		doc := mustDoc(t, `{"ip": "example.com"}`)
		assert.ErrorIs(t, NewToIP(path(t, "ip")).Apply(ctx, doc), piperrors.ErrProcessing)
	})
}
