package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/piperrors"
)

func upperProcessor() *FieldProcessor[string] {
	return &FieldProcessor[string]{
		Field:  fieldpath.MustParse("msg"),
		Decode: document.AsString,
		Process: func(_ context.Context, value string) (document.Element, error) {
			return document.String(strings.ToUpper(value)), nil
		},
	}
}

func TestFieldProcessorApply(t *testing.T) {
	t.Run("writes back to source by default", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.String("hello"))

		require.NoError(t, upperProcessor().Apply(context.Background(), doc))
		el, _ := doc.Get("msg")
		assert.Equal(t, document.String("HELLO"), el)
	})

	t.Run("distinct target leaves source", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.String("hello"))

		p := upperProcessor()
		p.TargetField = fieldpath.MustParse("shout")
		require.NoError(t, p.Apply(context.Background(), doc))

		src, _ := doc.Get("msg")
		assert.Equal(t, document.String("hello"), src)
		dst, _ := doc.Get("shout")
		assert.Equal(t, document.String("HELLO"), dst)
	})

	t.Run("remove if successful", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.String("hello"))

		p := upperProcessor()
		p.TargetField = fieldpath.MustParse("shout")
		p.RemoveIfSuccessful = true
		require.NoError(t, p.Apply(context.Background(), doc))

		assert.False(t, fieldpath.MustParse("msg").Exists(doc))
		dst, _ := doc.Get("shout")
		assert.Equal(t, document.String("HELLO"), dst)
	})

	t.Run("remove is a no-op when target equals source", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.String("hello"))

		p := upperProcessor()
		p.TargetField = fieldpath.MustParse("msg")
		p.RemoveIfSuccessful = true
		require.NoError(t, p.Apply(context.Background(), doc))

		el, _ := doc.Get("msg")
		assert.Equal(t, document.String("HELLO"), el)
	})

	t.Run("missing source fails", func(t *testing.T) {
		doc := document.NewMapping()
		err := upperProcessor().Apply(context.Background(), doc)
		require.Error(t, err)
		assert.True(t, errors.Is(err, piperrors.ErrNotFound))
	})

	t.Run("missing source ignored", func(t *testing.T) {
		doc := document.NewMapping()
		pristine := doc.CloneDocument()

		p := upperProcessor()
		p.IgnoreMissing = true
		require.NoError(t, p.Apply(context.Background(), doc))
		assert.True(t, pristine.Equal(doc), "document must be unchanged")
	})

	t.Run("wrong source type", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.Int(42))

		err := upperProcessor().Apply(context.Background(), doc)
		require.Error(t, err)

		var tm *piperrors.TypeMismatchError
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, "msg", tm.Path)
		assert.Equal(t, "string", tm.Expected)
	})

	t.Run("transform failure propagates", func(t *testing.T) {
		doc := document.NewMapping()
		doc.Set("msg", document.String("hello"))

		p := upperProcessor()
		p.Process = func(_ context.Context, _ string) (document.Element, error) {
			return nil, &piperrors.ProcessingError{Type: "uppercase", Message: "broken"}
		}
		err := p.Apply(context.Background(), doc)
		assert.True(t, errors.Is(err, piperrors.ErrProcessing))
	})
}
