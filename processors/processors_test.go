package processors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/pipetools/document"
	"github.com/erraggy/pipetools/fieldpath"
	"github.com/erraggy/pipetools/piperrors"
)

func mustDoc(t *testing.T, src string) document.Document {
	t.Helper()
	doc, err := document.FromJSON([]byte(src))
	require.NoError(t, err)
	return doc
}

func path(t *testing.T, s string) fieldpath.Path {
	t.Helper()
	p, err := fieldpath.Parse(s)
	require.NoError(t, err)
	return p
}

func TestSet(t *testing.T) {
	ctx := context.Background()

	t.Run("creates intermediate mappings", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Set{Field: path(t, "a.b"), Value: document.Int(7), Override: true}
		require.NoError(t, p.Apply(ctx, doc))
		el, err := path(t, "a.b").Get(doc)
		require.NoError(t, err)
		assert.Equal(t, document.Int(7), el)
	})

	t.Run("override false keeps existing", func(t *testing.T) {
		doc := mustDoc(t, `{"a": 1}`)
		p := &Set{Field: path(t, "a"), Value: document.Int(2)}
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "a").Get(doc)
		assert.Equal(t, document.Int(1), el)
	})

	t.Run("ignore empty value", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Set{Field: path(t, "a"), Value: document.String(""), Override: true, IgnoreEmptyValue: true}
		require.NoError(t, p.Apply(ctx, doc))
		assert.False(t, path(t, "a").Exists(doc))
	})

	t.Run("value is cloned per apply", func(t *testing.T) {
		val := document.NewArray(document.Int(1))
		p := &Set{Field: path(t, "a"), Value: val, Override: true}
		doc1 := mustDoc(t, `{}`)
		doc2 := mustDoc(t, `{}`)
		require.NoError(t, p.Apply(ctx, doc1))
		require.NoError(t, p.Apply(ctx, doc2))

		el, _ := path(t, "a").Get(doc1)
		el.(*document.Array).Append(document.Int(2))
		el2, _ := path(t, "a").Get(doc2)
		assert.Equal(t, 1, el2.(*document.Array).Len())
	})
}

func TestCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("copies and keeps source", func(t *testing.T) {
		doc := mustDoc(t, `{"src": {"n": 1}}`)
		p := &Copy{Field: path(t, "src"), TargetField: path(t, "dst"), Override: true}
		require.NoError(t, p.Apply(ctx, doc))
		assert.True(t, path(t, "src").Exists(doc))

		// The copy is deep: mutating the target leaves the source alone.
		dst, _ := path(t, "dst").Get(doc)
		dst.(*document.Mapping).Set("n", document.Int(9))
		src, _ := path(t, "src.n").Get(doc)
		assert.Equal(t, document.Int(1), src)
	})

	t.Run("missing source fails", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Copy{Field: path(t, "src"), TargetField: path(t, "dst")}
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrNotFound)
	})

	t.Run("ignore missing", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Copy{Field: path(t, "src"), TargetField: path(t, "dst"), IgnoreMissing: true}
		require.NoError(t, p.Apply(ctx, doc))
		assert.False(t, path(t, "dst").Exists(doc))
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes nested field", func(t *testing.T) {
		doc := mustDoc(t, `{"a": {"b": 1, "c": 2}}`)
		p := &Remove{Field: path(t, "a.b")}
		require.NoError(t, p.Apply(ctx, doc))
		assert.False(t, path(t, "a.b").Exists(doc))
		assert.True(t, path(t, "a.c").Exists(doc))
	})

	t.Run("missing field fails unless ignored", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Remove{Field: path(t, "gone")}
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrNotFound)

		p.IgnoreMissing = true
		assert.NoError(t, p.Apply(ctx, doc))
	})
}

func TestKeep(t *testing.T) {
	ctx := context.Background()

	t.Run("prunes everything outside kept paths", func(t *testing.T) {
		doc := mustDoc(t, `{"a": {"x": 1, "y": 2}, "b": 3, "c": {"d": 4}}`)
		p := &Keep{Fields: []fieldpath.Path{path(t, "a.x"), path(t, "c")}}
		require.NoError(t, p.Apply(ctx, doc))

		out, err := document.ToJSON(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a": {"x": 1}, "c": {"d": 4}}`, string(out))
	})

	t.Run("kept subtree stays whole", func(t *testing.T) {
		doc := mustDoc(t, `{"a": {"deep": {"n": 1}}, "b": 2}`)
		p := &Keep{Fields: []fieldpath.Path{path(t, "a")}}
		require.NoError(t, p.Apply(ctx, doc))
		assert.True(t, path(t, "a.deep.n").Exists(doc))
		assert.False(t, path(t, "b").Exists(doc))
	})
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the value", func(t *testing.T) {
		doc := mustDoc(t, `{"old": "v"}`)
		p := &Rename{Field: path(t, "old"), TargetField: path(t, "nested.new")}
		require.NoError(t, p.Apply(ctx, doc))
		assert.False(t, path(t, "old").Exists(doc))
		el, err := path(t, "nested.new").Get(doc)
		require.NoError(t, err)
		assert.Equal(t, document.String("v"), el)
	})

	t.Run("ignore missing", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Rename{Field: path(t, "old"), TargetField: path(t, "new"), IgnoreMissing: true}
		require.NoError(t, p.Apply(ctx, doc))
	})

	t.Run("occupied target fails without override", func(t *testing.T) {
		doc := mustDoc(t, `{"old": 1, "new": 2}`)
		p := &Rename{Field: path(t, "old"), TargetField: path(t, "new")}
		assert.ErrorIs(t, p.Apply(ctx, doc), piperrors.ErrProcessing)

		p.Override = true
		require.NoError(t, p.Apply(ctx, doc))
		el, _ := path(t, "new").Get(doc)
		assert.Equal(t, document.Int(1), el)
	})
}

func TestAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("appends to existing array", func(t *testing.T) {
		doc := mustDoc(t, `{"tags": ["a"]}`)
		p := &Append{Field: path(t, "tags"), Values: []document.Element{document.String("b")}, AllowDuplicates: true}
		require.NoError(t, p.Apply(ctx, doc))
		out, _ := document.ToJSON(doc)
		assert.JSONEq(t, `{"tags": ["a", "b"]}`, string(out))
	})

	t.Run("missing field becomes new array", func(t *testing.T) {
		doc := mustDoc(t, `{}`)
		p := &Append{Field: path(t, "tags"), Values: []document.Element{document.String("a")}}
		require.NoError(t, p.Apply(ctx, doc))
		out, _ := document.ToJSON(doc)
		assert.JSONEq(t, `{"tags": ["a"]}`, string(out))
	})

	t.Run("scalar is wrapped first", func(t *testing.T) {
		doc := mustDoc(t, `{"tags": "a"}`)
		p := &Append{Field: path(t, "tags"), Values: []document.Element{document.String("b")}}
		require.NoError(t, p.Apply(ctx, doc))
		out, _ := document.ToJSON(doc)
		assert.JSONEq(t, `{"tags": ["a", "b"]}`, string(out))
	})

	t.Run("duplicates skipped by default", func(t *testing.T) {
		doc := mustDoc(t, `{"tags": ["a"]}`)
		p := &Append{Field: path(t, "tags"), Values: []document.Element{document.String("a"), document.String("b")}}
		require.NoError(t, p.Apply(ctx, doc))
		out, _ := document.ToJSON(doc)
		assert.JSONEq(t, `{"tags": ["a", "b"]}`, string(out))
	})
}

func TestDrop(t *testing.T) {
	doc := mustDoc(t, `{}`)
	p := &Drop{}
	err := p.Apply(context.Background(), doc)
	assert.ErrorIs(t, err, piperrors.ErrDropped)
}

func TestFail(t *testing.T) {
	doc := mustDoc(t, `{}`)
	p := &Fail{Message: "bad event"}
	p.Tag = "guard"
	err := p.Apply(context.Background(), doc)

	var pe *piperrors.ProcessingError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "fail", pe.Type)
	assert.Equal(t, "guard", pe.Tag)
	assert.Contains(t, pe.Error(), "bad event")
}
