package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	doc, err := FromJSON([]byte(`{"zebra":1,"apple":{"nested":[1,2.5,"three",true,null]}}`))
	require.NoError(t, err)

	// JSON object key order survives decoding.
	assert.Equal(t, []string{"zebra", "apple"}, doc.Keys())

	apple, ok := doc.Get("apple")
	require.True(t, ok)
	nested, ok := apple.(*Mapping).Get("nested")
	require.True(t, ok)

	arr := nested.(*Array)
	require.Equal(t, 5, arr.Len())
	items := arr.Items()
	assert.Equal(t, Int(1), items[0])
	assert.Equal(t, Float(2.5), items[1])
	assert.Equal(t, String("three"), items[2])
	assert.Equal(t, Bool(true), items[3])
	assert.Equal(t, Null{}, items[4])
}

func TestFromJSONErrors(t *testing.T) {
	t.Run("malformed input", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"unterminated":`))
		require.Error(t, err)
	})

	t.Run("non-mapping root", func(t *testing.T) {
		_, err := FromJSON([]byte(`[1,2,3]`))
		require.Error(t, err)
	})

	t.Run("empty input is an empty document", func(t *testing.T) {
		doc, err := FromJSON(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, doc.Len())
	})
}

func TestFromYAML(t *testing.T) {
	doc, err := FromYAML([]byte("first: 1\nsecond:\n  - a\n  - b\nflag: true\nlegacy: yes\nblob: !!binary aGVsbG8=\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "flag", "legacy", "blob"}, doc.Keys())

	flag, _ := doc.Get("flag")
	assert.Equal(t, Bool(true), flag)

	// YAML 1.2 resolves the 1.1 boolean spellings as plain strings.
	legacy, _ := doc.Get("legacy")
	assert.Equal(t, String("yes"), legacy)

	blob, _ := doc.Get("blob")
	assert.Equal(t, Bytes("hello"), blob)
}

func TestToJSONStableOrder(t *testing.T) {
	doc := NewMapping()
	doc.Set("z", Int(1))
	doc.Set("a", NewArray(String("x"), Null{}))
	doc.Set("m", func() *Mapping {
		m := NewMapping()
		m.Set("k2", Bool(false))
		m.Set("k1", Float(1.5))
		return m
	}())

	out, err := ToJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":["x",null],"m":{"k2":false,"k1":1.5}}`, string(out))
}

func TestJSONRoundTrip(t *testing.T) {
	in := []byte(`{"b":1,"a":{"c":[true,null,"s"],"d":2.25}}`)
	doc, err := FromJSON(in)
	require.NoError(t, err)
	out, err := ToJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, string(in), string(out))
}

func TestFromValue(t *testing.T) {
	el, err := FromValue(map[string]any{"n": nil, "list": []any{1, "two"}})
	require.NoError(t, err)
	m := el.(*Mapping)

	n, _ := m.Get("n")
	assert.Equal(t, Null{}, n)

	list, _ := m.Get("list")
	items := list.(*Array).Items()
	assert.Equal(t, Int(1), items[0])
	assert.Equal(t, String("two"), items[1])

	_, err = FromValue(struct{}{})
	assert.Error(t, err)
}

func TestToValue(t *testing.T) {
	doc, err := FromJSON([]byte(`{"i":3,"f":1.5,"s":"x","b":true,"n":null,"a":[1]}`))
	require.NoError(t, err)
	v := ToValue(doc).(map[string]any)
	assert.Equal(t, int64(3), v["i"])
	assert.Equal(t, 1.5, v["f"])
	assert.Equal(t, "x", v["s"])
	assert.Equal(t, true, v["b"])
	assert.Nil(t, v["n"])
	assert.Equal(t, []any{int64(1)}, v["a"])
}

func TestMsgpackRoundTrip(t *testing.T) {
	doc := NewMapping()
	doc.Set("text", String("hello"))
	doc.Set("count", Int(-12))
	doc.Set("ratio", Float(0.5))
	doc.Set("ok", Bool(true))
	doc.Set("none", Null{})
	doc.Set("payload", Bytes{0x00, 0xff, 0x10})
	doc.Set("items", NewArray(Int(1), String("two"), NewArray()))

	inner := NewMapping()
	inner.Set("z", Int(1))
	inner.Set("a", Int(2))
	doc.Set("nested", inner)

	data, err := ToMsgpack(doc)
	require.NoError(t, err)

	back, err := FromMsgpack(data)
	require.NoError(t, err)
	require.True(t, doc.Equal(back))

	// Key order survives the binary round trip as well.
	assert.Equal(t, doc.Keys(), back.Keys())
	nested, _ := back.Get("nested")
	assert.Equal(t, []string{"z", "a"}, nested.(*Mapping).Keys())

	// Bytes stay bytes rather than becoming strings.
	payload, _ := back.Get("payload")
	assert.Equal(t, KindBytes, payload.Kind())
}

func TestFromMsgpackRejectsNonMapping(t *testing.T) {
	data, err := ToMsgpack(NewMapping())
	require.NoError(t, err)
	_, err = FromMsgpack(data)
	require.NoError(t, err)

	// An array payload is not a document.
	var buf []byte
	buf = append(buf, 0x91, 0x01) // [1]
	_, err = FromMsgpack(buf)
	assert.Error(t, err)
}
