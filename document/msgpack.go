package document

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ToMsgpack serializes the document as MessagePack for compact binary
// transport between pipeline hosts. Mapping keys keep insertion order and
// Bytes elements map to the bin family, so binary payloads survive a
// round trip without base64 inflation.
func ToMsgpack(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeElement(enc, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromMsgpack decodes a MessagePack-encoded document produced by
// [ToMsgpack] or any encoder emitting a top-level map with string keys.
func FromMsgpack(data []byte) (Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	el, err := decodeElement(dec)
	if err != nil {
		return nil, err
	}
	m, ok := el.(*Mapping)
	if !ok {
		return nil, fmt.Errorf("msgpack document: top-level value is %s, want mapping", el.Kind())
	}
	return m, nil
}

func encodeElement(enc *msgpack.Encoder, el Element) error {
	switch e := el.(type) {
	case Null:
		return enc.EncodeNil()
	case Bool:
		return enc.EncodeBool(bool(e))
	case Int:
		return enc.EncodeInt(int64(e))
	case Float:
		return enc.EncodeFloat64(float64(e))
	case String:
		return enc.EncodeString(string(e))
	case Bytes:
		return enc.EncodeBytes(e)
	case *Array:
		if err := enc.EncodeArrayLen(e.Len()); err != nil {
			return err
		}
		for _, item := range e.Items() {
			if err := encodeElement(enc, item); err != nil {
				return err
			}
		}
		return nil
	case *Mapping:
		if err := enc.EncodeMapLen(e.Len()); err != nil {
			return err
		}
		for _, key := range e.keys {
			if err := enc.EncodeString(key); err != nil {
				return err
			}
			if err := encodeElement(enc, e.values[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("msgpack document: unsupported element %T", el)
	}
}

func decodeElement(dec *msgpack.Decoder) (Element, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return nil, err
		}
		return Null{}, nil

	case c == msgpcode.True, c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return nil, err
		}
		return Bool(b), nil

	case msgpcode.IsFixedNum(c),
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64,
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32, c == msgpcode.Uint64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return nil, err
		}
		return Int(i), nil

	case c == msgpcode.Float, c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil

	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		return String(s), nil

	case msgpcode.IsBin(c):
		raw, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return Bytes(raw), nil

	case msgpcode.IsFixedArray(c), c == msgpcode.Array16, c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		a := NewArray()
		for i := 0; i < n; i++ {
			el, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			a.Append(el)
		}
		return a, nil

	case msgpcode.IsFixedMap(c), c == msgpcode.Map16, c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		m := NewMapping()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			el, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, el)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("msgpack document: unsupported code %x", c)
	}
}
