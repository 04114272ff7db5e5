package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack encodes bodies as MessagePack. Struct fields use their json tags so
// the same implementation type works with both codecs.
var MsgPack Codec = msgpackCodec{}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return NameMsgPack }

func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
