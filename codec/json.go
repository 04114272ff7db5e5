package codec

import (
	"github.com/bytedance/sonic"
)

var sonicStd = sonic.ConfigStd

// JSON is the default codec. It is byte-compatible with encoding/json.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return NameJSON }

func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	return sonicStd.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	return sonicStd.Unmarshal(data, v)
}
