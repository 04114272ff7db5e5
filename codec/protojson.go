package codec

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ProtoJSON encodes protobuf messages with their canonical JSON mapping.
var ProtoJSON Codec = protoJSONCodec{
	marshal:   protojson.MarshalOptions{UseProtoNames: false},
	unmarshal: protojson.UnmarshalOptions{DiscardUnknown: true},
}

type protoJSONCodec struct {
	marshal   protojson.MarshalOptions
	unmarshal protojson.UnmarshalOptions
}

func (protoJSONCodec) Name() string { return NameProtoJSON }

func (protoJSONCodec) Binary() bool { return false }

func (c protoJSONCodec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, ErrNotProtoMessage
	}
	return c.marshal.Marshal(msg)
}

func (c protoJSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	msg, ok := v.(proto.Message)
	if !ok {
		return ErrNotProtoMessage
	}
	return c.unmarshal.Unmarshal(data, msg)
}
