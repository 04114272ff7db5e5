// Package codec provides the body codecs used by generated message translators.
//
// A codec turns a Go value into bytes and back. Message bodies are strings, so
// binary codecs are armored with base64 by foundation.EncodeBody and
// foundation.DecodeBody.
//
// Three codecs are available:
//
//	codec.JSON      // JSON through bytedance/sonic, encoding/json compatible
//	codec.MsgPack   // MessagePack through vmihailenco/msgpack
//	codec.ProtoJSON // protojson, values must implement proto.Message
//
// Codecs are looked up by name from generator settings:
//
//	c, ok := codec.Lookup("msgpack")
package codec

import (
	"errors"
	"fmt"
	"sort"
)

// Codec names used in generator settings.
const (
	NameJSON      = "json"
	NameMsgPack   = "msgpack"
	NameProtoJSON = "protojson"
)

var (
	// ErrNilValue indicates an attempt to encode a nil value.
	ErrNilValue = errors.New("codec: cannot encode nil value")

	// ErrEmptyData indicates an attempt to decode empty data.
	ErrEmptyData = errors.New("codec: cannot decode empty data")

	// ErrNotProtoMessage indicates the value does not implement proto.Message.
	ErrNotProtoMessage = errors.New("codec: value must implement proto.Message")
)

// Codec encodes and decodes message bodies.
type Codec interface {
	// Name returns the settings name of the codec.
	Name() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v, which must be a pointer.
	Unmarshal(data []byte, v any) error

	// Binary reports whether the encoded form needs text armoring.
	Binary() bool
}

var registry = map[string]Codec{
	NameJSON:      JSON,
	NameMsgPack:   MsgPack,
	NameProtoJSON: ProtoJSON,
}

// Lookup returns the codec registered under name.
// An empty name selects JSON.
func Lookup(name string) (Codec, bool) {
	if name == "" {
		return JSON, true
	}
	c, ok := registry[name]
	return c, ok
}

// MustLookup is like Lookup but panics on unknown names.
func MustLookup(name string) Codec {
	c, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("codec: unknown codec %q", name))
	}
	return c
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
