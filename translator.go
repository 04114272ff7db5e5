package foundation

import (
	"encoding/base64"

	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// MessageTranslator converts a contract to and from a Message.
// Generated translators implement it for each contract.
type MessageTranslator[T any] interface {
	// CanConvert reports whether the message carries this contract.
	// It only inspects attributes and never decodes the body.
	CanConvert(message Message) bool

	// FromMessage decodes the message body into the contract implementation.
	FromMessage(message Message) (T, error)

	// ToMessage encodes the contract and attaches the routing attributes.
	ToMessage(input T) (Message, error)
}

// MessageConverter is the untyped view of a MessageTranslator used to route
// messages without knowing the contract type up front.
type MessageConverter interface {
	CanConvert(message Message) bool
	ConvertFromMessage(message Message) (any, error)
}

// FindConverter returns the first converter accepting the message.
func FindConverter(message Message, converters ...MessageConverter) (MessageConverter, error) {
	for _, c := range converters {
		if c.CanConvert(message) {
			return c, nil
		}
	}
	return nil, NewTranslatorNotFoundError(message)
}

// EncodeBody encodes v with the codec and returns the message body.
// Binary codecs are base64 armored.
func EncodeBody(c codec.Codec, v any) (string, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return "", NewEncodeError(c.Name()+" body", err)
	}
	if c.Binary() {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return string(data), nil
}

// DecodeBody decodes the message body into v with the codec.
// Failures are reported as DecodeError.
func DecodeBody(c codec.Codec, message Message, v any) error {
	data := []byte(message.Body())
	if c.Binary() {
		decoded, err := base64.StdEncoding.DecodeString(message.Body())
		if err != nil {
			return NewDecodeError(c.Name()+" body", err)
		}
		data = decoded
	}
	if err := c.Unmarshal(data, v); err != nil {
		return NewDecodeError(c.Name()+" body", err)
	}
	return nil
}
