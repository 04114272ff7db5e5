package foundation

import (
	"encoding/base64"

	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// serializableMessage is the canonical JSON wire form of a Message.
type serializableMessage struct {
	ID         *string                          `json:"id"`
	Type       *string                          `json:"type"`
	Body       string                           `json:"body"`
	Attributes map[string]serializableAttribute `json:"attributes"`
}

type serializableAttribute struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Binary bool   `json:"binary"`
}

// SerializeMessage encodes a message into its JSON wire form.
// Binary attribute values are base64 encoded. An attribute without a value
// fails with a MalformedAttributeError.
func SerializeMessage(message Message) (string, error) {
	wire := serializableMessage{
		ID:         message.id,
		Type:       message.messageType,
		Body:       message.body,
		Attributes: make(map[string]serializableAttribute, len(message.attributes)),
	}

	for name, attr := range message.attributes {
		if b, ok := attr.BinaryValue(); ok {
			wire.Attributes[name] = serializableAttribute{
				Type:   attr.DataType(),
				Value:  base64.StdEncoding.EncodeToString(b),
				Binary: true,
			}
			continue
		}
		if s, ok := attr.StringValue(); ok {
			wire.Attributes[name] = serializableAttribute{
				Type:  attr.DataType(),
				Value: s,
			}
			continue
		}
		return "", NewMalformedAttributeError(name)
	}

	data, err := codec.JSON.Marshal(wire)
	if err != nil {
		return "", NewEncodeError("message", err)
	}
	return string(data), nil
}

// DeserializeMessage decodes a message from its JSON wire form.
func DeserializeMessage(input string) (Message, error) {
	var wire serializableMessage
	if err := codec.JSON.Unmarshal([]byte(input), &wire); err != nil {
		return Message{}, NewDecodeError("message", err)
	}

	attributes := make(map[string]MessageAttribute, len(wire.Attributes))
	for name, attr := range wire.Attributes {
		if !attr.Binary {
			attributes[name] = CreateAttribute(attr.Type, attr.Value)
			continue
		}
		b, err := base64.StdEncoding.DecodeString(attr.Value)
		if err != nil {
			return Message{}, NewDecodeError("attribute "+name, err)
		}
		attributes[name] = CreateBinaryAttributeWithType(attr.Type, b)
	}

	return Message{
		id:          wire.ID,
		messageType: wire.Type,
		body:        wire.Body,
		attributes:  attributes,
	}, nil
}
