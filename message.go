package foundation

import (
	"bytes"

	"github.com/google/uuid"
)

// Attribute data types.
const (
	DataTypeString = "String"
	DataTypeBinary = "Binary"
)

// Well-known attribute names written by generated translators.
const (
	AttributeType               = "type"
	AttributeBodyType           = "bodyType"
	AttributeImplementationType = "implementationType"
)

// MessageAttribute is a typed attribute value attached to a Message.
// Exactly one of the string or binary value is set; use the Create*
// constructors to build attributes. The zero value is malformed.
type MessageAttribute struct {
	dataType    string
	stringValue *string
	binaryValue []byte
}

// CreateStringAttribute creates a string attribute with the String data type.
func CreateStringAttribute(value string) MessageAttribute {
	return CreateAttribute(DataTypeString, value)
}

// CreateBinaryAttribute creates a binary attribute with the Binary data type.
func CreateBinaryAttribute(value []byte) MessageAttribute {
	return CreateBinaryAttributeWithType(DataTypeBinary, value)
}

// CreateAttribute creates a string attribute with a custom data type.
func CreateAttribute(dataType, value string) MessageAttribute {
	return MessageAttribute{dataType: dataType, stringValue: &value}
}

// CreateBinaryAttributeWithType creates a binary attribute with a custom data type.
// The value is copied.
func CreateBinaryAttributeWithType(dataType string, value []byte) MessageAttribute {
	copied := make([]byte, len(value))
	copy(copied, value)
	return MessageAttribute{dataType: dataType, binaryValue: copied}
}

// DataType returns the attribute data type.
func (a MessageAttribute) DataType() string {
	return a.dataType
}

// StringValue returns the string value and whether the attribute holds one.
func (a MessageAttribute) StringValue() (string, bool) {
	if a.stringValue == nil {
		return "", false
	}
	return *a.stringValue, true
}

// BinaryValue returns the binary value and whether the attribute holds one.
func (a MessageAttribute) BinaryValue() ([]byte, bool) {
	if a.binaryValue == nil {
		return nil, false
	}
	return a.binaryValue, true
}

// IsValid reports whether exactly one value is set.
func (a MessageAttribute) IsValid() bool {
	return (a.stringValue == nil) != (a.binaryValue == nil)
}

// Equal reports whether two attributes carry the same type and value.
func (a MessageAttribute) Equal(other MessageAttribute) bool {
	if a.dataType != other.dataType {
		return false
	}
	as, aok := a.StringValue()
	os, ook := other.StringValue()
	if aok != ook || as != os {
		return false
	}
	ab, abok := a.BinaryValue()
	ob, obok := other.BinaryValue()
	return abok == obok && bytes.Equal(ab, ob)
}

// Message is the wire-level envelope: an optional id and type, a body and
// typed attributes. A Message is immutable once constructed.
type Message struct {
	id          *string
	messageType *string
	body        string
	attributes  map[string]MessageAttribute
}

// NewMessage creates a Message. A nil id or messageType means absent.
// The attributes map is copied.
func NewMessage(id, messageType *string, body string, attributes map[string]MessageAttribute) Message {
	return Message{
		id:          cloneString(id),
		messageType: cloneString(messageType),
		body:        body,
		attributes:  cloneAttributes(attributes),
	}
}

// CreateMessage creates a Message with no id, type or attributes.
func CreateMessage(body string) Message {
	return NewMessage(nil, nil, body, nil)
}

// CreateMessageWithAttributes creates a Message with no id or type.
func CreateMessageWithAttributes(body string, attributes map[string]MessageAttribute) Message {
	return NewMessage(nil, nil, body, attributes)
}

// ID returns the message id and whether it is present.
func (m Message) ID() (string, bool) {
	if m.id == nil {
		return "", false
	}
	return *m.id, true
}

// Type returns the message type and whether it is present.
func (m Message) Type() (string, bool) {
	if m.messageType == nil {
		return "", false
	}
	return *m.messageType, true
}

// Body returns the message body.
func (m Message) Body() string {
	return m.body
}

// Attribute returns the named attribute.
func (m Message) Attribute(name string) (MessageAttribute, bool) {
	attr, ok := m.attributes[name]
	return attr, ok
}

// Attributes returns a copy of all attributes.
func (m Message) Attributes() map[string]MessageAttribute {
	return cloneAttributes(m.attributes)
}

// WithID returns a copy of the message with the id set.
func (m Message) WithID(id string) Message {
	return NewMessage(&id, m.messageType, m.body, m.attributes)
}

// WithType returns a copy of the message with the type set.
func (m Message) WithType(messageType string) Message {
	return NewMessage(m.id, &messageType, m.body, m.attributes)
}

// WithGeneratedID returns a copy of the message with a random UUID as id.
func (m Message) WithGeneratedID() Message {
	return m.WithID(uuid.NewString())
}

// Equal reports whether two messages are structurally equal.
// A nil and an empty attribute map are equal.
func (m Message) Equal(other Message) bool {
	if !equalOptional(m.id, other.id) || !equalOptional(m.messageType, other.messageType) {
		return false
	}
	if m.body != other.body || len(m.attributes) != len(other.attributes) {
		return false
	}
	for name, attr := range m.attributes {
		o, ok := other.attributes[name]
		if !ok || !attr.Equal(o) {
			return false
		}
	}
	return true
}

// HasStringAttribute reports whether the message carries a string attribute
// with the given name and value. Generated translators use it in CanConvert.
func HasStringAttribute(message Message, name, value string) bool {
	attr, ok := message.Attribute(name)
	if !ok {
		return false
	}
	s, ok := attr.StringValue()
	return ok && s == value
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneAttributes(attributes map[string]MessageAttribute) map[string]MessageAttribute {
	out := make(map[string]MessageAttribute, len(attributes))
	for k, v := range attributes {
		out[k] = v
	}
	return out
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
