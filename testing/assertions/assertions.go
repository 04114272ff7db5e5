// Package assertions provides message assertion utilities for testing
// translators and code that exchanges foundation messages.
// It includes helpers for checking attributes, round-tripping contracts
// through translators, and generating message diffs.
package assertions

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/AshkanYarmoradi/go-foundation"
)

// TB is an alias for testing.TB interface to allow mocking in tests
type TB = testing.TB

// AssertMessageType checks that the message carries the expected type.
func AssertMessageType(t TB, message foundation.Message, expected string) {
	t.Helper()

	actual, ok := message.Type()
	if !ok {
		t.Errorf("Expected message type %s, message has no type", expected)
		return
	}
	if actual != expected {
		t.Errorf("Expected message type %s, got %s", expected, actual)
	}
}

// AssertMessageID checks that the message carries an id.
func AssertMessageID(t TB, message foundation.Message) {
	t.Helper()

	if id, ok := message.ID(); !ok || id == "" {
		t.Error("Expected message to carry an id")
	}
}

// AssertStringAttribute checks that the message carries a string attribute with the value.
func AssertStringAttribute(t TB, message foundation.Message, name, expected string) {
	t.Helper()

	attr, ok := message.Attribute(name)
	if !ok {
		t.Fatalf("Message has no attribute %s", name)
	}
	actual, ok := attr.StringValue()
	if !ok {
		t.Errorf("Attribute %s is not a string attribute", name)
		return
	}
	if actual != expected {
		t.Errorf("Attribute %s: expected %q, got %q", name, expected, actual)
	}
}

// AssertBinaryAttribute checks that the message carries a binary attribute with the value.
func AssertBinaryAttribute(t TB, message foundation.Message, name string, expected []byte) {
	t.Helper()

	attr, ok := message.Attribute(name)
	if !ok {
		t.Fatalf("Message has no attribute %s", name)
	}
	actual, ok := attr.BinaryValue()
	if !ok {
		t.Errorf("Attribute %s is not a binary attribute", name)
		return
	}
	if !bytes.Equal(actual, expected) {
		t.Errorf("Attribute %s: expected %v, got %v", name, expected, actual)
	}
}

// AssertNoAttribute checks that the message does not carry the attribute.
func AssertNoAttribute(t TB, message foundation.Message, name string) {
	t.Helper()

	if _, ok := message.Attribute(name); ok {
		t.Errorf("Expected no attribute %s", name)
	}
}

// AssertCanConvert checks that the converter accepts the message.
func AssertCanConvert(t TB, converter foundation.MessageConverter, message foundation.Message) {
	t.Helper()

	if !converter.CanConvert(message) {
		t.Errorf("%T does not accept message %s", converter, describe(message))
	}
}

// AssertCannotConvert checks that the converter rejects the message.
func AssertCannotConvert(t TB, converter foundation.MessageConverter, message foundation.Message) {
	t.Helper()

	if converter.CanConvert(message) {
		t.Errorf("%T unexpectedly accepts message %s", converter, describe(message))
	}
}

// AssertRoundTrip encodes input with the translator, checks the translator
// accepts the message and decodes it back, and compares the result with input.
// The message is returned for further assertions.
func AssertRoundTrip[T any](t TB, translator foundation.MessageTranslator[T], input T) foundation.Message {
	t.Helper()

	message, err := translator.ToMessage(input)
	if err != nil {
		t.Fatalf("ToMessage failed: %v", err)
	}
	if !translator.CanConvert(message) {
		t.Errorf("Translator does not accept its own message %s", describe(message))
	}

	output, err := translator.FromMessage(message)
	if err != nil {
		t.Fatalf("FromMessage failed: %v", err)
	}
	if !reflect.DeepEqual(input, output) {
		t.Errorf("Round trip mismatch:\nExpected: %+v\nActual: %+v", input, output)
	}
	return message
}

// MessageDiff represents a difference between expected and actual messages.
type MessageDiff struct {
	Field    string
	Expected string
	Actual   string
	Type     DiffType
}

// DiffType represents the type of difference.
type DiffType int

const (
	// DiffMissing indicates an expected field was not present.
	DiffMissing DiffType = iota
	// DiffExtra indicates an unexpected field was present.
	DiffExtra
	// DiffMismatch indicates field values did not match.
	DiffMismatch
)

// String returns a human-readable representation of the diff type.
func (d DiffType) String() string {
	switch d {
	case DiffMissing:
		return "missing"
	case DiffExtra:
		return "extra"
	case DiffMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// DiffMessages compares two messages field by field. Attributes are compared
// by name in sorted order.
func DiffMessages(expected, actual foundation.Message) []MessageDiff {
	var diffs []MessageDiff

	expID, expHasID := expected.ID()
	actID, actHasID := actual.ID()
	diffs = appendDiff(diffs, "id", expID, expHasID, actID, actHasID)

	expType, expHasType := expected.Type()
	actType, actHasType := actual.Type()
	diffs = appendDiff(diffs, "type", expType, expHasType, actType, actHasType)

	diffs = appendDiff(diffs, "body", expected.Body(), true, actual.Body(), true)

	expAttrs := expected.Attributes()
	actAttrs := actual.Attributes()
	names := make(map[string]struct{}, len(expAttrs)+len(actAttrs))
	for name := range expAttrs {
		names[name] = struct{}{}
	}
	for name := range actAttrs {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		exp, expOK := expAttrs[name]
		act, actOK := actAttrs[name]
		if expOK && actOK && exp.Equal(act) {
			continue
		}
		diffs = appendDiff(diffs, "attribute "+name, formatAttribute(exp), expOK, formatAttribute(act), actOK)
	}

	return diffs
}

func appendDiff(diffs []MessageDiff, field, expected string, hasExpected bool, actual string, hasActual bool) []MessageDiff {
	switch {
	case hasExpected && !hasActual:
		return append(diffs, MessageDiff{Field: field, Expected: expected, Type: DiffMissing})
	case !hasExpected && hasActual:
		return append(diffs, MessageDiff{Field: field, Actual: actual, Type: DiffExtra})
	case hasExpected && expected != actual:
		return append(diffs, MessageDiff{Field: field, Expected: expected, Actual: actual, Type: DiffMismatch})
	}
	return diffs
}

func formatAttribute(attr foundation.MessageAttribute) string {
	if b, ok := attr.BinaryValue(); ok {
		return fmt.Sprintf("%s(%v)", attr.DataType(), b)
	}
	s, _ := attr.StringValue()
	return fmt.Sprintf("%s(%q)", attr.DataType(), s)
}

// FormatDiffs formats message diffs as a human-readable string.
func FormatDiffs(diffs []MessageDiff) string {
	if len(diffs) == 0 {
		return "no differences"
	}

	var buf strings.Builder
	buf.WriteString("Message differences:\n")

	for _, diff := range diffs {
		buf.WriteString(formatDiff(diff))
	}

	return buf.String()
}

func formatDiff(diff MessageDiff) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("  %s (%s):\n", diff.Field, diff.Type))

	switch diff.Type {
	case DiffExtra:
		buf.WriteString(fmt.Sprintf("    + %s (unexpected)\n", diff.Actual))
	case DiffMissing:
		buf.WriteString(fmt.Sprintf("    - %s (missing)\n", diff.Expected))
	case DiffMismatch:
		buf.WriteString(fmt.Sprintf("    - %s\n", diff.Expected))
		buf.WriteString(fmt.Sprintf("    + %s\n", diff.Actual))
	}

	return buf.String()
}

// AssertMessagesEqual compares two messages and fails if they differ.
func AssertMessagesEqual(t TB, expected, actual foundation.Message) {
	t.Helper()

	diffs := DiffMessages(expected, actual)
	if len(diffs) > 0 {
		t.Error(FormatDiffs(diffs))
	}
}

func describe(message foundation.Message) string {
	var parts []string
	if messageType, ok := message.Type(); ok {
		parts = append(parts, "type="+messageType)
	}
	for _, name := range []string{foundation.AttributeType, foundation.AttributeBodyType} {
		if attr, ok := message.Attribute(name); ok {
			if s, ok := attr.StringValue(); ok {
				parts = append(parts, name+"="+s)
			}
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MessageMatcher is a function that checks if a message matches certain criteria.
type MessageMatcher func(message foundation.Message) bool

// MatchType returns a matcher that checks for a specific message type.
func MatchType(messageType string) MessageMatcher {
	return func(message foundation.Message) bool {
		actual, ok := message.Type()
		return ok && actual == messageType
	}
}

// MatchAttribute returns a matcher that checks for a string attribute value.
func MatchAttribute(name, value string) MessageMatcher {
	return func(message foundation.Message) bool {
		return foundation.HasStringAttribute(message, name, value)
	}
}

// MatchConverter returns a matcher that checks the converter accepts the message.
func MatchConverter(converter foundation.MessageConverter) MessageMatcher {
	return converter.CanConvert
}

// AssertAnyMatch checks that at least one message matches the matcher.
func AssertAnyMatch(t TB, messages []foundation.Message, matcher MessageMatcher) {
	t.Helper()

	for _, message := range messages {
		if matcher(message) {
			return
		}
	}

	t.Error("No message matched the criteria")
}

// AssertAllMatch checks that all messages match the matcher.
func AssertAllMatch(t TB, messages []foundation.Message, matcher MessageMatcher) {
	t.Helper()

	for i, message := range messages {
		if !matcher(message) {
			t.Errorf("Message %d did not match: %s", i, describe(message))
		}
	}
}

// AssertNoneMatch checks that no messages match the matcher.
func AssertNoneMatch(t TB, messages []foundation.Message, matcher MessageMatcher) {
	t.Helper()

	for i, message := range messages {
		if matcher(message) {
			t.Errorf("Message %d unexpectedly matched: %s", i, describe(message))
		}
	}
}

// CountMatches returns the number of messages that match the matcher.
func CountMatches(messages []foundation.Message, matcher MessageMatcher) int {
	count := 0
	for _, message := range messages {
		if matcher(message) {
			count++
		}
	}
	return count
}

// FilterMessages returns messages that match the matcher.
func FilterMessages(messages []foundation.Message, matcher MessageMatcher) []foundation.Message {
	var result []foundation.Message
	for _, message := range messages {
		if matcher(message) {
			result = append(result, message)
		}
	}
	return result
}
