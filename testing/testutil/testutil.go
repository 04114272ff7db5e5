// Package testutil provides test utilities and fixtures for code built on
// go-foundation: an in-memory Infrastructure with a reversible encryptor, a
// table-driven faker and a configurable environment.
package testutil

import (
	"testing"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/stretchr/testify/require"
)

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// MustSerialize serializes a message or fails the test.
func MustSerialize(t testing.TB, message foundation.Message) string {
	t.Helper()
	out, err := foundation.SerializeMessage(message)
	require.NoError(t, err)
	return out
}

// MustDeserialize deserializes a message or fails the test.
func MustDeserialize(t testing.TB, input string) foundation.Message {
	t.Helper()
	out, err := foundation.DeserializeMessage(input)
	require.NoError(t, err)
	return out
}
