package eventsourcing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/testing/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personFields = map[string]Setting{
	"name":      {},
	"ssn":       {Encrypted: true, Faked: "ssn"},
	"email":     {Encrypted: true, Faked: "email"},
	"createdAt": {Metadata: true},
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func TestProcessRawJSON(t *testing.T) {
	t.Run("partitions fields", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()
		raw := `{"name":"Alice","ssn":"123-45-6789","createdAt":"2024-01-01","ignored":true}`

		result, err := ProcessRawJSON(infra, personFields, raw)
		require.NoError(t, err)

		data := decode(t, result.Data)
		assert.Equal(t, "Alice", data["name"])
		assert.NotContains(t, data, "ssn")
		assert.NotContains(t, data, "ignored")
		assert.Equal(t, testutil.DefaultCipherID, data[EncryptedCipherIDKey])
		assert.Equal(t, testutil.DefaultAlgorithm, data[EncryptedAlgorithmKey])
		assert.NotEmpty(t, data[EncryptedDataKey])
		assert.NotContains(t, data[EncryptedDataKey], "123-45-6789")

		assert.JSONEq(t, `{"createdAt":"2024-01-01"}`, result.Metadata)
	})

	t.Run("no encrypted fields means no reserved keys", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()

		result, err := ProcessRawJSON(infra, personFields, `{"name":"Bob"}`)
		require.NoError(t, err)

		assert.JSONEq(t, `{"name":"Bob"}`, result.Data)
		assert.JSONEq(t, `{}`, result.Metadata)
		assert.Zero(t, infra.Current.Uses())
	})

	t.Run("invalid raw record", func(t *testing.T) {
		_, err := ProcessRawJSON(testutil.NewFakeInfrastructure(), personFields, `[1,2]`)
		assert.ErrorIs(t, err, foundation.ErrDecodeFailed)
	})

	t.Run("encryptor unavailable", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()
		infra.EncryptErr = errors.New("no key")

		_, err := ProcessRawJSON(infra, personFields, `{"ssn":"1"}`)
		assert.EqualError(t, err, "no key")
	})
}

func TestRebuildRawJSON(t *testing.T) {
	t.Run("round trips a record", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()
		fields := map[string]Setting{
			"name":      {},
			"ssn":       {Encrypted: true},
			"createdAt": {Metadata: true},
		}
		raw := `{"name":"Alice","ssn":"123-45-6789","createdAt":"2024-01-01"}`

		result, err := ProcessRawJSON(infra, fields, raw)
		require.NoError(t, err)

		rebuilt, err := RebuildRawJSON(infra, fields, result.Data, result.Metadata)
		require.NoError(t, err)
		assert.JSONEq(t, raw, rebuilt)
	})

	t.Run("preserves nested values", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()
		fields := map[string]Setting{
			"address": {Encrypted: true},
			"tags":    {},
		}
		raw := `{"address":{"city":"Oslo","zip":[1,2]},"tags":["a","b"]}`

		result, err := ProcessRawJSON(infra, fields, raw)
		require.NoError(t, err)

		rebuilt, err := RebuildRawJSON(infra, fields, result.Data, result.Metadata)
		require.NoError(t, err)
		assert.JSONEq(t, raw, rebuilt)
	})

	t.Run("uses the encryptor that produced the data", func(t *testing.T) {
		writer := testutil.NewFakeInfrastructure(testutil.WithEncryptor(testutil.NewFakeEncryptor("old", "aes")))
		reader := testutil.NewFakeInfrastructure()

		result, err := ProcessRawJSON(writer, personFields, `{"ssn":"1"}`)
		require.NoError(t, err)

		rebuilt, err := RebuildRawJSON(reader, personFields, result.Data, result.Metadata)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ssn":"1"}`, rebuilt)
	})

	t.Run("anonymizes when decryption fails and anonymization is allowed", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure(
			testutil.WithAnonymization(true),
			testutil.WithFakeData("name", "John Doe"),
		)
		fields := map[string]Setting{
			"name":      {Encrypted: true, Faked: "name"},
			"createdAt": {Metadata: true},
		}
		data := `{"__encrypted@cipherId":"test-cipher","__encrypted@algorithm":"base64","__encrypted@data":"corrupted"}`

		rebuilt, err := RebuildRawJSON(infra, fields, data, `{"createdAt":"2024-01-01"}`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"John Doe","createdAt":"2024-01-01"}`, rebuilt)
	})

	t.Run("propagates decrypt error when anonymization is not allowed", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure(testutil.WithFakeData("name", "John Doe"))
		data := `{"__encrypted@cipherId":"test-cipher","__encrypted@algorithm":"base64","__encrypted@data":"corrupted"}`

		_, err := RebuildRawJSON(infra, personFields, data, `{}`)
		assert.ErrorIs(t, err, foundation.ErrDecryptFailed)
	})

	t.Run("plaintext that is not an object is a decrypt failure", func(t *testing.T) {
		infra := testutil.NewFakeInfrastructure()
		ciphertext, err := infra.Current.Encrypt(`"scalar"`)
		require.NoError(t, err)
		data, err := json.Marshal(map[string]string{
			EncryptedCipherIDKey:  testutil.DefaultCipherID,
			EncryptedAlgorithmKey: testutil.DefaultAlgorithm,
			EncryptedDataKey:      ciphertext,
		})
		require.NoError(t, err)

		_, err = RebuildRawJSON(infra, personFields, string(data), `{}`)
		assert.ErrorIs(t, err, foundation.ErrDecryptFailed)
	})

	t.Run("incomplete reserved keys", func(t *testing.T) {
		_, err := RebuildRawJSON(testutil.NewFakeInfrastructure(), personFields, `{"__encrypted@data":"x"}`, `{}`)
		assert.ErrorIs(t, err, ErrIncompleteEncryptedData)
	})

	t.Run("invalid metadata", func(t *testing.T) {
		_, err := RebuildRawJSON(testutil.NewFakeInfrastructure(), personFields, `{}`, `nope`)
		assert.ErrorIs(t, err, foundation.ErrDecodeFailed)
	})
}

func TestAnonymize(t *testing.T) {
	faker := testutil.FakeFaker{
		"name":   "John Doe",
		"age":    42,
		"score":  1.5,
		"vip":    true,
		"number": json.Number("7"),
		"struct": struct{ X int }{1},
		"nil":    nil,
	}
	fields := map[string]Setting{
		"name":     {Encrypted: true, Faked: "name"},
		"age":      {Encrypted: true, Faked: "age"},
		"score":    {Encrypted: true, Faked: "score"},
		"vip":      {Encrypted: true, Faked: "vip"},
		"number":   {Encrypted: true, Faked: "number"},
		"complex":  {Encrypted: true, Faked: "struct"},
		"missing":  {Encrypted: true, Faked: "nil"},
		"plain":    {Faked: "name"},
		"untagged": {Encrypted: true},
	}

	result, err := anonymize(faker, fields)
	require.NoError(t, err)

	out := map[string]string{}
	for k, v := range result {
		out[k] = string(v)
	}
	assert.Equal(t, map[string]string{
		"name":   `"John Doe"`,
		"age":    `42`,
		"score":  `1.5`,
		"vip":    `true`,
		"number": `7`,
	}, out)
}
