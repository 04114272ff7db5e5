// Package eventsourcing splits raw event records into stored partitions and
// rebuilds them, encrypting the fields marked as sensitive.
//
// A record is partitioned by per-field settings:
//
//	fields := map[string]eventsourcing.Setting{
//	    "name":      {},
//	    "ssn":       {Encrypted: true, Faked: "ssn"},
//	    "createdAt": {Metadata: true},
//	}
//
//	result, err := eventsourcing.ProcessRawJSON(infra, fields, raw)
//	raw, err = eventsourcing.RebuildRawJSON(infra, fields, result.Data, result.Metadata)
//
// Fields without a setting are dropped. Encrypted fields are stored as one
// ciphertext under reserved keys of the data partition.
package eventsourcing

import (
	"encoding/json"
	"errors"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// Reserved data keys holding the encrypted partition.
const (
	EncryptedCipherIDKey  = "__encrypted@cipherId"
	EncryptedAlgorithmKey = "__encrypted@algorithm"
	EncryptedDataKey      = "__encrypted@data"
)

// ErrIncompleteEncryptedData is returned when only some of the reserved
// encrypted keys are present in a data partition.
var ErrIncompleteEncryptedData = errors.New("foundation: incomplete encrypted data")

// Setting controls how a single field is stored.
type Setting struct {
	Metadata  bool   `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Encrypted bool   `yaml:"encrypted,omitempty" json:"encrypted,omitempty"`
	Faked     string `yaml:"faked,omitempty" json:"faked,omitempty"`
}

// ProcessResult holds the stored partitions of a record, both JSON objects.
type ProcessResult struct {
	Data     string
	Metadata string
}

type object map[string]json.RawMessage

// ProcessRawJSON partitions a raw JSON object into data and metadata.
// Encrypted fields are encrypted together with infra's current encryptor.
func ProcessRawJSON(infra foundation.Infrastructure, fields map[string]Setting, raw string) (ProcessResult, error) {
	record, err := decodeObject("raw record", raw)
	if err != nil {
		return ProcessResult{}, err
	}

	data := object{}
	metadata := object{}
	encrypted := object{}

	for name, value := range record {
		field, ok := fields[name]
		if !ok {
			continue
		}
		switch {
		case field.Metadata:
			metadata[name] = value
		case field.Encrypted:
			encrypted[name] = value
		default:
			data[name] = value
		}
	}

	if err := encrypt(infra, encrypted, data); err != nil {
		return ProcessResult{}, err
	}

	dataJSON, err := encodeObject("data", data)
	if err != nil {
		return ProcessResult{}, err
	}
	metadataJSON, err := encodeObject("metadata", metadata)
	if err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{Data: dataJSON, Metadata: metadataJSON}, nil
}

// RebuildRawJSON merges the data and metadata partitions back into the raw
// record. When the data partition carries an encrypted payload it is decrypted
// with the encryptor that produced it.
//
// A decrypt failure is returned unless the environment allows anonymization,
// in which case every encrypted field with a Faked tag is filled with fake data.
func RebuildRawJSON(infra foundation.Infrastructure, fields map[string]Setting, data, metadata string) (string, error) {
	dataObject, err := decodeObject("data", data)
	if err != nil {
		return "", err
	}
	metadataObject, err := decodeObject("metadata", metadata)
	if err != nil {
		return "", err
	}

	raw := object{}
	for name, value := range metadataObject {
		raw[name] = value
	}

	hasEncrypted := false
	for name, value := range dataObject {
		if isReservedKey(name) {
			hasEncrypted = true
			continue
		}
		raw[name] = value
	}

	if hasEncrypted {
		if err := decrypt(infra, fields, dataObject, raw); err != nil {
			return "", err
		}
	}

	return encodeObject("raw record", raw)
}

func isReservedKey(name string) bool {
	return name == EncryptedCipherIDKey || name == EncryptedAlgorithmKey || name == EncryptedDataKey
}

func encrypt(infra foundation.Infrastructure, encrypted, data object) error {
	if len(encrypted) == 0 {
		return nil
	}

	encryptor, err := infra.Encryptor()
	if err != nil {
		return err
	}
	plaintext, err := encodeObject("encrypted fields", encrypted)
	if err != nil {
		return err
	}
	ciphertext, err := encryptor.Encrypt(plaintext)
	if err != nil {
		return err
	}

	for key, value := range map[string]string{
		EncryptedCipherIDKey:  encryptor.CipherID(),
		EncryptedAlgorithmKey: encryptor.Algorithm(),
		EncryptedDataKey:      ciphertext,
	} {
		encoded, err := codec.JSON.Marshal(value)
		if err != nil {
			return foundation.NewEncodeError(key, err)
		}
		data[key] = encoded
	}
	return nil
}

func decrypt(infra foundation.Infrastructure, fields map[string]Setting, data, raw object) error {
	var id, alg, payload string
	for key, target := range map[string]*string{
		EncryptedCipherIDKey:  &id,
		EncryptedAlgorithmKey: &alg,
		EncryptedDataKey:      &payload,
	} {
		value, ok := data[key]
		if !ok {
			return ErrIncompleteEncryptedData
		}
		if err := codec.JSON.Unmarshal(value, target); err != nil {
			return foundation.NewDecodeError(key, err)
		}
	}

	encryptor, err := infra.EncryptorFor(id, alg)
	if err != nil {
		return err
	}

	plain, err := decryptObject(encryptor, payload)
	if err == nil {
		for name, value := range plain {
			raw[name] = value
		}
		return nil
	}

	if !errors.Is(err, foundation.ErrDecryptFailed) || !infra.Environment().AllowAnonymization() {
		return err
	}

	fake, err := anonymize(infra.Faker(), fields)
	if err != nil {
		return err
	}
	for name, value := range fake {
		raw[name] = value
	}
	return nil
}

// decryptObject decrypts a payload and decodes it. A plaintext that is not a
// JSON object is reported as a DecryptError.
func decryptObject(encryptor foundation.Encryptor, payload string) (object, error) {
	plaintext, err := encryptor.Decrypt(payload)
	if err != nil {
		return nil, err
	}
	var plain object
	if err := codec.JSON.Unmarshal([]byte(plaintext), &plain); err != nil || plain == nil {
		if err == nil {
			err = errors.New("plaintext is not a JSON object")
		}
		return nil, foundation.NewDecryptError(encryptor.CipherID(), encryptor.Algorithm(), err)
	}
	return plain, nil
}

func anonymize(faker foundation.Faker, fields map[string]Setting) (object, error) {
	result := object{}
	for name, field := range fields {
		if !field.Encrypted || field.Faked == "" {
			continue
		}
		value := faker.MakeFakeData(field.Faked)
		if !isScalar(value) {
			continue
		}
		encoded, err := codec.JSON.Marshal(value)
		if err != nil {
			return nil, foundation.NewEncodeError("fake "+name, err)
		}
		result[name] = encoded
	}
	return result, nil
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func decodeObject(target, input string) (object, error) {
	var out object
	if err := codec.JSON.Unmarshal([]byte(input), &out); err != nil {
		return nil, foundation.NewDecodeError(target, err)
	}
	if out == nil {
		out = object{}
	}
	return out, nil
}

func encodeObject(target string, o object) (string, error) {
	data, err := codec.JSON.Marshal(o)
	if err != nil {
		return "", foundation.NewEncodeError(target, err)
	}
	return string(data), nil
}
