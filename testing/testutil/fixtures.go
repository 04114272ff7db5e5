package testutil

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/AshkanYarmoradi/go-foundation"
)

// Default cipher identity of FakeEncryptor.
const (
	DefaultCipherID  = "test-cipher"
	DefaultAlgorithm = "base64"
)

// FakeEncryptor is a reversible, non-secret encryptor. Ciphertexts carry the
// cipher id so decrypting with another cipher fails with a DecryptError.
type FakeEncryptor struct {
	ID   string
	Alg  string
	mu   sync.Mutex
	uses int
}

// NewFakeEncryptor creates a FakeEncryptor.
func NewFakeEncryptor(cipherID, algorithm string) *FakeEncryptor {
	return &FakeEncryptor{ID: cipherID, Alg: algorithm}
}

// CipherID implements foundation.Encryptor.
func (e *FakeEncryptor) CipherID() string { return e.ID }

// Algorithm implements foundation.Encryptor.
func (e *FakeEncryptor) Algorithm() string { return e.Alg }

// Encrypt implements foundation.Encryptor.
func (e *FakeEncryptor) Encrypt(plaintext string) (string, error) {
	e.mu.Lock()
	e.uses++
	e.mu.Unlock()
	return e.ID + ":" + base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

// Decrypt implements foundation.Encryptor.
func (e *FakeEncryptor) Decrypt(ciphertext string) (string, error) {
	e.mu.Lock()
	e.uses++
	e.mu.Unlock()

	prefix := e.ID + ":"
	if !strings.HasPrefix(ciphertext, prefix) {
		return "", foundation.NewDecryptError(e.ID, e.Alg, fmt.Errorf("ciphertext was not produced by %q", e.ID))
	}
	plain, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, prefix))
	if err != nil {
		return "", foundation.NewDecryptError(e.ID, e.Alg, err)
	}
	return string(plain), nil
}

// Uses returns how many times Encrypt or Decrypt was called.
func (e *FakeEncryptor) Uses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uses
}

// FakeEnvironment is a foundation.Environment with a fixed answer.
type FakeEnvironment struct {
	Anonymization bool
}

// AllowAnonymization implements foundation.Environment.
func (e FakeEnvironment) AllowAnonymization() bool { return e.Anonymization }

// FakeFaker returns canned values per tag. Unknown tags yield nil.
type FakeFaker map[string]any

// MakeFakeData implements foundation.Faker.
func (f FakeFaker) MakeFakeData(tag string) any { return f[tag] }

// FakeInfrastructure is an in-memory foundation.Infrastructure.
type FakeInfrastructure struct {
	Current     *FakeEncryptor
	Environ     FakeEnvironment
	Fakes       FakeFaker
	EncryptErr  error
	encryptors  map[string]*FakeEncryptor
	encryptorMu sync.Mutex
}

// InfrastructureOption configures a FakeInfrastructure.
type InfrastructureOption func(*FakeInfrastructure)

// WithAnonymization sets whether the environment allows anonymization.
func WithAnonymization(allowed bool) InfrastructureOption {
	return func(i *FakeInfrastructure) {
		i.Environ.Anonymization = allowed
	}
}

// WithFakeData registers a fake value for a tag.
func WithFakeData(tag string, value any) InfrastructureOption {
	return func(i *FakeInfrastructure) {
		i.Fakes[tag] = value
	}
}

// WithEncryptor replaces the current encryptor.
func WithEncryptor(e *FakeEncryptor) InfrastructureOption {
	return func(i *FakeInfrastructure) {
		i.Current = e
	}
}

// NewFakeInfrastructure creates a FakeInfrastructure using the default cipher.
func NewFakeInfrastructure(opts ...InfrastructureOption) *FakeInfrastructure {
	infra := &FakeInfrastructure{
		Current:    NewFakeEncryptor(DefaultCipherID, DefaultAlgorithm),
		Fakes:      FakeFaker{},
		encryptors: make(map[string]*FakeEncryptor),
	}
	for _, opt := range opts {
		opt(infra)
	}
	return infra
}

// Encryptor implements foundation.Infrastructure.
func (i *FakeInfrastructure) Encryptor() (foundation.Encryptor, error) {
	if i.EncryptErr != nil {
		return nil, i.EncryptErr
	}
	return i.Current, nil
}

// EncryptorFor implements foundation.Infrastructure. The current encryptor is
// returned for its own identity; any other identity gets a fresh encryptor.
func (i *FakeInfrastructure) EncryptorFor(cipherID, algorithm string) (foundation.Encryptor, error) {
	if cipherID == i.Current.ID && algorithm == i.Current.Alg {
		return i.Current, nil
	}

	i.encryptorMu.Lock()
	defer i.encryptorMu.Unlock()
	key := cipherID + "/" + algorithm
	e, ok := i.encryptors[key]
	if !ok {
		e = NewFakeEncryptor(cipherID, algorithm)
		i.encryptors[key] = e
	}
	return e, nil
}

// Environment implements foundation.Infrastructure.
func (i *FakeInfrastructure) Environment() foundation.Environment { return i.Environ }

// Faker implements foundation.Infrastructure.
func (i *FakeInfrastructure) Faker() foundation.Faker { return i.Fakes }
