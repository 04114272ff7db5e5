package foundation

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrHandlerNotFound indicates no handler resolves for a query, command or event.
	ErrHandlerNotFound = errors.New("foundation: handler not found")

	// ErrMalformedAttribute indicates a message attribute carries neither a string nor a binary value.
	ErrMalformedAttribute = errors.New("foundation: invalid message attribute")

	// ErrDecodeFailed indicates a message or message body could not be decoded.
	ErrDecodeFailed = errors.New("foundation: decode failed")

	// ErrEncodeFailed indicates a message body could not be encoded.
	ErrEncodeFailed = errors.New("foundation: encode failed")

	// ErrDecryptFailed indicates encrypted event data could not be decrypted.
	ErrDecryptFailed = errors.New("foundation: decrypt failed")

	// ErrTranslatorNotFound indicates no translator accepts a message.
	ErrTranslatorNotFound = errors.New("foundation: translator not found")

	// ErrDuplicateHandlerVersion indicates two handlers are declared for the same contract and version.
	ErrDuplicateHandlerVersion = errors.New("foundation: duplicate handler version")

	// ErrInvalidSettings indicates the generator settings are inconsistent.
	ErrInvalidSettings = errors.New("foundation: invalid settings")

	// ErrNilContract indicates a nil query, command or event was passed to a bus.
	ErrNilContract = errors.New("foundation: nil contract")

	// ErrHandlerPanicked indicates a handler panicked while processing a contract.
	ErrHandlerPanicked = errors.New("foundation: handler panicked")
)

// HandlerNotFoundError provides detailed information about a missing handler.
type HandlerNotFoundError struct {
	Bus          string
	ContractType string
}

// Error returns the error message.
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("foundation: no %s handler resolves for %q", e.Bus, e.ContractType)
}

// Is reports whether this error matches the target error.
func (e *HandlerNotFoundError) Is(target error) bool {
	return target == ErrHandlerNotFound
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *HandlerNotFoundError) Unwrap() error {
	return ErrHandlerNotFound
}

// NewHandlerNotFoundError creates a new HandlerNotFoundError.
func NewHandlerNotFoundError(bus, contractType string) *HandlerNotFoundError {
	return &HandlerNotFoundError{Bus: bus, ContractType: contractType}
}

// MalformedAttributeError reports an attribute with neither value set.
type MalformedAttributeError struct {
	Name string
}

// Error returns the error message.
func (e *MalformedAttributeError) Error() string {
	return fmt.Sprintf("foundation: invalid message attribute %q, the string value and binary value are both empty", e.Name)
}

// Is reports whether this error matches the target error.
func (e *MalformedAttributeError) Is(target error) bool {
	return target == ErrMalformedAttribute
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *MalformedAttributeError) Unwrap() error {
	return ErrMalformedAttribute
}

// NewMalformedAttributeError creates a new MalformedAttributeError.
func NewMalformedAttributeError(name string) *MalformedAttributeError {
	return &MalformedAttributeError{Name: name}
}

// DecodeError provides detailed information about a decoding failure.
type DecodeError struct {
	Target string
	Cause  error
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("foundation: failed to decode %s: %v", e.Target, e.Cause)
}

// Is reports whether this error matches the target error.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(target string, cause error) *DecodeError {
	return &DecodeError{Target: target, Cause: cause}
}

// EncodeError provides detailed information about an encoding failure.
type EncodeError struct {
	Target string
	Cause  error
}

// Error returns the error message.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("foundation: failed to encode %s: %v", e.Target, e.Cause)
}

// Is reports whether this error matches the target error.
func (e *EncodeError) Is(target error) bool {
	return target == ErrEncodeFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// NewEncodeError creates a new EncodeError.
func NewEncodeError(target string, cause error) *EncodeError {
	return &EncodeError{Target: target, Cause: cause}
}

// DecryptError is returned by encryptors when a ciphertext cannot be decrypted
// with the selected cipher. The event field processor recovers from it only
// when anonymization is allowed.
type DecryptError struct {
	CipherID  string
	Algorithm string
	Cause     error
}

// Error returns the error message.
func (e *DecryptError) Error() string {
	msg := fmt.Sprintf("foundation: failed to decrypt with cipher %q (%s)", e.CipherID, e.Algorithm)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether this error matches the target error.
func (e *DecryptError) Is(target error) bool {
	return target == ErrDecryptFailed
}

// Unwrap returns the underlying cause for errors.Unwrap().
func (e *DecryptError) Unwrap() error {
	return e.Cause
}

// NewDecryptError creates a new DecryptError.
func NewDecryptError(cipherID, algorithm string, cause error) *DecryptError {
	return &DecryptError{CipherID: cipherID, Algorithm: algorithm, Cause: cause}
}

// TranslatorNotFoundError reports a message no translator accepts.
type TranslatorNotFoundError struct {
	BodyType string
	Type     string
}

// Error returns the error message.
func (e *TranslatorNotFoundError) Error() string {
	return fmt.Sprintf("foundation: no translator accepts message (type=%q, bodyType=%q)", e.Type, e.BodyType)
}

// Is reports whether this error matches the target error.
func (e *TranslatorNotFoundError) Is(target error) bool {
	return target == ErrTranslatorNotFound
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *TranslatorNotFoundError) Unwrap() error {
	return ErrTranslatorNotFound
}

// NewTranslatorNotFoundError creates a TranslatorNotFoundError from the routing
// attributes of a message.
func NewTranslatorNotFoundError(message Message) *TranslatorNotFoundError {
	e := &TranslatorNotFoundError{}
	if attr, ok := message.Attribute(AttributeType); ok {
		e.Type, _ = attr.StringValue()
	}
	if attr, ok := message.Attribute(AttributeBodyType); ok {
		e.BodyType, _ = attr.StringValue()
	}
	return e
}

// DuplicateHandlerVersionError reports two handlers declared for the same
// contract and version.
type DuplicateHandlerVersionError struct {
	Contract string
	Version  int
	Handlers []string
}

// Error returns the error message.
func (e *DuplicateHandlerVersionError) Error() string {
	return fmt.Sprintf("foundation: contract %q declares version %d more than once (handlers: %s)",
		e.Contract, e.Version, strings.Join(e.Handlers, ", "))
}

// Is reports whether this error matches the target error.
func (e *DuplicateHandlerVersionError) Is(target error) bool {
	return target == ErrDuplicateHandlerVersion
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DuplicateHandlerVersionError) Unwrap() error {
	return ErrDuplicateHandlerVersion
}

// NewDuplicateHandlerVersionError creates a new DuplicateHandlerVersionError.
func NewDuplicateHandlerVersionError(contract string, version int, handlers ...string) *DuplicateHandlerVersionError {
	return &DuplicateHandlerVersionError{Contract: contract, Version: version, Handlers: handlers}
}

// SettingsError identifies the offending entry of an invalid settings bundle.
type SettingsError struct {
	Section string // "contracts", "handlers", "messaging", "events", ...
	Subject string
	Message string
}

// Error returns the error message.
func (e *SettingsError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("foundation: invalid %s settings: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("foundation: invalid %s settings for %q: %s", e.Section, e.Subject, e.Message)
}

// Is reports whether this error matches the target error.
func (e *SettingsError) Is(target error) bool {
	return target == ErrInvalidSettings
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *SettingsError) Unwrap() error {
	return ErrInvalidSettings
}

// NewSettingsError creates a new SettingsError.
func NewSettingsError(section, subject, message string) *SettingsError {
	return &SettingsError{Section: section, Subject: subject, Message: message}
}

// PanicError reports a handler panic recovered by the dispatch middleware.
type PanicError struct {
	Bus          string
	ContractType string
	Value        interface{}
	Stack        string
	// ContractData is the JSON form of the contract, when it could be encoded.
	ContractData string
}

// Error returns the error message.
func (e *PanicError) Error() string {
	return fmt.Sprintf("foundation: %s handler panicked while processing %q: %v", e.Bus, e.ContractType, e.Value)
}

// Is reports whether this error matches the target error.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanicked
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *PanicError) Unwrap() error {
	return ErrHandlerPanicked
}

// NewPanicError creates a new PanicError.
func NewPanicError(bus, contractType string, value interface{}, stack, contractData string) *PanicError {
	return &PanicError{
		Bus:          bus,
		ContractType: contractType,
		Value:        value,
		Stack:        stack,
		ContractData: contractData,
	}
}
