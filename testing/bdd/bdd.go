// Package bdd provides BDD-style test fixtures for handlers wired through
// buses and translators. It enables expressive Given-When-Then testing of
// what a bus returns for a query, command or event and of which translator
// accepts a message.
package bdd

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/AshkanYarmoradi/go-foundation"
)

// TB is an alias for testing.TB interface to allow mocking in tests
type TB = testing.TB

// Verifier is implemented by mocks checked at the end of a scenario, such as
// the mockable buses of the mocking package.
type Verifier interface {
	AssertExpectations(t TB) bool
}

// outcome holds the result of the When step.
type outcome struct {
	t        TB
	ctx      context.Context
	err      error
	executed bool
	mocks    []Verifier
}

func (o *outcome) mustHaveRun(step string) {
	o.t.Helper()
	if !o.executed {
		o.t.Fatalf("bdd: %s must be called after When() - nothing was processed", step)
	}
}

func (o *outcome) succeeds() {
	o.t.Helper()
	o.mustHaveRun("ThenSucceeds()")
	if o.err != nil {
		o.t.Fatalf("Expected success but got error: %v", o.err)
	}
}

func (o *outcome) fails(expectedErr error) {
	o.t.Helper()
	o.mustHaveRun("ThenFails()")
	if o.err == nil {
		o.t.Fatal("Expected failure but got success")
	}
	if !errors.Is(o.err, expectedErr) {
		o.t.Errorf("Expected error %v, got %v", expectedErr, o.err)
	}
}

func (o *outcome) errorContains(substring string) {
	o.t.Helper()
	o.mustHaveRun("ThenErrorContains()")
	if o.err == nil {
		o.t.Fatalf("Expected error containing %q but got success", substring)
	}
	if !strings.Contains(o.err.Error(), substring) {
		o.t.Errorf("Expected error containing %q, got %q", substring, o.err.Error())
	}
}

func (o *outcome) verify() {
	o.t.Helper()
	for _, m := range o.mocks {
		m.AssertExpectations(o.t)
	}
}

// =============================================================================
// Query Fixture
// =============================================================================

// QueryFixture provides BDD-style testing for a query bus.
type QueryFixture struct {
	outcome
	bus    foundation.QueryBus
	result any
}

// GivenQueryBus creates a query fixture for the bus.
func GivenQueryBus(t TB, bus foundation.QueryBus) *QueryFixture {
	t.Helper()
	return &QueryFixture{outcome: outcome{t: t, ctx: context.Background()}, bus: bus}
}

// WithContext sets a custom context for processing.
func (f *QueryFixture) WithContext(ctx context.Context) *QueryFixture {
	f.ctx = ctx
	return f
}

// WithMocks registers mocks verified by ThenVerified.
func (f *QueryFixture) WithMocks(mocks ...Verifier) *QueryFixture {
	f.mocks = append(f.mocks, mocks...)
	return f
}

// When processes the query.
func (f *QueryFixture) When(query foundation.Query) *QueryFixture {
	f.t.Helper()
	f.result, f.err = f.bus.Process(f.ctx, query)
	f.executed = true
	return f
}

// ThenReturns asserts the query succeeded with the expected result.
func (f *QueryFixture) ThenReturns(expected any) *QueryFixture {
	f.t.Helper()
	f.succeeds()
	if !reflect.DeepEqual(f.result, expected) {
		f.t.Errorf("Expected result %+v, got %+v", expected, f.result)
	}
	return f
}

// ThenSucceeds asserts the query succeeded.
func (f *QueryFixture) ThenSucceeds() *QueryFixture {
	f.t.Helper()
	f.succeeds()
	return f
}

// ThenFails asserts the query failed with the expected error.
func (f *QueryFixture) ThenFails(expectedErr error) *QueryFixture {
	f.t.Helper()
	f.fails(expectedErr)
	return f
}

// ThenErrorContains asserts the error message contains the substring.
func (f *QueryFixture) ThenErrorContains(substring string) *QueryFixture {
	f.t.Helper()
	f.errorContains(substring)
	return f
}

// ThenVerified asserts the expectations of every registered mock.
func (f *QueryFixture) ThenVerified() {
	f.t.Helper()
	f.verify()
}

// Result returns the query result.
func (f *QueryFixture) Result() any {
	return f.result
}

// =============================================================================
// Command Fixture
// =============================================================================

// CommandFixture provides BDD-style testing for a command bus.
type CommandFixture struct {
	outcome
	bus foundation.CommandBus
}

// GivenCommandBus creates a command fixture for the bus.
func GivenCommandBus(t TB, bus foundation.CommandBus) *CommandFixture {
	t.Helper()
	return &CommandFixture{outcome: outcome{t: t, ctx: context.Background()}, bus: bus}
}

// WithContext sets a custom context for processing.
func (f *CommandFixture) WithContext(ctx context.Context) *CommandFixture {
	f.ctx = ctx
	return f
}

// WithMocks registers mocks verified by ThenVerified.
func (f *CommandFixture) WithMocks(mocks ...Verifier) *CommandFixture {
	f.mocks = append(f.mocks, mocks...)
	return f
}

// When processes the commands in order and stops at the first error.
func (f *CommandFixture) When(commands ...foundation.Command) *CommandFixture {
	f.t.Helper()
	for _, command := range commands {
		if f.err = f.bus.Process(f.ctx, command); f.err != nil {
			break
		}
	}
	f.executed = true
	return f
}

// ThenSucceeds asserts every command succeeded.
func (f *CommandFixture) ThenSucceeds() *CommandFixture {
	f.t.Helper()
	f.succeeds()
	return f
}

// ThenFails asserts a command failed with the expected error.
func (f *CommandFixture) ThenFails(expectedErr error) *CommandFixture {
	f.t.Helper()
	f.fails(expectedErr)
	return f
}

// ThenErrorContains asserts the error message contains the substring.
func (f *CommandFixture) ThenErrorContains(substring string) *CommandFixture {
	f.t.Helper()
	f.errorContains(substring)
	return f
}

// ThenVerified asserts the expectations of every registered mock.
func (f *CommandFixture) ThenVerified() {
	f.t.Helper()
	f.verify()
}

// =============================================================================
// Event Fixture
// =============================================================================

// EventFixture provides BDD-style testing for an event bus.
type EventFixture struct {
	outcome
	bus foundation.EventBus
}

// GivenEventBus creates an event fixture for the bus.
func GivenEventBus(t TB, bus foundation.EventBus) *EventFixture {
	t.Helper()
	return &EventFixture{outcome: outcome{t: t, ctx: context.Background()}, bus: bus}
}

// WithContext sets a custom context for processing.
func (f *EventFixture) WithContext(ctx context.Context) *EventFixture {
	f.ctx = ctx
	return f
}

// WithMocks registers mocks verified by ThenVerified.
func (f *EventFixture) WithMocks(mocks ...Verifier) *EventFixture {
	f.mocks = append(f.mocks, mocks...)
	return f
}

// When publishes the events in order and stops at the first error.
func (f *EventFixture) When(events ...foundation.Event) *EventFixture {
	f.t.Helper()
	for _, event := range events {
		if f.err = f.bus.Process(f.ctx, event); f.err != nil {
			break
		}
	}
	f.executed = true
	return f
}

// ThenSucceeds asserts every event was handled.
func (f *EventFixture) ThenSucceeds() *EventFixture {
	f.t.Helper()
	f.succeeds()
	return f
}

// ThenFails asserts an event failed with the expected error.
func (f *EventFixture) ThenFails(expectedErr error) *EventFixture {
	f.t.Helper()
	f.fails(expectedErr)
	return f
}

// ThenErrorContains asserts the error message contains the substring.
func (f *EventFixture) ThenErrorContains(substring string) *EventFixture {
	f.t.Helper()
	f.errorContains(substring)
	return f
}

// ThenVerified asserts the expectations of every registered mock.
func (f *EventFixture) ThenVerified() {
	f.t.Helper()
	f.verify()
}

// =============================================================================
// Message Fixture
// =============================================================================

// MessageFixture provides BDD-style testing for message routing.
type MessageFixture struct {
	outcome
	message   foundation.Message
	converter foundation.MessageConverter
	result    any
}

// GivenMessage creates a message fixture.
func GivenMessage(t TB, message foundation.Message) *MessageFixture {
	t.Helper()
	return &MessageFixture{outcome: outcome{t: t, ctx: context.Background()}, message: message}
}

// WhenTranslated selects the first converter accepting the message and
// converts it.
func (f *MessageFixture) WhenTranslated(converters ...foundation.MessageConverter) *MessageFixture {
	f.t.Helper()
	f.converter, f.err = foundation.FindConverter(f.message, converters...)
	if f.err == nil {
		f.result, f.err = f.converter.ConvertFromMessage(f.message)
	}
	f.executed = true
	return f
}

// ThenConvertsTo asserts the message converted to the expected contract.
func (f *MessageFixture) ThenConvertsTo(expected any) *MessageFixture {
	f.t.Helper()
	f.succeeds()
	if !reflect.DeepEqual(f.result, expected) {
		f.t.Errorf("Expected contract %+v, got %+v", expected, f.result)
	}
	return f
}

// ThenTranslatedBy asserts the converter that accepted the message has the
// same type as expected.
func (f *MessageFixture) ThenTranslatedBy(expected foundation.MessageConverter) *MessageFixture {
	f.t.Helper()
	f.succeeds()
	if reflect.TypeOf(f.converter) != reflect.TypeOf(expected) {
		f.t.Errorf("Expected converter %T, got %T", expected, f.converter)
	}
	return f
}

// ThenFails asserts translation failed with the expected error.
func (f *MessageFixture) ThenFails(expectedErr error) *MessageFixture {
	f.t.Helper()
	f.fails(expectedErr)
	return f
}

// Result returns the converted contract.
func (f *MessageFixture) Result() any {
	return f.result
}
