package mocking

import (
	"context"
	"fmt"
	"sync"

	foundation "github.com/AshkanYarmoradi/go-foundation"
)

// contractMocks keeps one Mock per contract type.
type contractMocks struct {
	bus   string
	mu    sync.Mutex
	mocks map[string]*Mock
	order []string
}

func (c *contractMocks) mock(contractType string) *Mock {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mocks == nil {
		c.mocks = make(map[string]*Mock)
	}
	m, ok := c.mocks[contractType]
	if !ok {
		m = New(fmt.Sprintf("%s bus (%s)", c.bus, contractType))
		c.mocks[contractType] = m
		c.order = append(c.order, contractType)
	}
	return m
}

func (c *contractMocks) lookup(contractType string) (*Mock, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.mocks[contractType]
	return m, ok
}

func (c *contractMocks) verify() error {
	c.mu.Lock()
	order := append([]string(nil), c.order...)
	c.mu.Unlock()

	var unmet []string
	for _, contractType := range order {
		m, _ := c.lookup(contractType)
		if err := m.Verify(); err != nil {
			ve := err.(*VerificationError)
			for _, u := range ve.Unmet {
				unmet = append(unmet, contractType+": "+u)
			}
		}
	}
	if len(unmet) == 0 {
		return nil
	}
	return &VerificationError{Mock: c.bus + " bus", Unmet: unmet}
}

// errorAt returns values[i] as an error, or nil.
func errorAt(values []any, i int) error {
	if len(values) <= i || values[i] == nil {
		return nil
	}
	if err, ok := values[i].(error); ok {
		return err
	}
	return fmt.Errorf("mocking: stub value %d is %T, not an error", i, values[i])
}

// =============================================================================
// Query Bus
// =============================================================================

// MockableQueryBus wraps a local query bus. Stubbed contract types are
// answered by their mock; every other query reaches the wrapped bus.
//
// Query stubs return (result, error):
//
//	bus.WhenProcessing("app/queries.GetUser").Returns(user, nil)
type MockableQueryBus struct {
	bus   foundation.LocalQueryBus
	mocks contractMocks
}

var _ foundation.LocalQueryBus = (*MockableQueryBus)(nil)

// NewMockableQueryBus wraps bus. A nil bus makes unstubbed queries fail
// with ErrHandlerNotFound.
func NewMockableQueryBus(bus foundation.LocalQueryBus) *MockableQueryBus {
	return &MockableQueryBus{bus: bus, mocks: contractMocks{bus: foundation.BusQuery}}
}

// Mock returns the mock for a query type.
func (b *MockableQueryBus) Mock(queryType string) *Mock {
	return b.mocks.mock(queryType)
}

// WhenProcessing stubs every query of the type.
func (b *MockableQueryBus) WhenProcessing(queryType string) *Stub {
	return b.Mock(queryType).WhenCalled(Any())
}

// ShouldProcess expects a query of the type to be processed.
func (b *MockableQueryBus) ShouldProcess(queryType string) *Expectation {
	return b.Mock(queryType).ExpectCall(Any())
}

// Process answers from the stub of the query type, or from the wrapped bus.
func (b *MockableQueryBus) Process(ctx context.Context, query foundation.Query) (any, error) {
	if query == nil {
		return nil, foundation.ErrNilContract
	}
	if m, ok := b.mocks.lookup(query.QueryType()); ok {
		if values, stubbed := m.Call(query); stubbed {
			var result any
			if len(values) > 0 {
				result = values[0]
			}
			return result, errorAt(values, 1)
		}
	}
	if b.bus == nil {
		return nil, foundation.NewHandlerNotFoundError(foundation.BusQuery, query.QueryType())
	}
	return b.bus.Process(ctx, query)
}

// Resolve delegates to the wrapped bus.
func (b *MockableQueryBus) Resolve(instance foundation.Query) foundation.QueryHandler {
	if b.bus == nil {
		return nil
	}
	return b.bus.Resolve(instance)
}

// Verify checks the expectations of every query type.
func (b *MockableQueryBus) Verify() error {
	return b.mocks.verify()
}

// AssertExpectations fails t when Verify fails.
func (b *MockableQueryBus) AssertExpectations(t TB) bool {
	t.Helper()
	return assertVerified(t, b.Verify())
}

// =============================================================================
// Command Bus
// =============================================================================

// MockableCommandBus wraps a local command bus. Command stubs return a
// single error value.
type MockableCommandBus struct {
	bus   foundation.LocalCommandBus
	mocks contractMocks
}

var _ foundation.LocalCommandBus = (*MockableCommandBus)(nil)

// NewMockableCommandBus wraps bus.
func NewMockableCommandBus(bus foundation.LocalCommandBus) *MockableCommandBus {
	return &MockableCommandBus{bus: bus, mocks: contractMocks{bus: foundation.BusCommand}}
}

// Mock returns the mock for a command type.
func (b *MockableCommandBus) Mock(commandType string) *Mock {
	return b.mocks.mock(commandType)
}

// WhenProcessing stubs every command of the type.
func (b *MockableCommandBus) WhenProcessing(commandType string) *Stub {
	return b.Mock(commandType).WhenCalled(Any())
}

// ShouldProcess expects a command of the type to be processed.
func (b *MockableCommandBus) ShouldProcess(commandType string) *Expectation {
	return b.Mock(commandType).ExpectCall(Any())
}

// Process answers from the stub of the command type, or from the wrapped bus.
func (b *MockableCommandBus) Process(ctx context.Context, command foundation.Command) error {
	if command == nil {
		return foundation.ErrNilContract
	}
	if m, ok := b.mocks.lookup(command.CommandType()); ok {
		if values, stubbed := m.Call(command); stubbed {
			return errorAt(values, 0)
		}
	}
	if b.bus == nil {
		return foundation.NewHandlerNotFoundError(foundation.BusCommand, command.CommandType())
	}
	return b.bus.Process(ctx, command)
}

// Resolve delegates to the wrapped bus.
func (b *MockableCommandBus) Resolve(instance foundation.Command) foundation.CommandHandler {
	if b.bus == nil {
		return nil
	}
	return b.bus.Resolve(instance)
}

// Verify checks the expectations of every command type.
func (b *MockableCommandBus) Verify() error {
	return b.mocks.verify()
}

// AssertExpectations fails t when Verify fails.
func (b *MockableCommandBus) AssertExpectations(t TB) bool {
	t.Helper()
	return assertVerified(t, b.Verify())
}

// =============================================================================
// Event Bus
// =============================================================================

// MockableEventBus wraps a local event bus. Event stubs return a single
// error value.
type MockableEventBus struct {
	bus   foundation.LocalEventBus
	mocks contractMocks
}

var _ foundation.LocalEventBus = (*MockableEventBus)(nil)

// NewMockableEventBus wraps bus.
func NewMockableEventBus(bus foundation.LocalEventBus) *MockableEventBus {
	return &MockableEventBus{bus: bus, mocks: contractMocks{bus: foundation.BusEvent}}
}

// Mock returns the mock for an event type.
func (b *MockableEventBus) Mock(eventType string) *Mock {
	return b.mocks.mock(eventType)
}

// WhenProcessing stubs every event of the type.
func (b *MockableEventBus) WhenProcessing(eventType string) *Stub {
	return b.Mock(eventType).WhenCalled(Any())
}

// ShouldProcess expects an event of the type to be processed.
func (b *MockableEventBus) ShouldProcess(eventType string) *Expectation {
	return b.Mock(eventType).ExpectCall(Any())
}

// Process answers from the stub of the event type, or from the wrapped bus.
func (b *MockableEventBus) Process(ctx context.Context, event foundation.Event) error {
	if event == nil {
		return foundation.ErrNilContract
	}
	if m, ok := b.mocks.lookup(event.EventType()); ok {
		if values, stubbed := m.Call(event); stubbed {
			return errorAt(values, 0)
		}
	}
	if b.bus == nil {
		return foundation.NewHandlerNotFoundError(foundation.BusEvent, event.EventType())
	}
	return b.bus.Process(ctx, event)
}

// Resolve delegates to the wrapped bus.
func (b *MockableEventBus) Resolve(instance foundation.Event) foundation.EventHandler {
	if b.bus == nil {
		return nil
	}
	return b.bus.Resolve(instance)
}

// Verify checks the expectations of every event type.
func (b *MockableEventBus) Verify() error {
	return b.mocks.verify()
}

// AssertExpectations fails t when Verify fails.
func (b *MockableEventBus) AssertExpectations(t TB) bool {
	t.Helper()
	return assertVerified(t, b.Verify())
}

func assertVerified(t TB, err error) bool {
	t.Helper()
	if err != nil {
		t.Errorf("%s", err.Error())
		return false
	}
	return true
}
