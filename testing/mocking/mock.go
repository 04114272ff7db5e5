// Package mocking provides an explicit record-and-replay test double and
// mockable wrappers around generated local buses.
//
// A Mock records every call. Expectations are declared up front and checked
// by Verify; stubs decide what a call returns:
//
//	m := mocking.New("payment gateway")
//	m.ExpectCall(mocking.Equals("order-1")).Times(1)
//	m.WhenCalled(mocking.Any()).Returns(true, nil)
//	m.WhenCalled(mocking.Any()).OnCall(2).Returns(false, errDeclined)
//
//	values, ok := m.Call("order-1")
//
//	m.AssertExpectations(t)
package mocking

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TB is an alias for testing.TB interface to allow mocking in tests
type TB = testing.TB

// ErrVerificationFailed is matched by every VerificationError.
var ErrVerificationFailed = errors.New("mocking: verification failed")

// Matcher decides whether a call's arguments match.
type Matcher func(args ...any) bool

// Any matches every call.
func Any() Matcher {
	return func(args ...any) bool { return true }
}

// Equals matches calls whose arguments equal expected, compared with
// testify's ObjectsAreEqual.
func Equals(expected ...any) Matcher {
	return func(args ...any) bool {
		if len(args) != len(expected) {
			return false
		}
		for i := range args {
			if !assert.ObjectsAreEqual(expected[i], args[i]) {
				return false
			}
		}
		return true
	}
}

// ArgsMatch matches calls whose arguments satisfy one predicate each.
func ArgsMatch(predicates ...func(any) bool) Matcher {
	return func(args ...any) bool {
		if len(args) != len(predicates) {
			return false
		}
		for i, p := range predicates {
			if !p(args[i]) {
				return false
			}
		}
		return true
	}
}

// Mock is a thread-safe record-and-replay test double.
type Mock struct {
	name string

	mu           sync.Mutex
	calls        [][]any
	expectations []*Expectation
	stubs        []*Stub
}

// New creates a Mock. The name appears in verification errors.
func New(name string) *Mock {
	return &Mock{name: name}
}

// Name returns the mock name.
func (m *Mock) Name() string {
	return m.name
}

// ExpectCall declares that a matching call must happen. By default at least once.
func (m *Mock) ExpectCall(matcher Matcher) *Expectation {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &Expectation{mock: m, matcher: matcher, times: atLeastOnce}
	m.expectations = append(m.expectations, e)
	return e
}

// WhenCalled declares what matching calls return. The most recently
// declared matching stub wins.
func (m *Mock) WhenCalled(matcher Matcher) *Stub {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Stub{mock: m, matcher: matcher, byCall: make(map[int][]any)}
	m.stubs = append(m.stubs, s)
	return s
}

// Call records a call and returns the values of the matching stub. ok is
// false when no stub matched.
func (m *Mock) Call(args ...any) (values []any, ok bool) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	for _, e := range m.expectations {
		if e.matcher(args...) {
			e.count++
		}
	}

	var stub *Stub
	for i := len(m.stubs) - 1; i >= 0; i-- {
		if m.stubs[i].matcher(args...) {
			stub = m.stubs[i]
			break
		}
	}
	if stub == nil {
		m.mu.Unlock()
		return nil, false
	}
	stub.calls++
	n := stub.calls
	values, hasCall := stub.byCall[n]
	fn := stub.fn
	if !hasCall {
		values = stub.returns
	}
	m.mu.Unlock()

	if !hasCall && fn != nil {
		return fn(args...), true
	}
	return values, true
}

// Calls returns the arguments of every recorded call.
func (m *Mock) Calls() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]any, len(m.calls))
	copy(out, m.calls)
	return out
}

// Verify returns a VerificationError listing every unmet expectation.
func (m *Mock) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unmet []string
	for i, e := range m.expectations {
		if e.satisfied() {
			continue
		}
		unmet = append(unmet, e.describe(i))
	}
	if len(unmet) == 0 {
		return nil
	}
	return &VerificationError{Mock: m.name, Unmet: unmet}
}

// AssertExpectations fails t when Verify fails.
func (m *Mock) AssertExpectations(t TB) bool {
	t.Helper()

	if err := m.Verify(); err != nil {
		t.Errorf("%s", err.Error())
		return false
	}
	return true
}

// Reset forgets calls, expectations and stubs.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.expectations = nil
	m.stubs = nil
}

const atLeastOnce = -1

// Expectation is a declared call requirement.
type Expectation struct {
	mock        *Mock
	matcher     Matcher
	times       int
	count       int
	description string
}

// Times requires exactly n matching calls.
func (e *Expectation) Times(n int) *Expectation {
	e.mock.mu.Lock()
	defer e.mock.mu.Unlock()

	e.times = n
	return e
}

// Never requires that no matching call happens.
func (e *Expectation) Never() *Expectation {
	return e.Times(0)
}

// AtLeastOnce requires one or more matching calls.
func (e *Expectation) AtLeastOnce() *Expectation {
	return e.Times(atLeastOnce)
}

// Describe names the expectation in verification errors.
func (e *Expectation) Describe(description string) *Expectation {
	e.mock.mu.Lock()
	defer e.mock.mu.Unlock()

	e.description = description
	return e
}

func (e *Expectation) satisfied() bool {
	if e.times == atLeastOnce {
		return e.count > 0
	}
	return e.count == e.times
}

func (e *Expectation) describe(index int) string {
	name := e.description
	if name == "" {
		name = fmt.Sprintf("expectation #%d", index+1)
	}
	if e.times == atLeastOnce {
		return fmt.Sprintf("%s: expected at least one call, got %d", name, e.count)
	}
	return fmt.Sprintf("%s: expected %d call(s), got %d", name, e.times, e.count)
}

// Stub declares the values returned by matching calls.
type Stub struct {
	mock    *Mock
	matcher Matcher
	returns []any
	byCall  map[int][]any
	fn      func(args ...any) []any
	calls   int
}

// Returns sets the values returned by every matching call.
func (s *Stub) Returns(values ...any) *Stub {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()

	s.returns = values
	return s
}

// OnCall targets the n-th matching call, counting from 1.
func (s *Stub) OnCall(n int) *StubCall {
	return &StubCall{stub: s, n: n}
}

// Does computes the returned values from the call arguments.
// Values set with OnCall still take precedence.
func (s *Stub) Does(fn func(args ...any) []any) *Stub {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()

	s.fn = fn
	return s
}

// StubCall targets one call of a Stub.
type StubCall struct {
	stub *Stub
	n    int
}

// Returns sets the values returned by this call.
func (c *StubCall) Returns(values ...any) *Stub {
	c.stub.mock.mu.Lock()
	defer c.stub.mock.mu.Unlock()

	c.stub.byCall[c.n] = values
	return c.stub
}

// VerificationError lists the unmet expectations of a mock.
type VerificationError struct {
	Mock  string
	Unmet []string
}

// Error returns the error message.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("mocking: %s has %d unmet expectation(s):\n  %s",
		e.Mock, len(e.Unmet), strings.Join(e.Unmet, "\n  "))
}

// Is reports whether this error matches the target error.
func (e *VerificationError) Is(target error) bool {
	return target == ErrVerificationFailed
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}
