package testutil

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
)

// MockT records the failures reported by assertion helpers so tests can
// check that an assertion fails, and how.
//
// Message holds the first argument of Error/Fatal or the format string of
// Errorf/Fatalf. Errors holds every failure fully formatted.
//
// Only the embedded testing.TB is nil: methods not listed here panic, so
// every method reached by testify and by this module's helpers is
// implemented explicitly.
type MockT struct {
	testing.TB

	Failed_ bool
	Fatal_  bool
	Message string
	Errors  []string
	Logs    []string

	name     string
	mu       sync.Mutex
	cleanups []func()
}

// NewMockT creates a MockT named "MockT".
func NewMockT() *MockT {
	return NewNamedMockT("MockT")
}

// NewNamedMockT creates a MockT reporting name from Name().
func NewNamedMockT(name string) *MockT {
	return &MockT{name: name}
}

// Name returns the name of the mock test.
func (m *MockT) Name() string { return m.name }

// Helper is a no-op.
func (m *MockT) Helper() {}

// Log records a log line.
func (m *MockT) Log(args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, fmt.Sprint(args...))
}

// Logf records a formatted log line.
func (m *MockT) Logf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, fmt.Sprintf(format, args...))
}

// Error records a failure and continues.
func (m *MockT) Error(args ...any) {
	m.fail(false, firstString(args), fmt.Sprint(args...))
}

// Errorf records a formatted failure and continues.
func (m *MockT) Errorf(format string, args ...any) {
	m.fail(false, format, fmt.Sprintf(format, args...))
}

// Fatal records a failure and stops the goroutine.
func (m *MockT) Fatal(args ...any) {
	m.fail(true, firstString(args), fmt.Sprint(args...))
	runtime.Goexit()
}

// Fatalf records a formatted failure and stops the goroutine.
func (m *MockT) Fatalf(format string, args ...any) {
	m.fail(true, format, fmt.Sprintf(format, args...))
	runtime.Goexit()
}

// Fail marks the mock test as failed.
func (m *MockT) Fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed_ = true
}

// FailNow marks the mock test as failed and stops the goroutine.
func (m *MockT) FailNow() {
	m.Fail()
	runtime.Goexit()
}

// Failed reports whether a failure was recorded.
func (m *MockT) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Failed_
}

// Skip logs and stops the goroutine without failing.
func (m *MockT) Skip(args ...any) {
	m.Log(args...)
	runtime.Goexit()
}

// Skipf logs and stops the goroutine without failing.
func (m *MockT) Skipf(format string, args ...any) {
	m.Logf(format, args...)
	runtime.Goexit()
}

// SkipNow stops the goroutine without failing.
func (m *MockT) SkipNow() { runtime.Goexit() }

// Cleanup registers fn to run when RunWithMockT returns, last first.
func (m *MockT) Cleanup(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups = append(m.cleanups, fn)
}

func (m *MockT) fail(fatal bool, message, formatted string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed_ = true
	if fatal {
		m.Fatal_ = true
	}
	if message != "" {
		m.Message = message
	}
	m.Errors = append(m.Errors, formatted)
}

func (m *MockT) runCleanups() {
	m.mu.Lock()
	cleanups := m.cleanups
	m.cleanups = nil
	m.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func firstString(args []any) string {
	if len(args) == 0 {
		return ""
	}
	s, _ := args[0].(string)
	return s
}

// RunWithMockT runs fn on its own goroutine with a fresh MockT and waits
// for it, so Fatal and FailNow stop fn without stopping the caller.
// Registered cleanups run before it returns.
func RunWithMockT(fn func(m *MockT)) *MockT {
	mt := NewMockT()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer mt.runCleanups()
		fn(mt)
	}()
	<-done
	return mt
}
