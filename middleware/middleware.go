// Package middleware decorates query, command and event buses with a chain
// of dispatch middleware: panic recovery, logging, timeouts, retries and
// correlation ids.
//
// The tracing and metrics subpackages provide the observability decorators.
//
// Example usage:
//
//	bus := middleware.WrapCommandBus(generated.NewLocalCommandBus(infra),
//		middleware.Recovery(),
//		middleware.Logging(logger),
//		middleware.Timeout(5*time.Second),
//	)
package middleware

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// Contract is a query, command or event on its way to a handler.
type Contract struct {
	// Bus is foundation.BusQuery, foundation.BusCommand or foundation.BusEvent.
	Bus string

	// Type is the contract type reported by QueryType, CommandType or EventType.
	Type string

	// Value is the contract itself.
	Value interface{}
}

// HandlerFunc processes a contract. Only queries return a result.
type HandlerFunc func(ctx context.Context, contract Contract) (interface{}, error)

// Middleware wraps a handler function with additional functionality.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain creates a single middleware from multiple middleware.
// The first middleware is the outermost.
func Chain(middleware ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}

// =============================================================================
// Bus Wrappers
// =============================================================================

type queryBus struct {
	handler HandlerFunc
}

// WrapQueryBus returns a query bus running the middleware around bus.
func WrapQueryBus(bus foundation.QueryBus, middleware ...Middleware) foundation.QueryBus {
	return &queryBus{handler: Chain(middleware...)(func(ctx context.Context, c Contract) (interface{}, error) {
		return bus.Process(ctx, c.Value.(foundation.Query))
	})}
}

func (b *queryBus) Process(ctx context.Context, query foundation.Query) (any, error) {
	if query == nil {
		return nil, foundation.ErrNilContract
	}
	return b.handler(ctx, Contract{Bus: foundation.BusQuery, Type: query.QueryType(), Value: query})
}

type commandBus struct {
	handler HandlerFunc
}

// WrapCommandBus returns a command bus running the middleware around bus.
func WrapCommandBus(bus foundation.CommandBus, middleware ...Middleware) foundation.CommandBus {
	return &commandBus{handler: Chain(middleware...)(func(ctx context.Context, c Contract) (interface{}, error) {
		return nil, bus.Process(ctx, c.Value.(foundation.Command))
	})}
}

func (b *commandBus) Process(ctx context.Context, command foundation.Command) error {
	if command == nil {
		return foundation.ErrNilContract
	}
	_, err := b.handler(ctx, Contract{Bus: foundation.BusCommand, Type: command.CommandType(), Value: command})
	return err
}

type eventBus struct {
	handler HandlerFunc
}

// WrapEventBus returns an event bus running the middleware around bus.
func WrapEventBus(bus foundation.EventBus, middleware ...Middleware) foundation.EventBus {
	return &eventBus{handler: Chain(middleware...)(func(ctx context.Context, c Contract) (interface{}, error) {
		return nil, bus.Process(ctx, c.Value.(foundation.Event))
	})}
}

func (b *eventBus) Process(ctx context.Context, event foundation.Event) error {
	if event == nil {
		return foundation.ErrNilContract
	}
	_, err := b.handler(ctx, Contract{Bus: foundation.BusEvent, Type: event.EventType(), Value: event})
	return err
}

// =============================================================================
// Middleware
// =============================================================================

// Recovery recovers from panics in handlers and returns them as
// *foundation.PanicError. The JSON form of the contract is captured for
// debugging when it can be encoded.
func Recovery() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (result interface{}, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := string(debug.Stack())
					var data string
					if encoded, jsonErr := codec.JSON.Marshal(c.Value); jsonErr == nil {
						data = string(encoded)
					}
					result = nil
					err = foundation.NewPanicError(c.Bus, c.Type, r, stack, data)
				}
			}()
			return next(ctx, c)
		}
	}
}

// Logging logs every dispatch with its duration.
func Logging(logger foundation.Logger) Middleware {
	if logger == nil {
		logger = foundation.NopLogger()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (interface{}, error) {
			start := time.Now()

			logger.Debug("Dispatching", "bus", c.Bus, "type", c.Type)

			result, err := next(ctx, c)

			duration := time.Since(start)
			if err != nil {
				logger.Error("Dispatch failed",
					"bus", c.Bus,
					"type", c.Type,
					"duration", duration,
					"error", err,
				)
			} else {
				logger.Info("Dispatch completed",
					"bus", c.Bus,
					"type", c.Type,
					"duration", duration,
				)
			}

			return result, err
		}
	}
}

// Timeout adds a timeout to the context of the handler.
func Timeout(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (interface{}, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, c)
		}
	}
}

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first one).
	MaxAttempts int

	// InitialDelay is the initial delay between retries.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay increases on each retry.
	Multiplier float64

	// ShouldRetry determines if an error should be retried.
	// If nil, all errors except ErrHandlerNotFound and ErrNilContract are retried.
	ShouldRetry func(err error) bool
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Retry retries failed dispatches with exponential backoff.
func Retry(config RetryConfig) Middleware {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 1.0
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = retryable
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (interface{}, error) {
			var result interface{}
			var err error
			delay := config.InitialDelay

			for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
				result, err = next(ctx, c)
				if err == nil {
					return result, nil
				}
				if attempt == config.MaxAttempts || !config.ShouldRetry(err) {
					break
				}

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}

				delay = time.Duration(float64(delay) * config.Multiplier)
				if delay > config.MaxDelay {
					delay = config.MaxDelay
				}
			}

			return result, err
		}
	}
}

func retryable(err error) bool {
	return !errors.Is(err, foundation.ErrHandlerNotFound) && !errors.Is(err, foundation.ErrNilContract)
}

// =============================================================================
// Correlation ID Middleware
// =============================================================================

type correlationIDKey struct{}

// CorrelationIDFromContext returns the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID returns a context with the correlation ID set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// CorrelationID propagates a correlation ID to handlers. An ID already in
// the context is kept; otherwise the contract's GetCorrelationID() is used
// when present, then generator. A nil generator produces random UUIDs.
func CorrelationID(generator func() string) Middleware {
	if generator == nil {
		generator = uuid.NewString
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (interface{}, error) {
			if CorrelationIDFromContext(ctx) != "" {
				return next(ctx, c)
			}

			var correlationID string
			if carrier, ok := c.Value.(interface{ GetCorrelationID() string }); ok {
				correlationID = carrier.GetCorrelationID()
			}
			if correlationID == "" {
				correlationID = generator()
			}

			return next(WithCorrelationID(ctx, correlationID), c)
		}
	}
}

// =============================================================================
// Conditional Middleware
// =============================================================================

// Conditional applies middleware only if the condition is true.
func Conditional(condition func(Contract) bool, middleware Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		wrapped := middleware(next)
		return func(ctx context.Context, c Contract) (interface{}, error) {
			if condition(c) {
				return wrapped(ctx, c)
			}
			return next(ctx, c)
		}
	}
}

// ForTypes applies middleware only for the given contract types.
func ForTypes(types []string, middleware Middleware) Middleware {
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	return Conditional(func(c Contract) bool {
		return typeSet[c.Type]
	}, middleware)
}

// ForBus applies middleware only on one bus kind.
func ForBus(bus string, middleware Middleware) Middleware {
	return Conditional(func(c Contract) bool {
		return c.Bus == bus
	}, middleware)
}

// Validation calls Validate() on contracts that provide it and stops the
// dispatch on failure.
func Validation() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, c Contract) (interface{}, error) {
			if v, ok := c.Value.(interface{ Validate() error }); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return next(ctx, c)
		}
	}
}
