package foundation

import "context"

// Bus kinds.
const (
	BusQuery   = "query"
	BusCommand = "command"
	BusEvent   = "event"
)

// Query asks for data. QueryType returns the full name of the query contract.
type Query interface {
	QueryType() string
}

// Command represents an intent to change state.
// CommandType returns the full name of the command contract.
type Command interface {
	CommandType() string
}

// Event records something that happened.
// EventType returns the full name of the event contract.
type Event interface {
	EventType() string
}

// QueryHandler answers a query.
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (any, error)
}

// CommandHandler executes a command.
type CommandHandler interface {
	Handle(ctx context.Context, command Command) error
}

// EventHandler reacts to an event.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
}

// QueryHandlerFunc adapts a function to QueryHandler.
type QueryHandlerFunc func(ctx context.Context, query Query) (any, error)

// Handle calls f.
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (any, error) {
	return f(ctx, query)
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc func(ctx context.Context, command Command) error

// Handle calls f.
func (f CommandHandlerFunc) Handle(ctx context.Context, command Command) error {
	return f(ctx, command)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// QueryBus processes queries.
type QueryBus interface {
	Process(ctx context.Context, query Query) (any, error)
}

// CommandBus processes commands.
type CommandBus interface {
	Process(ctx context.Context, command Command) error
}

// EventBus processes events.
type EventBus interface {
	Process(ctx context.Context, event Event) error
}

// QueryResolver finds the handler of a query. A nil handler means none resolves.
type QueryResolver interface {
	Resolve(instance Query) QueryHandler
}

// CommandResolver finds the handler of a command. A nil handler means none resolves.
type CommandResolver interface {
	Resolve(instance Command) CommandHandler
}

// EventResolver finds the handler of an event. A nil handler means none resolves.
type EventResolver interface {
	Resolve(instance Event) EventHandler
}

// LocalQueryBus is implemented by generated query buses.
type LocalQueryBus interface {
	QueryBus
	QueryResolver
}

// LocalCommandBus is implemented by generated command buses.
type LocalCommandBus interface {
	CommandBus
	CommandResolver
}

// LocalEventBus is implemented by generated event buses.
type LocalEventBus interface {
	EventBus
	EventResolver
}
