// Package foundation provides the runtime contracts targeted by code generated
// with the foundation CLI.
//
// go-foundation is a code-generation toolkit for CQRS applications. Contracts,
// handlers and messaging bindings are described declaratively; the generator
// emits local buses that route queries, commands and events to their handlers,
// and message translators that convert contracts to and from the Message
// envelope. This package contains everything that generated code depends on at
// runtime.
//
// # Contracts
//
// Queries, commands and events carry an explicit type tag. The tag is the full
// name of the contract (import path plus type name):
//
//	type GetTodo struct {
//	    ID string `json:"id"`
//	}
//
//	func (GetTodo) QueryType() string { return "github.com/acme/todo/contract.GetTodo" }
//
// Generated buses switch on the tag, never on the dynamic Go type.
//
// # Messages
//
// A Message is an immutable envelope with an optional id and type, a string
// body and typed attributes:
//
//	msg := foundation.CreateMessageWithAttributes(body, map[string]foundation.MessageAttribute{
//	    "bodyType": foundation.CreateStringAttribute("github.com/acme/todo/contract.TodoCreated"),
//	})
//
//	wire, err := foundation.SerializeMessage(msg)
//	back, err := foundation.DeserializeMessage(wire)
//
// # Versioned handlers
//
// When several handler versions exist for one query, the generated bus asks a
// HandlerVersioningStrategy which one to use:
//
//	bus.UseVersioningStrategy(func(q foundation.Query) foundation.HandlerVersioningStrategy {
//	    return foundation.UseSpecificVersion(2)
//	})
//
// # Infrastructure
//
// Generated handlers receive an Infrastructure value which exposes the
// encryption, environment and fake-data capabilities used by the event field
// processor in the eventsourcing package.
package foundation

// Version returns the library version string.
func Version() string {
	return "0.3.0"
}

// FullName builds the canonical contract name used as dispatch tag and as
// the "bodyType" attribute: "{package}.{name}".
func FullName(packagePath, name string) string {
	if packagePath == "" {
		return name
	}
	return packagePath + "." + name
}
