package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AshkanYarmoradi/go-foundation"
	"github.com/AshkanYarmoradi/go-foundation/codec"
	"github.com/AshkanYarmoradi/go-foundation/eventsourcing"
)

// ClassInfo identifies a Go type by import path and type name.
type ClassInfo struct {
	Package string `yaml:"package" json:"package"`
	Name    string `yaml:"name" json:"name"`
}

// ParseClassInfo parses a full name such as "github.com/acme/shop/contract.Order".
// The type name starts after the last dot following the last slash.
func ParseClassInfo(fullName string) (ClassInfo, error) {
	fullName = strings.TrimSpace(fullName)
	slash := strings.LastIndex(fullName, "/")
	dot := strings.LastIndex(fullName, ".")
	if dot <= slash {
		if slash >= 0 || fullName == "" {
			return ClassInfo{}, fmt.Errorf("generator: %q is not a full type name", fullName)
		}
		return ClassInfo{Name: fullName}, nil
	}
	info := ClassInfo{Package: fullName[:dot], Name: fullName[dot+1:]}
	if info.Name == "" {
		return ClassInfo{}, fmt.Errorf("generator: %q is not a full type name", fullName)
	}
	return info, nil
}

// MustParseClassInfo is like ParseClassInfo but panics on error.
func MustParseClassInfo(fullName string) ClassInfo {
	info, err := ParseClassInfo(fullName)
	if err != nil {
		panic(err)
	}
	return info
}

// FullName returns the canonical name "{package}.{name}".
func (c ClassInfo) FullName() string {
	return foundation.FullName(c.Package, c.Name)
}

// PackageName returns the last segment of the import path.
func (c ClassInfo) PackageName() string {
	if i := strings.LastIndex(c.Package, "/"); i >= 0 {
		return c.Package[i+1:]
	}
	return c.Package
}

// IsZero reports whether c identifies no type.
func (c ClassInfo) IsZero() bool {
	return c.Name == ""
}

// String implements fmt.Stringer.
func (c ClassInfo) String() string {
	return c.FullName()
}

// UnmarshalYAML accepts either a full name string or a {package, name} mapping.
func (c *ClassInfo) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		info, err := ParseClassInfo(value.Value)
		if err != nil {
			return err
		}
		*c = info
		return nil
	}
	type plain ClassInfo
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = ClassInfo(p)
	return nil
}

// MarshalYAML writes the full name.
func (c ClassInfo) MarshalYAML() (interface{}, error) {
	return c.FullName(), nil
}

// BusKind is the kind of bus a handler is registered with.
type BusKind string

// Bus kinds.
const (
	QueryBus   BusKind = foundation.BusQuery
	CommandBus BusKind = foundation.BusCommand
	EventBus   BusKind = foundation.BusEvent
)

// BusKinds lists every bus kind in generation order.
var BusKinds = []BusKind{QueryBus, CommandBus, EventBus}

// IsValid reports whether k is a known bus kind.
func (k BusKind) IsValid() bool {
	switch k {
	case QueryBus, CommandBus, EventBus:
		return true
	}
	return false
}

// Title returns the capitalized kind, e.g. "Query".
func (k BusKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Plural returns the plural of the contract kind, e.g. "queries".
func (k BusKind) Plural() string {
	if k == QueryBus {
		return "queries"
	}
	return string(k) + "s"
}

// HandlerSettings binds a handler to a contract on a bus.
type HandlerSettings struct {
	Bus           BusKind   `yaml:"bus" json:"bus"`
	Contract      ClassInfo `yaml:"contract" json:"contract"`
	Version       int       `yaml:"version,omitempty" json:"version,omitempty"`
	Handler       ClassInfo `yaml:"handler" json:"handler"`
	MakeByFactory bool      `yaml:"makeByFactory,omitempty" json:"makeByFactory,omitempty"`
}

// MessagingSetting binds a contract to a wire type tag.
type MessagingSetting struct {
	Contract ClassInfo `yaml:"contract" json:"contract"`
	Type     string    `yaml:"type" json:"type"`
}

// Property is a declared property of a contract.
type Property struct {
	// Name is the field name on the implementation struct.
	Name string `yaml:"name" json:"name"`

	// Getter is the contract method returning the property. Defaults to "Get" + Name.
	Getter string `yaml:"getter,omitempty" json:"getter,omitempty"`

	// HasBody marks a derived property that is not copied.
	HasBody bool `yaml:"hasBody,omitempty" json:"hasBody,omitempty"`
}

// GetterName returns Getter or its default.
func (p Property) GetterName() string {
	if p.Getter != "" {
		return p.Getter
	}
	return "Get" + p.Name
}

// ContractSetting describes a contract.
type ContractSetting struct {
	Contract   ClassInfo  `yaml:"contract" json:"contract"`
	Kind       BusKind    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Codec      string     `yaml:"codec,omitempty" json:"codec,omitempty"`
	Properties []Property `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// CodecName returns the codec name, json when unset.
func (c ContractSetting) CodecName() string {
	if c.Codec == "" {
		return codec.NameJSON
	}
	return c.Codec
}

// ImplementationSetting names the concrete struct used on the wire for a contract.
type ImplementationSetting struct {
	Contract       ClassInfo `yaml:"contract" json:"contract"`
	Implementation ClassInfo `yaml:"implementation" json:"implementation"`
}

// EventSettings holds the per-field storage settings of an event.
type EventSettings struct {
	Event  ClassInfo                        `yaml:"event" json:"event"`
	Fields map[string]eventsourcing.Setting `yaml:"fields" json:"fields"`
}

// Settings is the bundle produced by contract discovery.
type Settings struct {
	Contracts       []ContractSetting       `yaml:"contracts,omitempty" json:"contracts,omitempty"`
	Implementations []ImplementationSetting `yaml:"implementations,omitempty" json:"implementations,omitempty"`
	Handlers        []HandlerSettings       `yaml:"handlers,omitempty" json:"handlers,omitempty"`
	Messaging       []MessagingSetting      `yaml:"messaging,omitempty" json:"messaging,omitempty"`
	Events          []EventSettings         `yaml:"events,omitempty" json:"events,omitempty"`
}

// HandlersFor returns the handlers of a bus kind in declaration order.
func (s *Settings) HandlersFor(kind BusKind) []HandlerSettings {
	var out []HandlerSettings
	for _, h := range s.Handlers {
		if h.Bus == kind {
			out = append(out, h)
		}
	}
	return out
}

// MessagingFor returns the messaging binding of a contract.
func (s *Settings) MessagingFor(contract ClassInfo) (MessagingSetting, bool) {
	for _, m := range s.Messaging {
		if m.Contract == contract {
			return m, true
		}
	}
	return MessagingSetting{}, false
}

// ImplementationOf returns the implementation of a contract, the contract itself by default.
func (s *Settings) ImplementationOf(contract ClassInfo) ClassInfo {
	for _, i := range s.Implementations {
		if i.Contract == contract {
			return i.Implementation
		}
	}
	return contract
}

// Validate checks the bundle for inconsistencies.
func (s *Settings) Validate() error {
	contracts := make(map[ClassInfo]bool, len(s.Contracts))
	for _, c := range s.Contracts {
		if c.Contract.IsZero() {
			return foundation.NewSettingsError("contracts", "", "contract name is required")
		}
		if contracts[c.Contract] {
			return foundation.NewSettingsError("contracts", c.Contract.FullName(), "declared more than once")
		}
		contracts[c.Contract] = true
		if c.Kind != "" && !c.Kind.IsValid() {
			return foundation.NewSettingsError("contracts", c.Contract.FullName(), fmt.Sprintf("unknown kind %q", c.Kind))
		}
		if _, ok := codec.Lookup(c.Codec); !ok {
			return foundation.NewSettingsError("contracts", c.Contract.FullName(),
				fmt.Sprintf("unknown codec %q, expected one of %s", c.Codec, strings.Join(codec.Names(), ", ")))
		}
		for _, p := range c.Properties {
			if p.Name == "" {
				return foundation.NewSettingsError("contracts", c.Contract.FullName(), "property name is required")
			}
		}
	}

	for _, i := range s.Implementations {
		if i.Contract.IsZero() || i.Implementation.IsZero() {
			return foundation.NewSettingsError("implementations", i.Contract.FullName(), "contract and implementation are required")
		}
	}

	for _, h := range s.Handlers {
		subject := h.Handler.FullName()
		if !h.Bus.IsValid() {
			return foundation.NewSettingsError("handlers", subject, fmt.Sprintf("unknown bus %q", h.Bus))
		}
		if h.Handler.IsZero() {
			return foundation.NewSettingsError("handlers", h.Contract.FullName(), "handler is required")
		}
		if h.Contract.IsZero() {
			return foundation.NewSettingsError("handlers", subject, "contract is required")
		}
		if h.Version < 0 {
			return foundation.NewSettingsError("handlers", subject, "version must not be negative")
		}
	}

	for _, m := range s.Messaging {
		if m.Contract.IsZero() {
			return foundation.NewSettingsError("messaging", m.Type, "contract is required")
		}
	}

	for _, e := range s.Events {
		if e.Event.IsZero() {
			return foundation.NewSettingsError("events", "", "event is required")
		}
		for name, f := range e.Fields {
			if f.Metadata && f.Encrypted {
				return foundation.NewSettingsError("events", e.Event.FullName()+"."+name, "a field cannot be both metadata and encrypted")
			}
		}
	}

	for _, kind := range BusKinds {
		if _, err := BuildDispatchPlan(kind, s.HandlersFor(kind)); err != nil {
			return err
		}
	}
	return nil
}
