package generator

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/AshkanYarmoradi/go-foundation"
)

// HandlerRef is a handler selected by a dispatch case. Factory is the name of
// the factory method building it, empty when the bus constructs it.
type HandlerRef struct {
	Settings HandlerSettings
	Factory  string
}

// DispatchCase routes one contract. Exactly one of Single or Versions is set;
// Versions is sorted by ascending version and Latest is its last entry.
type DispatchCase struct {
	Contract ClassInfo
	Single   *HandlerRef
	Versions []HandlerRef
	Latest   *HandlerRef
}

// Versioned reports whether the case selects among several versions.
func (c DispatchCase) Versioned() bool {
	return c.Single == nil
}

// FactoryMethod is a construction obligation of an abstract bus.
type FactoryMethod struct {
	Name    string
	Handler ClassInfo
}

// DispatchPlan is the decision structure of a local bus.
type DispatchPlan struct {
	Kind      BusKind
	Cases     []DispatchCase
	Factories []FactoryMethod
}

// Abstract reports whether the bus needs a factory to be built.
func (p *DispatchPlan) Abstract() bool {
	return len(p.Factories) > 0
}

// Empty reports whether the plan routes nothing.
func (p *DispatchPlan) Empty() bool {
	return len(p.Cases) == 0
}

// Resolve evaluates the plan for a contract the way the generated Resolve does.
func (p *DispatchPlan) Resolve(contract string, strategy foundation.HandlerVersioningStrategy) (HandlerRef, bool) {
	if strategy.Skip() {
		return HandlerRef{}, false
	}
	for _, c := range p.Cases {
		if c.Contract.FullName() != contract {
			continue
		}
		if !c.Versioned() {
			return *c.Single, true
		}
		if strategy.UseLatestVersion() {
			return *c.Latest, true
		}
		for _, ref := range c.Versions {
			if ref.Settings.Version == strategy.SpecificVersion() {
				return ref, true
			}
		}
		return HandlerRef{}, false
	}
	return HandlerRef{}, false
}

// BuildDispatchPlan groups handlers by contract full name, in order of first
// occurrence, and names the factory methods of factory-built handlers.
// Two handlers declaring the same contract and version are rejected.
func BuildDispatchPlan(kind BusKind, handlers []HandlerSettings) (*DispatchPlan, error) {
	plan := &DispatchPlan{Kind: kind}
	namer := newFactoryNamer()

	var order []string
	groups := make(map[string][]HandlerSettings)
	for _, h := range handlers {
		key := h.Contract.FullName()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], h)
	}

	ref := func(h HandlerSettings) HandlerRef {
		r := HandlerRef{Settings: h}
		if h.MakeByFactory {
			name, existed := namer.name(h.Handler)
			if !existed {
				plan.Factories = append(plan.Factories, FactoryMethod{Name: name, Handler: h.Handler})
			}
			r.Factory = name
		}
		return r
	}

	for _, key := range order {
		group := groups[key]
		c := DispatchCase{Contract: group[0].Contract}

		if len(group) == 1 {
			single := ref(group[0])
			c.Single = &single
			plan.Cases = append(plan.Cases, c)
			continue
		}

		sorted := make([]HandlerSettings, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Version < sorted[j].Version
		})
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Version == sorted[i-1].Version {
				return nil, foundation.NewDuplicateHandlerVersionError(key, sorted[i].Version,
					sorted[i-1].Handler.FullName(), sorted[i].Handler.FullName())
			}
		}

		// Factory names are assigned in declaration order.
		refs := make(map[int]HandlerRef, len(group))
		for _, h := range group {
			refs[h.Version] = ref(h)
		}
		for _, h := range sorted {
			c.Versions = append(c.Versions, refs[h.Version])
		}
		latest := c.Versions[len(c.Versions)-1]
		c.Latest = &latest
		plan.Cases = append(plan.Cases, c)
	}

	return plan, nil
}

var nonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]`)

// factoryNamer assigns one factory method name per handler class for a
// single generation.
type factoryNamer struct {
	byHandler map[ClassInfo]string
	used      map[string]bool
}

func newFactoryNamer() *factoryNamer {
	return &factoryNamer{
		byHandler: make(map[ClassInfo]string),
		used:      make(map[string]bool),
	}
}

// name returns the factory method of a handler class and whether it was
// already assigned.
func (n *factoryNamer) name(handler ClassInfo) (string, bool) {
	if name, ok := n.byHandler[handler]; ok {
		return name, true
	}
	name := uniqueIdentifier(n.used, "Make", handler)
	n.byHandler[handler] = name
	return name, false
}

// uniqueIdentifier returns prefix+Name, or on collision a name qualified by
// the package path. Package paths that sanitize to the same identifier get a
// numeric suffix starting at 2. The name is recorded in used.
func uniqueIdentifier(used map[string]bool, prefix string, class ClassInfo) string {
	name := prefix + class.Name
	if used[name] {
		qualified := prefix + "_" + nonIdentifier.ReplaceAllString(class.Package, "_") + "_" + class.Name
		name = qualified
		for i := 2; used[name]; i++ {
			name = qualified + strconv.Itoa(i)
		}
	}
	used[name] = true
	return name
}
