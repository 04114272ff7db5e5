package generator

// InfrastructureProviderGenerator generates the provider aggregating every
// generated translator, bus and event field table of a bundle.
type InfrastructureProviderGenerator struct {
	module string
}

// NewInfrastructureProviderGenerator creates an InfrastructureProviderGenerator writing into module.
func NewInfrastructureProviderGenerator(module string) *InfrastructureProviderGenerator {
	return &InfrastructureProviderGenerator{module: module}
}

type providerData struct {
	Name          string
	Foundation    string
	Eventsourcing string
	Translators   []string
	Buses         []providerBus
	Events        []providerEvent
}

type providerBus struct {
	Kind        string
	Type        string
	Constructor string
}

type providerEvent struct {
	FullName string
	Fields   string
}

// Generate renders the provider of s. Buses that need a factory are left
// to the application.
func (g *InfrastructureProviderGenerator) Generate(s *Settings) (GeneratedFile, error) {
	target := InfrastructureProviderTarget(s)
	imps := newImportSet(target.Package)

	data := providerData{
		Name:       target.Name,
		Foundation: imps.use(foundationImport),
	}

	for _, c := range s.Contracts {
		data.Translators = append(data.Translators, imps.qualify(MessageTranslatorTarget(c.Contract)))
	}

	for _, kind := range BusKinds {
		handlers := s.HandlersFor(kind)
		if len(handlers) == 0 {
			continue
		}
		plan, err := BuildDispatchPlan(kind, handlers)
		if err != nil {
			return GeneratedFile{}, err
		}
		if plan.Abstract() {
			continue
		}
		bus := LocalBusTarget(kind, handlers)
		data.Buses = append(data.Buses, providerBus{
			Kind:        kind.Title(),
			Type:        imps.qualify(bus),
			Constructor: imps.qualify(ClassInfo{Package: bus.Package, Name: "New" + bus.Name}),
		})
	}

	if len(s.Events) > 0 {
		data.Eventsourcing = imps.use(eventsourcingImport)
		for _, e := range s.Events {
			data.Events = append(data.Events, providerEvent{
				FullName: e.Event.FullName(),
				Fields:   imps.qualify(EventFieldsTarget(e.Event)),
			})
		}
	}

	content, err := emit(ArtifactInfrastructureProvider, target, providerTemplate, imps, data)
	if err != nil {
		return GeneratedFile{}, err
	}
	return BuildGeneratedFile(g.module, target, content)
}

var providerTemplate = mustTemplate("infrastructure_provider", `{{- $f := .Foundation -}}
// {{.Name}} exposes the generated translators and buses of this module.
type {{.Name}} struct {
	infrastructure {{$f}}.Infrastructure
	translators    []{{$f}}.MessageConverter
}

// New{{.Name}} creates a {{.Name}}.
func New{{.Name}}(infrastructure {{$f}}.Infrastructure) *{{.Name}} {
	return &{{.Name}}{
		infrastructure: infrastructure,
		translators: []{{$f}}.MessageConverter{
{{- range .Translators}}
			{{.}}{},
{{- end}}
		},
	}
}

// Infrastructure returns the infrastructure handed to generated handlers.
func (p *{{.Name}}) Infrastructure() {{$f}}.Infrastructure {
	return p.infrastructure
}

// Translators returns every generated translator.
func (p *{{.Name}}) Translators() []{{$f}}.MessageConverter {
	out := make([]{{$f}}.MessageConverter, len(p.translators))
	copy(out, p.translators)
	return out
}

// FromMessage decodes message with the first translator accepting it.
func (p *{{.Name}}) FromMessage(message {{$f}}.Message) (any, error) {
	converter, err := {{$f}}.FindConverter(message, p.translators...)
	if err != nil {
		return nil, err
	}
	return converter.ConvertFromMessage(message)
}
{{range .Buses}}
// {{.Kind}}Bus creates the generated {{.Kind}} bus.
func (p *{{$.Name}}) {{.Kind}}Bus() *{{.Type}} {
	return {{.Constructor}}(p.infrastructure)
}
{{end}}
{{- if .Events}}
// EventFields returns the field settings of an event type.
func (p *{{.Name}}) EventFields(eventType string) (map[string]{{.Eventsourcing}}.Setting, bool) {
	switch eventType {
{{- range .Events}}
	case {{quote .FullName}}:
		return {{.Fields}}, true
{{- end}}
	}
	return nil, false
}

// ProcessEvent partitions the raw record of an event into stored data and metadata.
func (p *{{.Name}}) ProcessEvent(eventType, raw string) ({{.Eventsourcing}}.ProcessResult, error) {
	fields, ok := p.EventFields(eventType)
	if !ok {
		return {{.Eventsourcing}}.ProcessResult{}, {{$f}}.NewSettingsError("events", eventType, "no field settings")
	}
	return {{.Eventsourcing}}.ProcessRawJSON(p.infrastructure, fields, raw)
}

// RebuildEvent merges stored data and metadata back into the raw record of an event.
func (p *{{.Name}}) RebuildEvent(eventType, data, metadata string) (string, error) {
	fields, ok := p.EventFields(eventType)
	if !ok {
		return "", {{$f}}.NewSettingsError("events", eventType, "no field settings")
	}
	return {{.Eventsourcing}}.RebuildRawJSON(p.infrastructure, fields, data, metadata)
}
{{- end}}
`)
