package generator

// MockableBusGenerator generates the typed test double of a local bus.
type MockableBusGenerator struct {
	module string
}

// NewMockableBusGenerator creates a MockableBusGenerator writing into module.
func NewMockableBusGenerator(module string) *MockableBusGenerator {
	return &MockableBusGenerator{module: module}
}

type mockableBusData struct {
	Name       string
	Bus        string
	Kind       string
	Param      string
	Plural     string
	Foundation string
	Mocking    string
	Contracts  []mockableContract
}

type mockableContract struct {
	Suffix   string
	Name     string
	FullName string
}

// Generate renders the mockable wrapper of the bus routing handlers.
// Helper methods are named after the contracts; colliding simple names are
// qualified by their package path.
func (g *MockableBusGenerator) Generate(kind BusKind, handlers []HandlerSettings) (GeneratedFile, error) {
	plan, err := BuildDispatchPlan(kind, handlers)
	if err != nil {
		return GeneratedFile{}, err
	}

	bus := LocalBusTarget(kind, handlers)
	target := MockableBusTarget(bus)
	imps := newImportSet(target.Package)
	data := mockableBusData{
		Name:       target.Name,
		Bus:        bus.Name,
		Kind:       kind.Title(),
		Param:      string(kind),
		Plural:     kind.Plural(),
		Foundation: imps.use(foundationImport),
		Mocking:    imps.use(mockingImport),
	}

	used := make(map[string]bool, len(plan.Cases))
	for _, c := range plan.Cases {
		suffix := uniqueIdentifier(used, "", c.Contract)
		data.Contracts = append(data.Contracts, mockableContract{
			Suffix:   suffix,
			Name:     c.Contract.Name,
			FullName: c.Contract.FullName(),
		})
	}

	content, err := emit(ArtifactMockableBus, target, mockableBusTemplate, imps, data)
	if err != nil {
		return GeneratedFile{}, err
	}
	return BuildGeneratedFile(g.module, target, content)
}

var mockableBusTemplate = mustTemplate("mockable_bus", `{{- $m := .Mocking -}}
// {{.Name}} wraps a {{.Bus}} so tests can stub and verify {{.Plural}}.
// Unstubbed {{.Plural}} reach the wrapped bus.
type {{.Name}} struct {
	*{{$m}}.Mockable{{.Kind}}Bus
}

// New{{.Name}} wraps bus.
func New{{.Name}}(bus {{.Foundation}}.Local{{.Kind}}Bus) *{{.Name}} {
	return &{{.Name}}{Mockable{{.Kind}}Bus: {{$m}}.NewMockable{{.Kind}}Bus(bus)}
}
{{range .Contracts}}
// WhenProcessing{{.Suffix}} stubs every {{.Name}}.
func (b *{{$.Name}}) WhenProcessing{{.Suffix}}() *{{$m}}.Stub {
	return b.WhenProcessing({{quote .FullName}})
}

// ShouldProcess{{.Suffix}} expects a {{.Name}} to be processed.
func (b *{{$.Name}}) ShouldProcess{{.Suffix}}() *{{$m}}.Expectation {
	return b.ShouldProcess({{quote .FullName}})
}
{{end}}`)
