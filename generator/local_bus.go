package generator

// LocalBusGenerator generates the local bus of one bus kind.
type LocalBusGenerator struct {
	module string
}

// NewLocalBusGenerator creates a LocalBusGenerator writing into module.
func NewLocalBusGenerator(module string) *LocalBusGenerator {
	return &LocalBusGenerator{module: module}
}

type localBusData struct {
	Name          string
	Kind          string
	Param         string
	Plural        string
	Foundation    string
	Context       string
	ReturnsResult bool
	Factories     []factoryData
	Cases         []caseData
}

type factoryData struct {
	Name    string
	Handler string
}

type caseData struct {
	Contract  string
	Versioned bool
	Single    string
	Latest    string
	Versions  []versionData
}

type versionData struct {
	Version int
	Expr    string
}

// Generate builds the dispatch plan of handlers and renders the bus.
// Handlers must all belong to kind.
func (g *LocalBusGenerator) Generate(kind BusKind, handlers []HandlerSettings) (GeneratedFile, *DispatchPlan, error) {
	plan, err := BuildDispatchPlan(kind, handlers)
	if err != nil {
		return GeneratedFile{}, nil, err
	}

	target := LocalBusTarget(kind, handlers)
	imps := newImportSet(target.Package)
	data := localBusData{
		Name:          target.Name,
		Kind:          kind.Title(),
		Param:         string(kind),
		Plural:        kind.Plural(),
		Context:       imps.use("context"),
		Foundation:    imps.use(foundationImport),
		ReturnsResult: kind == QueryBus,
	}

	for _, f := range plan.Factories {
		data.Factories = append(data.Factories, factoryData{Name: f.Name, Handler: f.Handler.FullName()})
	}

	expr := func(ref HandlerRef) string {
		if ref.Factory != "" {
			return "b.factory." + ref.Factory + "()"
		}
		h := ref.Settings.Handler
		return imps.qualify(ClassInfo{Package: h.Package, Name: "New" + h.Name}) + "(b.infrastructure)"
	}

	for _, c := range plan.Cases {
		cd := caseData{Contract: c.Contract.FullName(), Versioned: c.Versioned()}
		if !c.Versioned() {
			cd.Single = expr(*c.Single)
		} else {
			cd.Latest = expr(*c.Latest)
			for _, v := range c.Versions {
				cd.Versions = append(cd.Versions, versionData{Version: v.Settings.Version, Expr: expr(v)})
			}
		}
		data.Cases = append(data.Cases, cd)
	}

	content, err := emit(ArtifactLocalBus, target, localBusTemplate, imps, data)
	if err != nil {
		return GeneratedFile{}, nil, err
	}
	file, err := BuildGeneratedFile(g.module, target, content)
	if err != nil {
		return GeneratedFile{}, nil, err
	}
	return file, plan, nil
}

var localBusTemplate = mustTemplate("local_bus", `{{- $f := .Foundation -}}
{{- if .Factories}}
// {{.Name}}Factory builds the {{.Param}} handlers that {{.Name}} cannot construct itself.
type {{.Name}}Factory interface {
{{- range .Factories}}
	// {{.Name}} returns a {{.Handler}}.
	{{.Name}}() {{$f}}.{{$.Kind}}Handler
{{- end}}
}
{{end}}
// {{.Name}} routes {{.Plural}} to their handlers.
type {{.Name}} struct {
	infrastructure {{$f}}.Infrastructure
{{- if .Factories}}
	factory        {{.Name}}Factory
{{- end}}
	strategy       func({{$f}}.{{.Kind}}) {{$f}}.HandlerVersioningStrategy
}

var _ {{$f}}.Local{{.Kind}}Bus = (*{{.Name}})(nil)

// New{{.Name}} creates a {{.Name}}.
func New{{.Name}}(infrastructure {{$f}}.Infrastructure{{if .Factories}}, factory {{.Name}}Factory{{end}}) *{{.Name}} {
	return &{{.Name}}{
		infrastructure: infrastructure,
{{- if .Factories}}
		factory:        factory,
{{- end}}
	}
}

// UseVersioningStrategy sets the strategy deciding which handler version resolves.
func (b *{{.Name}}) UseVersioningStrategy(fn func({{$f}}.{{.Kind}}) {{$f}}.HandlerVersioningStrategy) {
	b.strategy = fn
}

func (b *{{.Name}}) versioningStrategy(instance {{$f}}.{{.Kind}}) {{$f}}.HandlerVersioningStrategy {
	if b.strategy == nil {
		return {{$f}}.UseLatestVersion()
	}
	return b.strategy(instance)
}

// Process dispatches {{.Param}} to its handler.
func (b *{{.Name}}) Process(ctx {{.Context}}.Context, {{.Param}} {{$f}}.{{.Kind}}) {{if .ReturnsResult}}(any, error){{else}}error{{end}} {
	if {{.Param}} == nil {
		return {{if .ReturnsResult}}nil, {{end}}{{$f}}.ErrNilContract
	}
	handler := b.Resolve({{.Param}})
	if handler == nil {
		return {{if .ReturnsResult}}nil, {{end}}{{$f}}.NewHandlerNotFoundError({{$f}}.Bus{{.Kind}}, {{.Param}}.{{.Kind}}Type())
	}
	return handler.Handle(ctx, {{.Param}})
}

// Resolve returns the handler of instance, or nil when none resolves.
func (b *{{.Name}}) Resolve(instance {{$f}}.{{.Kind}}) {{$f}}.{{.Kind}}Handler {
	if instance == nil {
		return nil
	}
	strategy := b.versioningStrategy(instance)
	if strategy.Skip() {
		return nil
	}

	switch instance.{{.Kind}}Type() {
{{- range .Cases}}
	case {{quote .Contract}}:
{{- if .Versioned}}
		if strategy.UseLatestVersion() {
			return {{.Latest}}
		}
		switch strategy.SpecificVersion() {
{{- range .Versions}}
		case {{.Version}}:
			return {{.Expr}}
{{- end}}
		}
		return nil
{{- else}}
		return {{.Single}}
{{- end}}
{{- end}}
	}
	return nil
}
`)
