package generator

import (
	"sort"
	"strings"

	"github.com/AshkanYarmoradi/go-foundation/eventsourcing"
)

// EventFieldsGenerator generates the field settings table of an event.
type EventFieldsGenerator struct {
	module string
}

// NewEventFieldsGenerator creates an EventFieldsGenerator writing into module.
func NewEventFieldsGenerator(module string) *EventFieldsGenerator {
	return &EventFieldsGenerator{module: module}
}

type eventFieldsData struct {
	Name          string
	EventName     string
	Eventsourcing string
	Fields        []eventFieldData
}

type eventFieldData struct {
	Name    string
	Literal string
}

// Generate renders the field table of an event, fields sorted by name.
func (g *EventFieldsGenerator) Generate(settings EventSettings) (GeneratedFile, error) {
	target := EventFieldsTarget(settings.Event)
	imps := newImportSet(target.Package)

	data := eventFieldsData{
		Name:          target.Name,
		EventName:     settings.Event.Name,
		Eventsourcing: imps.use(eventsourcingImport),
	}

	names := make([]string, 0, len(settings.Fields))
	for name := range settings.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data.Fields = append(data.Fields, eventFieldData{
			Name:    name,
			Literal: settingLiteral(settings.Fields[name]),
		})
	}

	content, err := emit(ArtifactEventFields, target, eventFieldsTemplate, imps, data)
	if err != nil {
		return GeneratedFile{}, err
	}
	return BuildGeneratedFile(g.module, target, content)
}

func settingLiteral(s eventsourcing.Setting) string {
	var parts []string
	if s.Metadata {
		parts = append(parts, "Metadata: true")
	}
	if s.Encrypted {
		parts = append(parts, "Encrypted: true")
	}
	if s.Faked != "" {
		parts = append(parts, "Faked: "+goString(s.Faked))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

var eventFieldsTemplate = mustTemplate("event_fields", `// {{.Name}} holds the storage settings of the {{.EventName}} fields.
var {{.Name}} = map[string]{{.Eventsourcing}}.Setting{
{{- range .Fields}}
	{{quote .Name}}: {{.Literal}},
{{- end}}
}
`)
