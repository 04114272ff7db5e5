package generator

// MessageTranslatorGenerator generates the message translator of a contract.
type MessageTranslatorGenerator struct {
	module string
}

// NewMessageTranslatorGenerator creates a MessageTranslatorGenerator writing into module.
func NewMessageTranslatorGenerator(module string) *MessageTranslatorGenerator {
	return &MessageTranslatorGenerator{module: module}
}

type translatorData struct {
	Name               string
	Foundation         string
	Codec              string
	CodecName          string
	Contract           string
	ContractName       string
	Implementation     string
	ImplementationName string
	Adapt              bool
	Fields             []Property
	Tag                string
	BodyType           string
	ImplementationType string
}

// Generate renders the translator of setting. messaging may be nil. When
// implementation differs from the contract, the contract is an interface and
// the translator adapts instances through the property getters.
func (g *MessageTranslatorGenerator) Generate(setting ContractSetting, messaging *MessagingSetting, implementation ClassInfo, properties []Property) (GeneratedFile, error) {
	target := MessageTranslatorTarget(setting.Contract)
	imps := newImportSet(target.Package)

	data := translatorData{
		Name:               target.Name,
		Foundation:         imps.use(foundationImport),
		Codec:              imps.use(codecImport),
		CodecName:          setting.CodecName(),
		Contract:           imps.qualify(setting.Contract),
		ContractName:       setting.Contract.Name,
		Implementation:     imps.qualify(implementation),
		ImplementationName: implementation.Name,
		Adapt:              setting.Contract != implementation,
		BodyType:           setting.Contract.FullName(),
		ImplementationType: implementation.FullName(),
	}
	if messaging != nil {
		data.Tag = messaging.Type
	}
	if data.Adapt {
		for _, p := range properties {
			if !p.HasBody {
				data.Fields = append(data.Fields, p)
			}
		}
	}

	content, err := emit(ArtifactMessageTranslator, target, translatorTemplate, imps, data)
	if err != nil {
		return GeneratedFile{}, err
	}
	return BuildGeneratedFile(g.module, target, content)
}

var translatorTemplate = mustTemplate("message_translator", `{{- $f := .Foundation -}}
// {{.Name}} converts {{.ContractName}} to and from {{$f}}.Message.
type {{.Name}} struct{}

var (
	_ {{$f}}.MessageTranslator[{{.Contract}}] = {{.Name}}{}
	_ {{$f}}.MessageConverter = {{.Name}}{}
)

func ({{.Name}}) codec() {{.Codec}}.Codec {
	return {{.Codec}}.MustLookup({{quote .CodecName}})
}
{{if .Adapt}}
func ({{.Name}}) make{{.ImplementationName}}(instance {{.Contract}}) *{{.Implementation}} {
	if v, ok := instance.(*{{.Implementation}}); ok {
		return v
	}
	return &{{.Implementation}}{
{{- range .Fields}}
		{{.Name}}: instance.{{.GetterName}}(),
{{- end}}
	}
}
{{end}}
// CanConvert reports whether message carries a {{.ContractName}}.
func ({{.Name}}) CanConvert(message {{$f}}.Message) bool {
{{- if .Tag}}
	return {{$f}}.HasStringAttribute(message, {{$f}}.AttributeType, {{quote .Tag}})
{{- else}}
	return {{$f}}.HasStringAttribute(message, {{$f}}.AttributeBodyType, {{quote .BodyType}})
{{- end}}
}

// FromMessage decodes the body of message.
func (t {{.Name}}) FromMessage(message {{$f}}.Message) ({{.Contract}}, error) {
	out := new({{.Implementation}})
	if err := {{$f}}.DecodeBody(t.codec(), message, out); err != nil {
		var zero {{.Contract}}
		return zero, err
	}
	return {{if .Adapt}}out{{else}}*out{{end}}, nil
}

// ConvertFromMessage decodes message without static typing.
func (t {{.Name}}) ConvertFromMessage(message {{$f}}.Message) (any, error) {
	v, err := t.FromMessage(message)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ToMessage encodes input and attaches the routing attributes.
func (t {{.Name}}) ToMessage(input {{.Contract}}) ({{$f}}.Message, error) {
{{- if .Adapt}}
	if input == nil {
		return {{$f}}.Message{}, {{$f}}.NewEncodeError({{quote .ContractName}}, {{$f}}.ErrNilContract)
	}
{{- end}}
	body, err := {{$f}}.EncodeBody(t.codec(), {{if .Adapt}}t.make{{.ImplementationName}}(input){{else}}&input{{end}})
	if err != nil {
		return {{$f}}.Message{}, err
	}
	return {{$f}}.CreateMessageWithAttributes(body, map[string]{{$f}}.MessageAttribute{
{{- if .Tag}}
		{{$f}}.AttributeType: {{$f}}.CreateStringAttribute({{quote .Tag}}),
{{- end}}
		{{$f}}.AttributeBodyType: {{$f}}.CreateStringAttribute({{quote .BodyType}}),
		{{$f}}.AttributeImplementationType: {{$f}}.CreateStringAttribute({{quote .ImplementationType}}),
	}), nil
}
`)
