package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/imports"
)

// Import paths referenced by generated code.
const (
	foundationImport    = "github.com/AshkanYarmoradi/go-foundation"
	codecImport         = "github.com/AshkanYarmoradi/go-foundation/codec"
	eventsourcingImport = "github.com/AshkanYarmoradi/go-foundation/eventsourcing"
	mockingImport       = "github.com/AshkanYarmoradi/go-foundation/testing/mocking"
)

var preferredAliases = map[string]string{
	foundationImport: "foundation",
}

// Identifiers used as locals or receivers in generated code. Package aliases
// never take these names.
var reservedIdentifiers = map[string]bool{
	"b": true, "t": true, "m": true, "p": true, "v": true, "ctx": true, "err": true,
	"query": true, "command": true, "event": true, "instance": true, "strategy": true,
	"handler": true, "message": true, "input": true, "out": true, "body": true,
	"zero": true, "fn": true, "factory": true, "infrastructure": true, "converter": true,
	"mock": true, "bus": true, "result": true,
}

// importSet allocates package aliases for one generated file.
type importSet struct {
	self    string
	aliases map[string]string
	taken   map[string]bool
}

func newImportSet(self string) *importSet {
	return &importSet{
		self:    self,
		aliases: make(map[string]string),
		taken:   make(map[string]bool),
	}
}

// use registers pkg and returns its alias.
func (s *importSet) use(pkg string) string {
	if alias, ok := s.aliases[pkg]; ok {
		return alias
	}
	base, ok := preferredAliases[pkg]
	if !ok {
		base = identifier(lastSegment(pkg))
	}
	if reservedIdentifiers[base] {
		base += "pkg"
	}
	alias := base
	for i := 2; s.taken[alias]; i++ {
		alias = fmt.Sprintf("%s%d", base, i)
	}
	s.aliases[pkg] = alias
	s.taken[alias] = true
	return alias
}

// qualify returns the expression naming c from the generated file.
func (s *importSet) qualify(c ClassInfo) string {
	if c.Package == s.self {
		return c.Name
	}
	return s.use(c.Package) + "." + c.Name
}

// render writes the import block.
func (s *importSet) render() string {
	if len(s.aliases) == 0 {
		return ""
	}
	paths := make([]string, 0, len(s.aliases))
	for p := range s.aliases {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, p := range paths {
		alias := s.aliases[p]
		if alias == lastSegment(p) {
			fmt.Fprintf(&b, "\t%q\n", p)
			continue
		}
		fmt.Fprintf(&b, "\t%s %q\n", alias, p)
	}
	b.WriteString(")\n")
	return b.String()
}

func lastSegment(pkg string) string {
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		return pkg[i+1:]
	}
	return pkg
}

// identifier turns a path segment into a lower case Go identifier.
func identifier(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	out := b.String()
	if out == "" || unicode.IsDigit([]rune(out)[0]) {
		out = "pkg" + out
	}
	return out
}

// emit renders a template into a formatted Go file of target's package.
func emit(artifact string, target ClassInfo, tmpl *template.Template, imps *importSet, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("generator: failed to render %s: %w", target.FullName(), err)
	}

	var src bytes.Buffer
	fmt.Fprintf(&src, "// Code generated by foundation (%s). DO NOT EDIT.\n\n", artifact)
	fmt.Fprintf(&src, "package %s\n\n", identifier(lastSegment(target.Package)))
	src.WriteString(imps.render())
	src.WriteString("\n")
	src.Write(body.Bytes())

	formatted, err := imports.Process("", src.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return "", fmt.Errorf("generator: generated invalid source for %s: %w\n%s", target.FullName(), err, src.String())
	}
	return string(formatted), nil
}

// goString quotes s as a Go string literal.
func goString(s string) string {
	return fmt.Sprintf("%q", s)
}

var templateFuncs = template.FuncMap{
	"quote": goString,
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}
