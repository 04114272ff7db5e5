package generator

import (
	"path"
	"strings"
	"unicode"

	"github.com/AshkanYarmoradi/go-foundation"
)

// GeneratedPackageSegment is appended to a package path to form the package
// holding generated code.
const GeneratedPackageSegment = "generated"

// MocksPackageSegment is appended to a generated package to hold test doubles.
const MocksPackageSegment = "mocks"

// Artifact names, used for file headers, tracing and metrics.
const (
	ArtifactLocalBus               = "local_bus"
	ArtifactMessageTranslator      = "message_translator"
	ArtifactInfrastructureProvider = "infrastructure_provider"
	ArtifactMockableBus            = "mockable_bus"
	ArtifactEventFields            = "event_fields"
)

// GeneratedFile is one generated source file.
type GeneratedFile struct {
	Directory string
	FileName  string
	Path      string
	Content   string
}

// GeneratedPackage returns the package holding generated code for pkg.
func GeneratedPackage(pkg string) string {
	if pkg == "" {
		return GeneratedPackageSegment
	}
	return pkg + "/" + GeneratedPackageSegment
}

// GuessPackageName returns the common ancestor of two import paths.
// An empty path yields the other one. When the paths share no leading
// segment, current is kept.
func GuessPackageName(current, given string) string {
	switch {
	case current == "":
		return given
	case given == "":
		return current
	case isAncestor(current, given):
		return current
	case isAncestor(given, current):
		return given
	}

	currentParts := strings.Split(current, "/")
	givenParts := strings.Split(given, "/")
	var parts []string
	for i := 0; i < len(currentParts) && i < len(givenParts); i++ {
		if currentParts[i] != givenParts[i] {
			break
		}
		parts = append(parts, currentParts[i])
	}
	if len(parts) == 0 {
		return current
	}
	return strings.Join(parts, "/")
}

func isAncestor(ancestor, pkg string) bool {
	return pkg == ancestor || strings.HasPrefix(pkg, ancestor+"/")
}

// CommonPackage folds GuessPackageName over the given packages.
func CommonPackage(packages ...string) string {
	var current string
	for _, p := range packages {
		current = GuessPackageName(current, p)
	}
	return current
}

// LocalBusTarget returns the target of the local bus of a kind.
// The bus lives in the generated package of the common ancestor of its contracts.
func LocalBusTarget(kind BusKind, handlers []HandlerSettings) ClassInfo {
	packages := make([]string, 0, len(handlers))
	for _, h := range handlers {
		packages = append(packages, h.Contract.Package)
	}
	return ClassInfo{
		Package: GeneratedPackage(CommonPackage(packages...)),
		Name:    "Local" + kind.Title() + "Bus",
	}
}

// MessageTranslatorTarget returns the target of the translator of a contract.
func MessageTranslatorTarget(contract ClassInfo) ClassInfo {
	return ClassInfo{
		Package: GeneratedPackage(contract.Package),
		Name:    contract.Name + "MessageTranslator",
	}
}

// MockableBusTarget returns the target of the test double of a local bus.
func MockableBusTarget(bus ClassInfo) ClassInfo {
	return ClassInfo{
		Package: bus.Package + "/" + MocksPackageSegment,
		Name:    "Mockable" + bus.Name,
	}
}

// EventFieldsTarget returns the target of the field settings of an event.
func EventFieldsTarget(event ClassInfo) ClassInfo {
	return ClassInfo{
		Package: GeneratedPackage(event.Package),
		Name:    event.Name + "Fields",
	}
}

// InfrastructureProviderTarget returns the target of the infrastructure
// provider: the generated package of the common ancestor of every contract,
// handler contract and event in the bundle.
func InfrastructureProviderTarget(s *Settings) ClassInfo {
	var current string
	for _, c := range s.Contracts {
		current = GuessPackageName(current, c.Contract.Package)
	}
	for _, h := range s.Handlers {
		current = GuessPackageName(current, h.Contract.Package)
	}
	for _, e := range s.Events {
		current = GuessPackageName(current, e.Event.Package)
	}
	return ClassInfo{
		Package: GeneratedPackage(current),
		Name:    "AutoGeneratedInfrastructureProvider",
	}
}

// BuildGeneratedFile places content for target inside the project module.
// Directories are relative to the module root; packages outside the module
// are rejected. An empty module keeps the full import path as directory.
func BuildGeneratedFile(module string, target ClassInfo, content string) (GeneratedFile, error) {
	dir := target.Package
	if module != "" {
		switch {
		case dir == module:
			dir = "."
		case strings.HasPrefix(dir, module+"/"):
			dir = strings.TrimPrefix(dir, module+"/")
		default:
			return GeneratedFile{}, foundation.NewSettingsError("output", target.FullName(),
				"package is outside of module "+module)
		}
	}
	fileName := SnakeCase(target.Name) + ".go"
	return GeneratedFile{
		Directory: dir,
		FileName:  fileName,
		Path:      path.Join(dir, fileName),
		Content:   content,
	}, nil
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms together.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
