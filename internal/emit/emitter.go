// Package emit renders bridge specifications into compilable Go source.
// Rendering is pure and template-driven: identical specs yield identical
// text except for the one generation-timestamp line in the banner.
package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tickforge/bridgegen/internal/bridge"
	"github.com/tickforge/bridgegen/internal/scan"
)

// PackageName is the package every generated file declares. All bridges
// for one namespace land in the same Generated directory, so they must
// agree on it.
const PackageName = "generated"

// timestampPrefix introduces the only intentionally non-deterministic
// line of a generated file.
const timestampPrefix = "// Generated at: "

// Emitter renders specs against one engine import path.
type Emitter struct {
	enginePath string
	now        func() time.Time
}

// New creates an emitter targeting the engine package at enginePath.
func New(enginePath string) *Emitter {
	return &Emitter{enginePath: enginePath, now: time.Now}
}

// Error marks a spec the emitter could not render. No partial file is
// ever produced: writes happen only after the full text renders.
type Error struct {
	Unit   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("emit %s: %s", e.Unit, e.Reason)
}

// Emit renders one spec into a complete source file.
func (e *Emitter) Emit(spec bridge.Spec) (string, error) {
	prov := providerFor(spec.Candidate.Strategy)
	if prov == nil {
		return "", &Error{Unit: spec.GeneratedName, Reason: fmt.Sprintf("no template for strategy %s", spec.Candidate.Strategy)}
	}

	g := newFileWriter(e.enginePath)
	g.collectImports(spec)

	g.writeLine("// Code generated by bridgegen. DO NOT EDIT.")
	g.writeLine("%s%s", timestampPrefix, e.now().UTC().Format(time.RFC3339))
	g.writeLine("")
	g.writeLine("package %s", PackageName)
	g.writeLine("")
	g.writeImports()
	g.writeLine("")

	unitType := g.qualify(scan.TypeRef{
		Name:    spec.Candidate.Name,
		PkgPath: spec.Candidate.Namespace,
		PkgName: spec.Candidate.PkgName,
	})

	g.writeLine("// %s schedules %s once per tick.", spec.GeneratedName, unitType)
	g.writeLine("type %s struct {", spec.GeneratedName)
	g.indent++
	g.writeLine("unit %s", unitType)
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	e.emitRegistration(g, spec)
	g.writeLine("")

	g.writeLine("func (s *%s) Tick(w *engine.World) {", spec.GeneratedName)
	g.indent++
	prov.prologue(g, spec)
	prov.body(g, spec)
	prov.epilogue(g, spec)
	g.indent--
	g.writeLine("}")

	return g.buf.String(), nil
}

func (e *Emitter) emitRegistration(g *fileWriter, spec bridge.Spec) {
	g.writeLine("func init() {")
	g.indent++
	g.writeLine("engine.Register(")
	g.indent++
	g.writeLine("func() engine.TickUnit { return &%s{} },", spec.GeneratedName)
	g.writeLine("engine.WithName(%q),", spec.GeneratedName)
	g.writeLine("engine.WithOrder(%d),", spec.Order)
	if spec.FastPath {
		g.writeLine("engine.WithFastPath(),")
	}
	g.indent--
	g.writeLine(")")
	g.indent--
	g.writeLine("}")
}

// StripTimestamp removes the generation-timestamp line so output can be
// compared byte for byte.
func StripTimestamp(src string) string {
	lines := strings.Split(src, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, timestampPrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// fileWriter accumulates indented source text and manages the import
// block for one generated file.
type fileWriter struct {
	buf        bytes.Buffer
	indent     int
	enginePath string
	aliases    map[string]string // import path -> alias
}

func newFileWriter(enginePath string) *fileWriter {
	return &fileWriter{
		enginePath: enginePath,
		aliases:    map[string]string{enginePath: "engine"},
	}
}

func (g *fileWriter) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		fmt.Fprintf(&g.buf, format, args...)
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// collectImports records every package the spec's type references pull in
// and assigns stable aliases before any text is written.
func (g *fileWriter) collectImports(spec bridge.Spec) {
	d := spec.Candidate
	g.addImport(d.Namespace, d.PkgName)
	refs := []scan.TypeRef{d.Action}
	if d.State.Name != "" {
		refs = append(refs, d.State)
	}
	if d.SideData != nil {
		refs = append(refs, *d.SideData)
	}
	for _, r := range refs {
		if r.PkgPath != "" {
			g.addImport(r.PkgPath, r.PkgName)
		}
	}
}

func (g *fileWriter) addImport(path, name string) {
	if _, ok := g.aliases[path]; ok {
		return
	}
	alias := name
	for g.aliasTaken(alias) {
		alias += "x"
	}
	g.aliases[path] = alias
}

func (g *fileWriter) aliasTaken(alias string) bool {
	for _, a := range g.aliases {
		if a == alias {
			return true
		}
	}
	return false
}

func (g *fileWriter) writeImports() {
	paths := make([]string, 0, len(g.aliases))
	for p := range g.aliases {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	g.writeLine("import (")
	g.indent++
	for _, p := range paths {
		g.writeLine("%s %q", g.aliases[p], p)
	}
	g.indent--
	g.writeLine(")")
}

// qualify renders a type reference with its import alias.
func (g *fileWriter) qualify(r scan.TypeRef) string {
	if r.PkgPath == "" {
		return r.Name
	}
	return g.aliases[r.PkgPath] + "." + r.Name
}
