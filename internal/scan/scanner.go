package scan

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// markerMethod is provided by embedding engine.Unit. Its presence is the
// tag that makes a type a candidate.
const markerMethod = "BridgeUnit"

// Scanner discovers candidates by loading and analyzing packages.
type Scanner struct {
	dir        string
	enginePath string
	logger     *zap.Logger
}

// NewScanner creates a scanner rooted at dir. enginePath is the import
// path of the engine package whose Context/ReadOnly types anchor shape
// matching.
func NewScanner(dir, enginePath string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{dir: dir, enginePath: enginePath, logger: logger}
}

// Scan loads the given package patterns and returns every candidate found,
// plus one warning per package that could not be inspected. The result is
// an immutable value; callers own selection state separately. Only a total
// load failure (no packages at all) returns an error.
func (s *Scanner) Scan(patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedName | packages.NeedFiles | packages.NeedImports,
		Dir: s.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %s", strings.Join(patterns, ", "))
	}

	result := &Result{}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			// Unreadable package: warn and keep scanning the rest.
			for _, e := range pkg.Errors {
				result.Warnings = append(result.Warnings, Warning{Pkg: pkg.PkgPath, Err: fmt.Errorf("%s", e.Msg)})
			}
			s.logger.Warn("skipping unreadable package",
				zap.String("package", pkg.PkgPath),
				zap.Int("errors", len(pkg.Errors)))
			continue
		}
		if pkg.Types == nil {
			result.Warnings = append(result.Warnings, Warning{Pkg: pkg.PkgPath, Err: fmt.Errorf("no type information")})
			continue
		}
		s.scanPackage(pkg, result)
	}

	sort.Slice(result.Descriptors, func(i, j int) bool {
		return result.Descriptors[i].QualifiedName() < result.Descriptors[j].QualifiedName()
	})
	return result, nil
}

func (s *Scanner) scanPackage(pkg *packages.Package, result *Result) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			continue
		}
		if _, ok := named.Underlying().(*types.Struct); !ok {
			continue
		}

		methods := s.collectMethods(named)
		if !hasMarker(methods) {
			continue
		}

		match, err := Classify(methods, s.enginePath)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Pkg: pkg.PkgPath,
				Err: fmt.Errorf("%s: %w", name, err),
			})
			s.logger.Warn("rejecting candidate",
				zap.String("candidate", pkg.PkgPath+"."+name),
				zap.Error(err))
			continue
		}
		if match == nil {
			// Tagged but shapeless: not an error, the marker alone does
			// not obligate a bridge.
			s.logger.Debug("tagged type matches no shape",
				zap.String("type", pkg.PkgPath+"."+name))
			continue
		}

		desc := Descriptor{
			Name:        name,
			Namespace:   pkg.PkgPath,
			PkgName:     pkg.Name,
			Strategy:    match.Strategy,
			State:       match.State,
			Action:      match.Action,
			SideData:    match.SideData,
			ZeroPayload: match.ZeroPayload,
			Ambiguous:   match.Ambiguous,
		}
		if len(match.Ambiguous) > 0 {
			s.logger.Warn("candidate matches multiple shapes, first wins",
				zap.String("candidate", desc.QualifiedName()),
				zap.String("chosen", match.Strategy.String()))
		}
		result.Descriptors = append(result.Descriptors, desc)
	}
}

func (s *Scanner) collectMethods(named *types.Named) []Method {
	ms := types.NewMethodSet(types.NewPointer(named))
	out := make([]Method, 0, ms.Len())
	for i := 0; i < ms.Len(); i++ {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok {
			continue
		}
		m := Method{Name: fn.Name()}
		for j := 0; j < sig.Params().Len(); j++ {
			m.Params = append(m.Params, paramOf(sig.Params().At(j).Type()))
		}
		for j := 0; j < sig.Results().Len(); j++ {
			m.Results = append(m.Results, paramOf(sig.Results().At(j).Type()))
		}
		if sig.Results().Len() == 1 {
			if basic, ok := sig.Results().At(0).Type().(*types.Basic); ok && basic.Kind() == types.Bool {
				m.BoolResult = true
			}
		}
		out = append(out, m)
	}
	return out
}

func hasMarker(methods []Method) bool {
	for _, m := range methods {
		if m.Name == markerMethod && len(m.Params) == 0 && len(m.Results) == 0 {
			return true
		}
	}
	return false
}

func paramOf(t types.Type) Param {
	p := Param{}
	if ptr, ok := t.(*types.Pointer); ok {
		p.Pointer = true
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return p
	}
	p.Type.Name = named.Obj().Name()
	if pkg := named.Obj().Pkg(); pkg != nil {
		p.Type.PkgPath = pkg.Path()
		p.Type.PkgName = pkg.Name()
	}
	if st, ok := named.Underlying().(*types.Struct); ok {
		p.Struct = true
		p.ZeroField = st.NumFields() == 0
	}
	return p
}
