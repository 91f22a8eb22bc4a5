package scan

import "fmt"

// Shape matching is structural: candidate method sets are compared against
// a static table of {interface name, arity, method shapes} descriptors,
// never against interface identity. Type identity across separately
// loaded modules is unreliable, so everything here works on names.

// Param describes one parameter or result position of a candidate method.
type Param struct {
	Type      TypeRef
	Pointer   bool
	ZeroField bool // named struct type with no fields
	Struct    bool // named struct type
}

// Method is the shape-relevant view of one candidate method.
type Method struct {
	Name       string
	Params     []Param
	Results    []Param
	BoolResult bool // exactly one result and it is the builtin bool
}

// shape is one row of the static shape table.
type shape struct {
	iface    string // engine interface name, for diagnostics
	arity    int    // number of generic arguments
	strategy Strategy
}

// shapeTable fixes the match order. A candidate matching more than one
// row keeps the first and reports the rest as an ambiguity.
var shapeTable = []shape{
	{iface: "Reducer", arity: 2, strategy: SequentialReducer},
	{iface: "ParallelReducer", arity: 3, strategy: ParallelReducer},
	{iface: "Middleware", arity: 1, strategy: SequentialMiddleware},
	{iface: "ParallelMiddleware", arity: 2, strategy: ParallelMiddleware},
}

// Match is the outcome of classifying one candidate's method set.
type Match struct {
	Strategy Strategy
	State    TypeRef
	Action   TypeRef
	SideData *TypeRef
	// ZeroPayload mirrors Descriptor.ZeroPayload.
	ZeroPayload bool
	// Ambiguous lists the shapes beyond the first that also matched.
	Ambiguous []Strategy
}

// Classify matches a candidate's method set against the shape table.
// enginePath is the import path of the engine package, used to recognize
// the Context and ReadOnly sentinel parameters by name. A nil, nil return
// means no shape matched; a non-nil error is a contract violation (the
// candidate is shaped like a parallel middleware but tries to filter).
func Classify(methods []Method, enginePath string) (*Match, error) {
	reduce := findMethod(methods, "Reduce")
	apply := findMethod(methods, "Apply")
	prepare := findMethod(methods, "Prepare")

	var matches []*Match
	for _, row := range shapeTable {
		if m := matchShape(row.strategy, reduce, apply, prepare, enginePath); m != nil {
			matches = append(matches, m)
		}
	}

	if len(matches) == 0 {
		// A two-phase Apply returning bool matches no shape on purpose:
		// parallel middleware cannot filter, and emitting an inert
		// bridge for it would hide the bug.
		if apply != nil && prepare != nil && apply.BoolResult {
			return nil, fmt.Errorf("parallel middleware cannot filter: Apply must not return bool")
		}
		return nil, nil
	}

	first := matches[0]
	for _, extra := range matches[1:] {
		first.Ambiguous = append(first.Ambiguous, extra.Strategy)
	}
	return first, nil
}

func findMethod(methods []Method, name string) *Method {
	for i := range methods {
		if methods[i].Name == name {
			return &methods[i]
		}
	}
	return nil
}

func matchShape(st Strategy, reduce, apply, prepare *Method, enginePath string) *Match {
	switch st {
	case SequentialReducer:
		// Reduce(state *S, action A, ctx engine.Context)
		if reduce == nil || len(reduce.Params) != 3 || len(reduce.Results) != 0 {
			return nil
		}
		p := reduce.Params
		if !p[0].Pointer || p[1].Pointer || !isEngineType(p[2], "Context", enginePath) {
			return nil
		}
		return &Match{
			Strategy:    SequentialReducer,
			State:       p[0].Type,
			Action:      p[1].Type,
			ZeroPayload: p[1].ZeroField,
		}

	case ParallelReducer:
		// Prepare(engine.ReadOnly) D + Reduce(state *S, action A, data D)
		if reduce == nil || len(reduce.Params) != 3 || len(reduce.Results) != 0 {
			return nil
		}
		p := reduce.Params
		if !p[0].Pointer || p[1].Pointer || isEngineType(p[2], "Context", enginePath) {
			return nil
		}
		if !prepareYields(prepare, p[2], enginePath) {
			return nil
		}
		side := p[2].Type
		return &Match{
			Strategy:    ParallelReducer,
			State:       p[0].Type,
			Action:      p[1].Type,
			SideData:    &side,
			ZeroPayload: p[1].ZeroField,
		}

	case SequentialMiddleware:
		// Apply(action *A, ctx engine.Context) bool
		if apply == nil || len(apply.Params) != 2 || !apply.BoolResult {
			return nil
		}
		p := apply.Params
		if !p[0].Pointer || !isEngineType(p[1], "Context", enginePath) {
			return nil
		}
		return &Match{
			Strategy: SequentialMiddleware,
			Action:   p[0].Type,
		}

	case ParallelMiddleware:
		// Prepare(engine.ReadOnly) D + Apply(action *A, data D)
		if apply == nil || len(apply.Params) != 2 || len(apply.Results) != 0 {
			return nil
		}
		p := apply.Params
		if !p[0].Pointer || isEngineType(p[1], "Context", enginePath) {
			return nil
		}
		if !prepareYields(prepare, p[1], enginePath) {
			return nil
		}
		side := p[1].Type
		return &Match{
			Strategy: ParallelMiddleware,
			Action:   p[0].Type,
			SideData: &side,
		}
	}
	return nil
}

// prepareYields checks Prepare(engine.ReadOnly) D where D matches want.
func prepareYields(prepare *Method, want Param, enginePath string) bool {
	if prepare == nil || len(prepare.Params) != 1 || len(prepare.Results) != 1 {
		return false
	}
	if !isEngineType(prepare.Params[0], "ReadOnly", enginePath) {
		return false
	}
	got := prepare.Results[0].Type
	return got.Name == want.Type.Name && got.PkgPath == want.Type.PkgPath
}

func isEngineType(p Param, name, enginePath string) bool {
	return !p.Pointer && p.Type.Name == name && p.Type.PkgPath == enginePath
}
