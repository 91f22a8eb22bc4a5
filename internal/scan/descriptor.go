// Package scan discovers bridgeable logic units in compiled packages.
// It loads type metadata, finds marker-tagged struct types, and matches
// their method sets against the four recognized unit shapes.
package scan

import "fmt"

// Strategy identifies which of the four generation templates applies to a
// candidate. The set is closed.
type Strategy int

const (
	StrategyUnknown Strategy = iota
	SequentialReducer
	ParallelReducer
	SequentialMiddleware
	ParallelMiddleware
)

// String returns the strategy's display name.
func (s Strategy) String() string {
	switch s {
	case SequentialReducer:
		return "sequential-reducer"
	case ParallelReducer:
		return "parallel-reducer"
	case SequentialMiddleware:
		return "sequential-middleware"
	case ParallelMiddleware:
		return "parallel-middleware"
	default:
		return "unknown"
	}
}

// Parallel reports whether the strategy schedules a two-phase fan-out.
func (s Strategy) Parallel() bool {
	return s == ParallelReducer || s == ParallelMiddleware
}

// Filtering reports whether the strategy's transform may reject records.
func (s Strategy) Filtering() bool {
	return s == SequentialMiddleware
}

// TypeRef names one generic argument of a matched shape.
type TypeRef struct {
	Name    string // type name without package qualifier
	PkgPath string // declaring package import path
	PkgName string // declaring package short name
}

// Qualified returns the package-qualified type name.
func (r TypeRef) Qualified() string {
	if r.PkgPath == "" {
		return r.Name
	}
	return r.PkgPath + "." + r.Name
}

// Descriptor is one discovered candidate. Descriptors are read-only,
// recomputed on every scan, and never persisted; user selections are
// keyed by QualifiedName instead.
type Descriptor struct {
	Name      string // candidate type name, e.g. "DamageReducer"
	Namespace string // declaring package import path
	PkgName   string // declaring package short name
	Strategy  Strategy

	State    TypeRef  // zero for middleware strategies
	Action   TypeRef
	SideData *TypeRef // nil for sequential strategies

	// ZeroPayload is set when Action is a struct type with no fields.
	// The emitted reducer branches once per tick on this instead of
	// reading each record.
	ZeroPayload bool

	// Ambiguous lists further shapes the candidate also matched. The
	// first match won; the extras are reported, not silently dropped.
	Ambiguous []Strategy
}

// QualifiedName returns the stable identity used to merge selections
// across scans.
func (d Descriptor) QualifiedName() string {
	return d.Namespace + "." + d.Name
}

// Warning records a package that could not be loaded or inspected. The
// scan continues past it.
type Warning struct {
	Pkg string
	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Pkg, w.Err)
}

// Result is the immutable outcome of one scan pass.
type Result struct {
	Descriptors []Descriptor
	Warnings    []Warning
}
