// Package bridge builds the immutable per-unit specification the emitter
// renders from. A Spec is assembled just before emission and discarded
// after the file is written.
package bridge

import (
	"fmt"

	"github.com/tickforge/bridgegen/internal/scan"
)

// Options is the per-candidate generation configuration.
type Options struct {
	// NameOverride replaces the {candidate}_System naming convention.
	NameOverride string
	// FastPath overrides the strategy's default optimized-path setting.
	// Nil keeps the default: enabled everywhere except sequential
	// middleware, which frequently needs operations the fast path
	// forbids and therefore opts out unless explicitly re-enabled.
	FastPath *bool
	// Order positions the unit among bridges of the same stage.
	Order int
}

// Spec is the immutable input to the emitter.
type Spec struct {
	Candidate     scan.Descriptor
	GeneratedName string
	FastPath      bool
	Order         int
}

// ValidationError marks a candidate that cannot produce a valid spec. The
// candidate is skipped for this run; the batch continues.
type ValidationError struct {
	Candidate string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid candidate %s: %s", e.Candidate, e.Reason)
}

// Build combines a classified descriptor with options into a Spec.
func Build(desc scan.Descriptor, opts Options) (Spec, error) {
	if desc.Strategy == scan.StrategyUnknown {
		return Spec{}, &ValidationError{Candidate: desc.QualifiedName(), Reason: "no strategy assigned"}
	}
	if desc.Action.Name == "" {
		return Spec{}, &ValidationError{Candidate: desc.QualifiedName(), Reason: "missing action type argument"}
	}
	switch desc.Strategy {
	case scan.SequentialReducer, scan.ParallelReducer:
		if desc.State.Name == "" {
			return Spec{}, &ValidationError{Candidate: desc.QualifiedName(), Reason: "missing state type argument"}
		}
	}
	if desc.Strategy.Parallel() {
		if desc.SideData == nil || desc.SideData.Name == "" {
			return Spec{}, &ValidationError{Candidate: desc.QualifiedName(), Reason: "missing side-data type argument"}
		}
		// The prepared value is shared read-only across workers, so it
		// must be a type the candidate's package owns.
		if desc.SideData.PkgPath != desc.Namespace {
			return Spec{}, &ValidationError{
				Candidate: desc.QualifiedName(),
				Reason: fmt.Sprintf("side-data type %s is not declared in the candidate's package",
					desc.SideData.Qualified()),
			}
		}
	}

	name := opts.NameOverride
	if name == "" {
		name = desc.Name + "_System"
	}

	return Spec{
		Candidate:     desc,
		GeneratedName: name,
		FastPath:      fastPath(desc.Strategy, opts.FastPath),
		Order:         opts.Order,
	}, nil
}

func fastPath(strategy scan.Strategy, override *bool) bool {
	if override != nil {
		return *override
	}
	return strategy != scan.SequentialMiddleware
}
