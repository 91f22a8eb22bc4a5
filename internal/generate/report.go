package generate

import (
	"fmt"
	"strings"
)

// GenerationResult is the outcome of one logical pipeline step.
type GenerationResult struct {
	Step    string
	Success bool
	Summary string
}

// Report is the consolidated end-of-batch result handed back to the
// invoker, which sees only this and the written file list.
type Report struct {
	RunID string

	// Success is true only when at least one candidate both validated
	// and wrote successfully.
	Success bool

	// NothingToDo distinguishes "zero eligible candidates" from "every
	// candidate failed". A nothing-to-do batch is not a failure the
	// user has to chase.
	NothingToDo bool

	Steps   []GenerationResult
	Errors  []GenError
	Written []string

	Generated int
	Skipped   int
}

func (r *Report) step(name string, success bool, format string, args ...interface{}) {
	r.Steps = append(r.Steps, GenerationResult{
		Step:    name,
		Success: success,
		Summary: fmt.Sprintf(format, args...),
	})
}

func (r *Report) addError(e GenError) {
	r.Errors = append(r.Errors, e)
}

// Summary renders the human-readable batch outcome.
func (r *Report) Summary() string {
	var b strings.Builder
	switch {
	case r.NothingToDo:
		b.WriteString("nothing to generate: no eligible candidates")
	case r.Success:
		fmt.Fprintf(&b, "generated %d bridge(s)", r.Generated)
	default:
		fmt.Fprintf(&b, "generation failed: %d candidate(s) skipped", r.Skipped)
	}
	if r.Skipped > 0 && !r.NothingToDo && r.Success {
		fmt.Fprintf(&b, ", %d skipped", r.Skipped)
	}
	if n := r.warningCount(); n > 0 {
		fmt.Fprintf(&b, ", %d warning(s)", n)
	}
	return b.String()
}

func (r *Report) warningCount() int {
	n := 0
	for _, e := range r.Errors {
		if e.Severity == Warning {
			n++
		}
	}
	return n
}
