// Package generate orchestrates the scan → select → build → emit → write
// pipeline and aggregates the per-step results into one batch report.
package generate

import "fmt"

// Severity grades a pipeline error. Warnings never exclude a candidate;
// errors exclude the candidate but never abort the batch.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Phase names the pipeline step an error belongs to.
type Phase string

const (
	PhaseDiscovery      Phase = "discovery"
	PhaseClassification Phase = "classification"
	PhaseSpec           Phase = "spec"
	PhaseEmit           Phase = "emit"
	PhaseWrite          Phase = "write"
)

// Error codes, one per taxonomy entry.
const (
	CodeDiscoveryWarning        = "SCAN001"
	CodeClassificationAmbiguity = "CLASS001"
	CodeSpecValidation          = "SPEC001"
	CodeEmission                = "EMIT001"
	CodeWrite                   = "WRITE001"
	CodeNameCollision           = "WRITE002"
)

// GenError is one recovered pipeline error. Every skipped candidate
// produces exactly one; nothing is skipped silently.
type GenError struct {
	Phase     Phase
	Code      string
	Candidate string
	Message   string
	Severity  Severity
}

func (e GenError) Error() string {
	if e.Candidate == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Phase, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Phase, e.Candidate, e.Message)
}
