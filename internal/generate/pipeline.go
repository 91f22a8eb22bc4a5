package generate

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tickforge/bridgegen/internal/bridge"
	"github.com/tickforge/bridgegen/internal/emit"
	"github.com/tickforge/bridgegen/internal/output"
	"github.com/tickforge/bridgegen/internal/scan"
)

// Pipeline turns a curated candidate selection into written bridge files.
// It is single-threaded, synchronous, and invoked on demand; concurrent
// runs are not supported.
type Pipeline struct {
	emitter *emit.Emitter
	writer  *output.Writer
	options map[string]bridge.Options // keyed by qualified name
	logger  *zap.Logger
}

// Config wires a pipeline.
type Config struct {
	EnginePath string
	OutputRoot string
	// Options carries per-candidate overrides keyed by qualified name.
	Options map[string]bridge.Options
	Logger  *zap.Logger
}

// New creates a pipeline from config.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		emitter: emit.New(cfg.EnginePath),
		writer:  output.New(cfg.OutputRoot, logger),
		options: cfg.Options,
		logger:  logger,
	}
}

// Run generates bridges for the selected descriptors. scanResult supplies
// the discovery warnings the report must carry; selected is the curated
// subset the invoker wants generated. All per-candidate failures are
// recovered locally and reported; the batch never aborts part way.
func (p *Pipeline) Run(scanResult *scan.Result, selected []scan.Descriptor) *Report {
	report := &Report{RunID: uuid.NewString()}

	for _, w := range scanResult.Warnings {
		report.addError(GenError{
			Phase:    PhaseDiscovery,
			Code:     CodeDiscoveryWarning,
			Message:  w.String(),
			Severity: Warning,
		})
	}
	report.step("scan", true, "%d candidate(s) discovered, %d warning(s)",
		len(scanResult.Descriptors), len(scanResult.Warnings))

	if len(selected) == 0 {
		report.NothingToDo = true
		report.step("generate", false, "no eligible candidates")
		p.logger.Info("nothing to generate", zap.String("run", report.RunID))
		return report
	}

	seenPaths := make(map[string]string) // written path -> qualified name
	for _, desc := range selected {
		p.runCandidate(desc, report, seenPaths)
	}

	report.Success = report.Generated > 0
	report.step("generate", report.Success, "%d generated, %d skipped",
		report.Generated, report.Skipped)
	p.logger.Info("batch complete",
		zap.String("run", report.RunID),
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped))
	return report
}

func (p *Pipeline) runCandidate(desc scan.Descriptor, report *Report, seenPaths map[string]string) {
	name := desc.QualifiedName()

	for _, extra := range desc.Ambiguous {
		report.addError(GenError{
			Phase:     PhaseClassification,
			Code:      CodeClassificationAmbiguity,
			Candidate: name,
			Message:   fmt.Sprintf("also matches %s; kept first match %s", extra, desc.Strategy),
			Severity:  Warning,
		})
	}

	spec, err := bridge.Build(desc, p.options[name])
	if err != nil {
		p.skip(report, GenError{
			Phase: PhaseSpec, Code: CodeSpecValidation,
			Candidate: name, Message: err.Error(), Severity: Error,
		})
		return
	}

	text, err := p.emitter.Emit(spec)
	if err != nil {
		p.skip(report, GenError{
			Phase: PhaseEmit, Code: CodeEmission,
			Candidate: name, Message: err.Error(), Severity: Error,
		})
		return
	}

	path, err := p.writer.Write(desc.Namespace, spec.GeneratedName, text)
	if err != nil {
		p.skip(report, GenError{
			Phase: PhaseWrite, Code: CodeWrite,
			Candidate: name, Message: err.Error(), Severity: Error,
		})
		return
	}

	if prev, ok := seenPaths[path]; ok {
		// Same generated name inside one namespace: the later candidate
		// overwrote the earlier one. Reported, not prevented.
		report.addError(GenError{
			Phase: PhaseWrite, Code: CodeNameCollision,
			Candidate: name,
			Message:   fmt.Sprintf("overwrote output of %s at %s", prev, path),
			Severity:  Warning,
		})
	} else {
		report.Written = append(report.Written, path)
	}
	seenPaths[path] = name
	report.Generated++
}

func (p *Pipeline) skip(report *Report, e GenError) {
	report.Skipped++
	report.addError(e)
	p.logger.Warn("skipping candidate",
		zap.String("candidate", e.Candidate),
		zap.String("phase", string(e.Phase)),
		zap.String("reason", e.Message))
}
