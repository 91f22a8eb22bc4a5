package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tickforge/bridgegen/internal/cli/config"
	"github.com/tickforge/bridgegen/internal/generate"
	"github.com/tickforge/bridgegen/internal/output"
	"github.com/tickforge/bridgegen/internal/scan"
	"github.com/tickforge/bridgegen/internal/selection"
)

var (
	generateAll         bool
	generateInteractive bool
	generateDryRun      bool
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Generate bridges for the selected candidates",
		Long: `Run the full pipeline: scan for candidates, merge the persisted
selection, build specs, render each strategy's bridge, and write the
files under the output root.

Per-candidate failures are reported and skipped; the batch always runs
to completion.`,
		Example: `  # Generate using the persisted selection
  bridgegen generate

  # Select every discovered candidate
  bridgegen generate --all

  # Curate the selection interactively before generating
  bridgegen generate --interactive

  # Show what would be written without touching the filesystem
  bridgegen generate --dry-run`,
		RunE: runGenerate,
	}

	cmd.Flags().BoolVar(&generateAll, "all", false, "Include every discovered candidate")
	cmd.Flags().BoolVarP(&generateInteractive, "interactive", "i", false, "Curate the selection interactively")
	cmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Report without writing files")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	return generateOnce(cfg, logger)
}

func generateOnce(cfg *config.Config, logger *zap.Logger) error {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)
	warningColor := color.New(color.FgYellow)
	infoColor := color.New(color.FgCyan)

	scanner := scan.NewScanner(".", cfg.EnginePath, logger)
	result, err := scanner.Scan(cfg.Packages...)
	if err != nil {
		return err
	}

	model := selection.NewModel(cfg.EnginePath)
	if err := model.Load(cfg.SelectionFile); err != nil {
		return err
	}
	model.Merge(result)

	switch {
	case generateAll:
		model.SelectAll()
	case generateInteractive:
		if err := curate(model); err != nil {
			return err
		}
	}

	selected := model.Selected()

	if generateDryRun {
		writer := output.New(cfg.OutputRoot, logger)
		infoColor.Printf("would generate %d bridge(s):\n", len(selected))
		for _, desc := range selected {
			name := desc.Name + "_System"
			if u, ok := cfg.Units[desc.QualifiedName()]; ok && u.Name != "" {
				name = u.Name
			}
			fmt.Printf("  %s -> %s\n", desc.QualifiedName(), writer.PathFor(desc.Namespace, name))
		}
		return nil
	}

	pipeline := generate.New(generate.Config{
		EnginePath: cfg.EnginePath,
		OutputRoot: cfg.OutputRoot,
		Options:    cfg.BridgeOptions(),
		Logger:     logger,
	})
	report := pipeline.Run(result, selected)

	for _, e := range report.Errors {
		if e.Severity == generate.Warning {
			warningColor.Printf("warning: %s\n", e)
		} else {
			errorColor.Printf("error: %s\n", e)
		}
	}
	for _, path := range report.Written {
		fmt.Printf("  wrote %s\n", path)
	}

	// Selections may have gained defaults for new candidates; keep the
	// persisted file in sync with what this run actually used.
	if err := model.Save(cfg.SelectionFile); err != nil {
		return err
	}

	switch {
	case report.NothingToDo:
		infoColor.Println(report.Summary())
		return nil
	case report.Success:
		successColor.Printf("✓ %s\n", report.Summary())
		return nil
	default:
		return fmt.Errorf("%s", report.Summary())
	}
}

// curate runs the interactive multi-select over every discovered
// candidate, seeded with the current selection.
func curate(model *selection.Model) error {
	var options []string
	var defaults []string
	for _, g := range model.Groups() {
		for _, c := range g.Candidates {
			label := fmt.Sprintf("%s (%s)", c.Descriptor.QualifiedName(), c.Descriptor.Strategy)
			options = append(options, label)
			if g.Included && c.Included {
				defaults = append(defaults, label)
			}
		}
	}
	if len(options) == 0 {
		return nil
	}

	var chosen []string
	prompt := &survey.MultiSelect{
		Message: "Select candidates to generate bridges for:",
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(prompt, &chosen); err != nil {
		return err
	}

	picked := make(map[string]bool, len(chosen))
	for _, label := range chosen {
		picked[label] = true
	}
	for _, g := range model.Groups() {
		model.ToggleNamespace(g.Namespace, true)
		for _, c := range g.Candidates {
			label := fmt.Sprintf("%s (%s)", c.Descriptor.QualifiedName(), c.Descriptor.Strategy)
			model.SetCandidate(c.Descriptor.QualifiedName(), picked[label])
		}
	}
	return nil
}
