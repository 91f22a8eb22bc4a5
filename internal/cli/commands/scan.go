package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tickforge/bridgegen/internal/cli/config"
	"github.com/tickforge/bridgegen/internal/scan"
	"github.com/tickforge/bridgegen/internal/selection"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Discover bridgeable logic units",
		Long: `Scan the configured packages for types tagged with engine.Unit that
match one of the four execution strategies, and list them grouped by
namespace with their current selection state.`,
		Example: `  # List all candidates
  bridgegen scan

  # Show per-package load diagnostics
  bridgegen scan -v`,
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

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

	for _, w := range result.Warnings {
		warningColor.Printf("warning: %s\n", w)
	}

	groups := model.Groups()
	if len(groups) == 0 {
		fmt.Println("no candidates found")
		return nil
	}

	for _, g := range groups {
		mark := " "
		if g.Included {
			mark = "*"
		}
		infoColor.Printf("[%s] %s\n", mark, g.Namespace)
		for _, c := range g.Candidates {
			mark := " "
			if c.Included {
				mark = "*"
			}
			fmt.Printf("  [%s] %-30s %s\n", mark, c.Descriptor.Name, c.Descriptor.Strategy)
			for _, extra := range c.Descriptor.Ambiguous {
				warningColor.Printf("      also matches %s (first match kept)\n", extra)
			}
		}
	}

	counts := model.Counts()
	fmt.Printf("\n%d candidate(s), %d selected\n", counts.Total, counts.Selected)
	return nil
}
