package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tickforge/bridgegen/internal/cli/config"
	"github.com/tickforge/bridgegen/internal/output"
)

var cleanForce bool

// NewCleanCommand creates the clean command
func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the entire output root",
		Long: `Remove every generated file by deleting the output root. Generation
never deletes stale files for candidates that disappeared; this is the
bulk escape hatch for that.`,
		RunE: runClean,
	}

	cmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !cleanForce {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete everything under %s?", cfg.OutputRoot),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := output.Clean(cfg.OutputRoot); err != nil {
		return err
	}
	successColor.Printf("✓ removed %s\n", cfg.OutputRoot)
	return nil
}
