package commands

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bridgegen",
		Short: "Bridge generator for tick-engine logic units",
		Long: color.CyanString(`bridgegen - tick-engine bridge generator

bridgegen scans your packages for logic units tagged with engine.Unit,
classifies each against the four execution strategies, and generates the
scheduling bridges that wire them into the engine's tick loop.

Strategies:
  • sequential-reducer     - exclusive state access, one pass per tick
  • parallel-reducer       - prepare phase plus worker-batch fan-out
  • sequential-middleware  - filtering pass with deferred removal
  • parallel-middleware    - two-phase transform, no filtering`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bridgegen %s\n", Version)
			fmt.Printf("  commit:  %s\n", GitCommit)
			fmt.Printf("  built:   %s\n", BuildDate)
			fmt.Printf("  go:      %s\n", runtime.Version())
		},
	}
}

// newLogger builds the command logger: developer output under --verbose,
// silent otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}
