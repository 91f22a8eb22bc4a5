package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tickforge/bridgegen/internal/cli/config"
	"github.com/tickforge/bridgegen/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate bridges on source changes",
		Long: `Generate once, then watch the scanned packages and rerun the
pipeline whenever Go source changes. The persisted selection is merged
on every rescan, so curated choices survive across regenerations.`,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	infoColor := color.New(color.FgCyan)
	errorColor := color.New(color.FgRed)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initial pass before watching.
	if err := generateOnce(cfg, logger); err != nil {
		errorColor.Printf("initial generation failed: %v\n", err)
	}

	watcher, err := watch.New([]string{"."}, cfg.OutputRoot, func(files []string) error {
		infoColor.Printf("change detected (%d file(s)), regenerating...\n", len(files))
		return generateOnce(cfg, logger)
	}, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	infoColor.Println("watching for changes (ctrl-c to stop)")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nstopping")
	return nil
}
