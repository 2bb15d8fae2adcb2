package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	projectPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "snrgen",
	Short: "Matched-filter SNR training data generator",
	Long: `snrgen - builds matched-filter SNR training datasets.

A run is described by a single project file and proceeds in stages:

  snrgen generate -c project.yaml
      Draw injection parameters, threshold on expected SNR, assign
      templates, and write the dataset record into the archive.

  snrgen snr -c project.yaml --index N --total-jobs M
      Filter this job's shard of samples against their templates and
      write the SNR series into the shared output array. Jobs own
      disjoint row ranges, so an array job can run all shards at once.

  snrgen finalize -c project.yaml
      Write the deferred array header once every job has finished.
      A file without the header is visibly incomplete.

  snrgen bank info -c project.yaml
      Show template bank statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command. Interrupts cancel the command context
// so the engine tears its worker pool down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "c", "", "project file (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.MarkPersistentFlagRequired("project")
}
