package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shift-checklist/internal/config"
	"shift-checklist/internal/history"
	"shift-checklist/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Pre-shift equipment checklist server",
	Long: `checklist serves the pre-shift equipment checklist: a password-gated
grid of machines × inspection items whose daily results are kept in a CSV file.

Run "checklist serve" to start the web form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "checklist.yaml", "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, historyCmd, configCmd)
}

// newRepository wires the history repository from the loaded config.
func newRepository() *history.Repository {
	return history.NewRepository(history.Options{
		Path:            cfg.History.File,
		Shape:           cfg.GetShape(),
		ClearMode:       cfg.GetClearMode(),
		RequireOperator: cfg.Checklist.RequireOperator,
		Logger:          logger.Named("history"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
