// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/config"
)

// Shared by every subcommand; set up in PersistentPreRunE.
var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "repo-catalog",
	Short: "Browse, search and export an organization's GitHub repositories.",
	Long: `repo-catalog fetches every repository of a GitHub organization once and
lets you search, page through, bookmark and export them, either in an
interactive terminal browser or with batch commands that print JSON or tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logFile, _ := cmd.Flags().GetString("log-file")
		configPath, _ := cmd.Flags().GetString("config")

		// The browser owns the terminal, so it may only log to a file.
		l, err := newLogger(verbose, logFile, cmd.Name() != "browse")
		if err != nil {
			return err
		}
		logger = l

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if org, _ := cmd.Flags().GetString("org"); org != "" {
			cfg.Org = org
		}
		if api, _ := cmd.Flags().GetString("api"); api != "" {
			cfg.API = api
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("org", cfg.Org),
			zap.String("api", cfg.API),
			zap.String("storage", cfg.Storage),
			zap.Bool("authenticated", cfg.Token != ""),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger discards everything unless verbose output or a log file is requested.
func newLogger(verbose bool, logFile string, allowStderr bool) (*zap.Logger, error) {
	if logFile == "" && (!verbose || !allowStderr) {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	return zc.Build()
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of standard error")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringP("org", "o", "", "GitHub organization (overrides CATALOG_ORG)")
	rootCmd.PersistentFlags().String("api", "", "Data source: rest or graphql (overrides CATALOG_API)")
}
