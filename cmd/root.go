// =============================================================================
// Order Report Bot - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (orderbot)
//   ├── serveCmd   (orderbot serve)
//   ├── reportCmd  (orderbot report)
//   └── versionCmd (orderbot version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads config.yaml (or --config) and the environment
//   2. Builds the zap logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/docx-order-report/internal/config"
	"github.com/ginjaninja78/docx-order-report/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg and logger are ready once PersistentPreRunE has run.
var (
	cfg    *config.Config
	logger *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "orderbot",
	Short: "Order Report Bot - Turn uploaded DOCX orders into an Excel report",
	Long: `Order Report Bot collects DOCX purchase order forms sent to a Telegram
chat, extracts the order fields from each one and replies with a single
formatted Excel report.

Example Usage:
  orderbot serve                          # Run the webhook bot
  orderbot serve --config ./prod.yaml     # Use a custom configuration file
  orderbot report a.docx b.docx -o out.xlsx  # Build a report offline`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := loaded.LogLevel
		if verbose {
			level = "debug"
		}

		l, err := logging.New(level, loaded.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		cfg, logger = loaded, l
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file, skipped when missing",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
