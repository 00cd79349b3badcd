package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/config"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/observability"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/version"
)

// cfg and logger are initialized by the root PersistentPreRunE and shared by
// all commands.
var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "llm-computeruse",
	Short: "Automate desktop interaction with a vision language model",
	Long: `A CLI tool that captures the screen, asks a vision-capable language model
to enumerate clickable UI elements, translates natural-language requests into
concrete actions, and executes them as synthetic mouse and keyboard events,
re-locating targets by template matching when coordinates have drifted.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Sync()
		}
		os.Exit(1)
	}
	if logger != nil {
		logger.Sync()
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Path to config file (optional)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		configPath, _ := rootCmd.PersistentFlags().GetString("config")
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = observability.NewLogger(cfg.Logger)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		pretty, _ := rootCmd.PersistentFlags().GetBool("pretty")
		output.PrettyOutput = pretty
		return nil
	}
}
