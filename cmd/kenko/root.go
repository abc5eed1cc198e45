package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:           "kenko",
	Short:         "Symptom-based disease predictor",
	Long:          "kenko trains a Gaussian Naive Bayes classifier from a symptom table and serves predictions over HTTP and gRPC.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (overrides KENKO_CONFIG env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(userCmd)
}

// loadConfig resolves the --config flag, then KENKO_CONFIG, then defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// cliLogger logs to stderr so command output on stdout stays parseable.
func cliLogger(cfg *config.Config) *slog.Logger {
	return utils.NewLoggerTo(os.Stderr, cfg.Logging.Level, cfg.Logging.JSON)
}
