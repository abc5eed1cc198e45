package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kenkohealth/kenko/internal/services"
)

var (
	accuracyGood = color.New(color.FgGreen, color.Bold)
	accuracyFair = color.New(color.FgYellow, color.Bold)
	accuracyPoor = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a hold-out evaluation and print the accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("ratio") {
			cfg.Evaluation.SplitRatio, _ = cmd.Flags().GetFloat64("ratio")
		}
		if cmd.Flags().Changed("seed") {
			cfg.Evaluation.Seed, _ = cmd.Flags().GetUint64("seed")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := cliLogger(cfg)
		_, records, err := services.LoadBundle(cfg, logger)
		if err != nil {
			return err
		}
		eval, err := services.Evaluate(records, cfg, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		labelColor.Fprint(out, "train rows: ")
		fmt.Fprintln(out, eval.TrainSize)
		labelColor.Fprint(out, "test rows:  ")
		fmt.Fprintln(out, eval.TestSize)
		labelColor.Fprint(out, "correct:    ")
		fmt.Fprintln(out, eval.Correct)
		labelColor.Fprint(out, "accuracy:   ")
		accuracyColor(eval.Accuracy).Fprintf(out, "%.2f%%\n", eval.Accuracy)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Float64("ratio", 0, "Train split ratio in (0,1) (overrides config)")
	evaluateCmd.Flags().Uint64("seed", 0, "Split seed, 0 for a random seed (overrides config)")
}

func accuracyColor(accuracy float64) *color.Color {
	switch {
	case accuracy >= 90:
		return accuracyGood
	case accuracy >= 70:
		return accuracyFair
	default:
		return accuracyPoor
	}
}
