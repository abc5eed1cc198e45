package services

import (
	"fmt"
	"log/slog"

	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/engine"
	"github.com/kenkohealth/kenko/internal/metrics"
)

// TrainOptions maps classifier settings onto the engine.
func TrainOptions(cfg config.ClassifierConfig) engine.TrainOptions {
	return engine.TrainOptions{
		Policy:       engine.DegeneratePolicy(cfg.DegeneratePolicy),
		VarSmoothing: cfg.VarSmoothing,
	}
}

// LoadBundle reads the training table and builds the serving bundle from the
// full dataset. Any failure here must stop the process from serving.
func LoadBundle(cfg *config.Config, logger *slog.Logger) (*engine.Bundle, []engine.Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := dataset.LoadFile(cfg.Dataset.Path, dataset.Options{
		LabelColumn:   cfg.Dataset.LabelColumn,
		ExcludeLabels: cfg.Dataset.ExcludeLabels,
	})
	if err != nil {
		return nil, nil, err
	}

	bundle, records, err := engine.Build(table, engine.BuildOptions{
		LabelColumn:    cfg.Dataset.LabelColumn,
		FeatureColumns: cfg.Dataset.FeatureColumns,
		Train:          TrainOptions(cfg.Classifier),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build model from %s: %w", cfg.Dataset.Path, err)
	}

	report := bundle.Model.Report()
	metrics.SetModelInfo(metrics.ModelInfo{
		Classes:    len(bundle.Model.Labels()),
		Symptoms:   bundle.Symptoms.Len(),
		Labels:     bundle.Labels.Len(),
		Undersized: len(report.Undersized),
		Degenerate: len(report.Degenerate),
	})
	logger.Info("model built",
		slog.String("dataset", cfg.Dataset.Path),
		slog.Int("rows", len(records)),
		slog.Int("classes", len(bundle.Model.Labels())),
		slog.Int("symptoms", bundle.Symptoms.Len()),
		slog.Int("undersized_classes", len(report.Undersized)),
		slog.Int("degenerate_classes", len(report.Degenerate)),
	)
	return bundle, records, nil
}

// Evaluate runs a hold-out evaluation on records with its own freshly trained
// model and publishes the accuracy.
func Evaluate(records []engine.Record, cfg *config.Config, logger *slog.Logger) (engine.Evaluation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	eval, err := engine.Evaluate(records, cfg.Evaluation.SplitRatio, engine.NewRand(cfg.Evaluation.Seed), TrainOptions(cfg.Classifier))
	if err != nil {
		return engine.Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	metrics.SetEvaluationAccuracy(eval.Accuracy)
	logger.Info("hold-out evaluation",
		slog.Int("rows", len(records)),
		slog.Int("train", eval.TrainSize),
		slog.Int("test", eval.TestSize),
		slog.Float64("accuracy_percent", eval.Accuracy),
	)
	return eval, nil
}
