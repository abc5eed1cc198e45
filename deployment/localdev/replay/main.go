// Command replay posts every row of a symptom table to a running kenko server
// and reports how often the served prediction matches the row's label.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kenkohealth/kenko/internal/client"
	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/utils"
)

func main() {
	var (
		server      string
		path        string
		concurrency int
	)
	flag.StringVar(&server, "server", "http://localhost:8000", "Base URL of the kenko HTTP server")
	flag.StringVar(&path, "dataset", "data/dataset.csv", "Symptom table to replay")
	flag.IntVar(&concurrency, "concurrency", 8, "Parallel requests")
	flag.Parse()

	logger := utils.NewLogger("info", false)
	defaults := config.Default()

	table, err := dataset.LoadFile(path, dataset.Options{
		LabelColumn:   defaults.Dataset.LabelColumn,
		ExcludeLabels: defaults.Dataset.ExcludeLabels,
	})
	if err != nil {
		logger.Error("failed to load dataset", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	labelIdx, err := table.ColumnIndex(defaults.Dataset.LabelColumn)
	if err != nil {
		logger.Error("label column missing", slog.Any("error", err))
		os.Exit(1)
	}
	featureIdx := make([]int, 0, len(defaults.Dataset.FeatureColumns))
	for _, name := range defaults.Dataset.FeatureColumns {
		idx, err := table.ColumnIndex(name)
		if err != nil {
			logger.Error("feature column missing", slog.Any("error", err))
			os.Exit(1)
		}
		featureIdx = append(featureIdx, idx)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(server, 10*time.Second)
	known, err := c.Symptoms(ctx)
	if err != nil {
		logger.Error("failed to list server symptoms", slog.String("server", server), slog.Any("error", err))
		os.Exit(1)
	}
	vocabulary := make(map[string]struct{}, len(known))
	for _, token := range known {
		vocabulary[token] = struct{}{}
	}

	var matched, failed, skipped atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, row := range table.Rows {
		symptoms := make([]string, len(featureIdx))
		for i, idx := range featureIdx {
			symptoms[i] = row[idx]
		}
		if !allKnown(vocabulary, symptoms) {
			skipped.Add(1)
			continue
		}
		want := row[labelIdx]
		g.Go(func() error {
			got, err := c.Predict(gctx, symptoms)
			if err != nil {
				failed.Add(1)
				logger.Warn("prediction failed", slog.Any("symptoms", symptoms), slog.Any("error", err))
				return nil
			}
			if got == want {
				matched.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	total := len(table.Rows)
	logger.Info("replay finished",
		slog.Int("rows", total),
		slog.Int64("matched", matched.Load()),
		slog.Int64("failed", failed.Load()),
		slog.Int64("skipped_unknown", skipped.Load()),
		slog.Duration("elapsed", time.Since(start)),
	)
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func allKnown(vocabulary map[string]struct{}, symptoms []string) bool {
	for _, s := range symptoms {
		if _, ok := vocabulary[s]; !ok {
			return false
		}
	}
	return true
}
