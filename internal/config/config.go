package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kenkohealth/kenko/internal/models"
)

// Config captures the settings required to boot the prediction service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP, gRPC and metrics listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress"`
	GRPCAddress     string        `yaml:"grpcAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	AllowedOrigin   string        `yaml:"allowedOrigin"`
}

// DatasetConfig locates the training table and names its columns.
type DatasetConfig struct {
	Path           string   `yaml:"path"`
	LabelColumn    string   `yaml:"labelColumn"`
	FeatureColumns []string `yaml:"featureColumns"`
	ExcludeLabels  []string `yaml:"excludeLabels"`
}

// ClassifierConfig tunes the Gaussian statistics builder.
type ClassifierConfig struct {
	// DegeneratePolicy is "smooth" or "reject".
	DegeneratePolicy string  `yaml:"degeneratePolicy"`
	VarSmoothing     float64 `yaml:"varSmoothing"`
}

// EvaluationConfig controls the hold-out evaluation run.
type EvaluationConfig struct {
	OnStartup  bool    `yaml:"onStartup"`
	SplitRatio float64 `yaml:"splitRatio"`
	Seed       uint64  `yaml:"seed"`
}

// DatabaseConfig locates the SQLite user store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("KENKO_CONFIG")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddress:     ":8000",
			GRPCAddress:     ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			AllowedOrigin:   "*",
		},
		Dataset: DatasetConfig{
			Path:           "data/dataset.csv",
			LabelColumn:    "Disease",
			FeatureColumns: []string{"Symptom_1", "Symptom_2", "Symptom_3", "Symptom_4", "Symptom_5"},
			ExcludeLabels:  []string{"Typhoid"},
		},
		Classifier: ClassifierConfig{
			DegeneratePolicy: "smooth",
			VarSmoothing:     1e-9,
		},
		Evaluation: EvaluationConfig{
			OnStartup:  true,
			SplitRatio: 0.85,
		},
		Database: DatabaseConfig{DSN: "file:kenko.db"},
		Logging:  LoggingConfig{Level: "info", JSON: false},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Dataset.LabelColumn == "" {
		return fmt.Errorf("dataset.labelColumn is required")
	}
	if len(c.Dataset.FeatureColumns) != models.SymptomCount {
		return fmt.Errorf("dataset.featureColumns must list %d columns, got %d", models.SymptomCount, len(c.Dataset.FeatureColumns))
	}
	switch c.Classifier.DegeneratePolicy {
	case "smooth", "reject":
	default:
		return fmt.Errorf("classifier.degeneratePolicy must be smooth or reject, got %q", c.Classifier.DegeneratePolicy)
	}
	if c.Classifier.VarSmoothing < 0 {
		return fmt.Errorf("classifier.varSmoothing must not be negative")
	}
	if c.Evaluation.SplitRatio <= 0 || c.Evaluation.SplitRatio >= 1 {
		return fmt.Errorf("evaluation.splitRatio must be in (0,1), got %v", c.Evaluation.SplitRatio)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KENKO_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("KENKO_GRPC_ADDRESS"); v != "" {
		cfg.Server.GRPCAddress = v
	}
	if v := os.Getenv("KENKO_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("KENKO_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("KENKO_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("KENKO_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("KENKO_EXCLUDE_LABELS"); v != "" {
		cfg.Dataset.ExcludeLabels = splitList(v)
	}
	if v := os.Getenv("KENKO_DEGENERATE_POLICY"); v != "" {
		cfg.Classifier.DegeneratePolicy = strings.ToLower(v)
	}
	if v := os.Getenv("KENKO_VAR_SMOOTHING"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Classifier.VarSmoothing = f
		}
	}
	if v := os.Getenv("KENKO_EVALUATE_ON_STARTUP"); v != "" {
		cfg.Evaluation.OnStartup = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("KENKO_SPLIT_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Evaluation.SplitRatio = f
		}
	}
	if v := os.Getenv("KENKO_SPLIT_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Evaluation.Seed = seed
		}
	}
	if v := os.Getenv("KENKO_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("KENKO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("KENKO_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
