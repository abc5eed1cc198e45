package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kenkohealth/kenko/internal/engine"
	"github.com/kenkohealth/kenko/internal/metrics"
	"github.com/kenkohealth/kenko/internal/models"
	"github.com/kenkohealth/kenko/internal/utils"
	"github.com/kenkohealth/kenko/internal/vocab"
)

// PredictionService answers single-request predictions against a loaded bundle.
type PredictionService struct {
	logger *slog.Logger
	bundle *engine.Bundle
}

// NewPredictionService constructs the prediction facade. bundle must be fully
// built before the service is handed to any transport.
func NewPredictionService(logger *slog.Logger, bundle *engine.Bundle) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{logger: logger, bundle: bundle}
}

// Predict encodes the request's symptoms, runs the model and decodes the label.
func (s *PredictionService) Predict(ctx context.Context, req models.PredictionRequest) (models.Prediction, error) {
	const op = "predict"
	if s.bundle == nil {
		return models.Prediction{}, utils.NewAppError(op, utils.KindUnavailable, "model not loaded", nil)
	}
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, utils.NewAppError(op, utils.KindUnavailable, "request cancelled", err)
	}

	start := time.Now()
	disease, err := s.bundle.Predict(req.Symptoms)
	duration := time.Since(start)
	if err != nil {
		appErr := classify(op, err)
		if utils.KindOf(appErr) == utils.KindInvalid {
			metrics.ObservePrediction(duration, metrics.OutcomeInvalid)
			s.logger.Debug("prediction rejected", slog.String("request_id", req.RequestID), slog.Any("error", err))
		} else {
			metrics.ObservePrediction(duration, metrics.OutcomeError)
			s.logger.Error("prediction failed", slog.String("request_id", req.RequestID), slog.Any("error", err))
		}
		return models.Prediction{}, appErr
	}

	metrics.ObservePrediction(duration, metrics.OutcomeSuccess)
	s.logger.Debug("prediction served",
		slog.String("request_id", req.RequestID),
		slog.String("disease", disease),
		slog.Duration("duration", duration),
	)
	return models.Prediction{RequestID: req.RequestID, Disease: disease, Duration: duration}, nil
}

// Summary reports the vocabularies clients may submit and receive.
func (s *PredictionService) Summary() (models.ModelSummary, error) {
	if s.bundle == nil {
		return models.ModelSummary{}, utils.NewAppError("summary", utils.KindUnavailable, "model not loaded", nil)
	}
	return models.ModelSummary{
		Symptoms: s.bundle.Symptoms.Tokens(),
		Diseases: s.bundle.Diseases(),
		Arity:    s.bundle.Model.Arity(),
	}, nil
}

func classify(op string, err error) error {
	var tokenErr *vocab.TokenError
	switch {
	case errors.As(err, &tokenErr):
		return utils.NewAppError(op, utils.KindInvalid, fmt.Sprintf("unknown symptom %q", tokenErr.Token), err)
	case errors.Is(err, engine.ErrArity):
		return utils.NewAppError(op, utils.KindInvalid, "wrong number of symptoms", err)
	case errors.Is(err, engine.ErrEmptyModel):
		return utils.NewAppError(op, utils.KindUnavailable, "model has no classes", err)
	default:
		return utils.NewAppError(op, utils.KindInternal, "prediction failed", err)
	}
}

// UnknownSymptom extracts the offending token from a prediction error.
func UnknownSymptom(err error) (string, bool) {
	var tokenErr *vocab.TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Token, true
	}
	return "", false
}
