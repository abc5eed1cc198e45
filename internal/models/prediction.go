package models

import "time"

// SymptomCount is the number of symptoms every prediction request carries.
const SymptomCount = 5

// PredictionRequest represents one symptom set submitted for prediction.
type PredictionRequest struct {
	RequestID string
	Symptoms  []string
}

// Prediction is the decoded outcome for a PredictionRequest.
type Prediction struct {
	RequestID string
	Disease   string
	Duration  time.Duration
}

// ModelSummary describes the loaded model for informational endpoints.
type ModelSummary struct {
	Symptoms []string
	Diseases []string
	Arity    int
}
