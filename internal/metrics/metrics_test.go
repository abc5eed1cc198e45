package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObservePredictionOutcomes(t *testing.T) {
	before := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeError))
	ObservePrediction(time.Millisecond, "weird")
	ObservePrediction(-time.Second, OutcomeError)
	after := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeError))
	assert.Equal(t, before+2, after)

	invalid := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeInvalid))
	ObservePrediction(time.Microsecond, OutcomeInvalid)
	assert.Equal(t, invalid+1, testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeInvalid)))
}

func TestModelGauges(t *testing.T) {
	SetModelInfo(ModelInfo{Classes: 4, Symptoms: 30, Labels: 5, Undersized: 1})
	SetEvaluationAccuracy(92.5)

	assert.Equal(t, 4.0, testutil.ToFloat64(modelClasses))
	assert.Equal(t, 30.0, testutil.ToFloat64(vocabularySize.WithLabelValues("symptoms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(droppedClasses.WithLabelValues("undersized")))
	assert.Equal(t, 92.5, testutil.ToFloat64(evaluationAccuracy))
}
