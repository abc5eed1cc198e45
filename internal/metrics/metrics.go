package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels predictions that returned a disease.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels predictions rejected because of caller input.
	OutcomeInvalid = "invalid"
	// OutcomeError labels predictions that failed inside the service.
	OutcomeError = "error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kenko",
			Name:      "predictions_total",
			Help:      "Total number of predictions handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	predictionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kenko",
			Name:      "prediction_seconds",
			Help:      "Prediction latency in seconds.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	modelClasses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kenko",
			Name:      "model_classes",
			Help:      "Number of predictable classes in the serving model.",
		},
	)

	droppedClasses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kenko",
			Name:      "model_dropped_classes",
			Help:      "Classes excluded from the serving model, partitioned by reason.",
		},
		[]string{"reason"},
	)

	vocabularySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kenko",
			Name:      "vocabulary_size",
			Help:      "Distinct tokens per vocabulary.",
		},
		[]string{"vocabulary"},
	)

	evaluationAccuracy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kenko",
			Name:      "evaluation_accuracy_percent",
			Help:      "Accuracy of the last hold-out evaluation.",
		},
	)
)

// Register attaches kenko collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		predictionsTotal,
		predictionDurationSeconds,
		modelClasses,
		droppedClasses,
		vocabularySize,
		evaluationAccuracy,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePrediction records a prediction duration and outcome label.
func ObservePrediction(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeInvalid:
	default:
		outcome = OutcomeError
	}
	predictionsTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	predictionDurationSeconds.Observe(duration.Seconds())
}

// ModelInfo captures the sizes published after a model build.
type ModelInfo struct {
	Classes    int
	Symptoms   int
	Labels     int
	Undersized int
	Degenerate int
}

// SetModelInfo publishes the shape of the serving model.
func SetModelInfo(info ModelInfo) {
	modelClasses.Set(float64(info.Classes))
	vocabularySize.WithLabelValues("symptoms").Set(float64(info.Symptoms))
	vocabularySize.WithLabelValues("labels").Set(float64(info.Labels))
	droppedClasses.WithLabelValues("undersized").Set(float64(info.Undersized))
	droppedClasses.WithLabelValues("degenerate").Set(float64(info.Degenerate))
}

// SetEvaluationAccuracy publishes the latest hold-out accuracy percentage.
func SetEvaluationAccuracy(accuracy float64) {
	evaluationAccuracy.Set(accuracy)
}
