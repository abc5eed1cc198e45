package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrEmptyModel reports a model without any predictable class.
	ErrEmptyModel = errors.New("model has no classes")
	// ErrArity reports a feature vector whose length differs from the model's.
	ErrArity = errors.New("feature arity mismatch")
	// ErrNoRecords reports training without input.
	ErrNoRecords = errors.New("no training records")
)

// MinClassSize is the smallest group that yields a sample standard deviation.
const MinClassSize = 2

// DefaultVarSmoothing is used when smoothing is requested without a positive factor.
const DefaultVarSmoothing = 1e-9

// DegeneratePolicy decides what happens to classes with a zero-variance feature.
type DegeneratePolicy string

const (
	// PolicySmooth keeps such classes and pads every variance by a small epsilon.
	PolicySmooth DegeneratePolicy = "smooth"
	// PolicyReject drops such classes at build time.
	PolicyReject DegeneratePolicy = "reject"
)

// TrainOptions tunes Train.
type TrainOptions struct {
	Policy       DegeneratePolicy
	VarSmoothing float64
}

// FeatureStats summarises one feature within one class.
type FeatureStats struct {
	Mean   float64
	StdDev float64
	Count  int
}

// ClassStats holds the per-feature statistics of one label.
type ClassStats struct {
	Label    int
	Features []FeatureStats
}

// TrainReport lists the labels that did not make it into the model.
type TrainReport struct {
	Undersized []int
	Degenerate []int
}

// Model maps label codes to class statistics. Classes are kept in ascending
// label order, which is also the prediction tie-break order. A Model is
// read-only after Train returns.
type Model struct {
	classes []ClassStats
	arity   int
	epsilon float64
	report  TrainReport
}

// Train partitions records by label, drops groups smaller than MinClassSize,
// and computes mean, sample standard deviation and count per feature.
func Train(records []Record, opts TrainOptions) (*Model, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if opts.Policy == "" {
		opts.Policy = PolicySmooth
	}

	arity := len(records[0].Features)
	groups := make(map[int][]Record)
	for i, rec := range records {
		if len(rec.Features) != arity {
			return nil, fmt.Errorf("%w: record %d has %d features, want %d", ErrArity, i, len(rec.Features), arity)
		}
		groups[rec.Label] = append(groups[rec.Label], rec)
	}

	labels := make([]int, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	model := &Model{arity: arity}
	for _, label := range labels {
		rows := groups[label]
		if len(rows) < MinClassSize {
			model.report.Undersized = append(model.report.Undersized, label)
			continue
		}
		stats := summarize(label, rows, arity)
		if opts.Policy == PolicyReject && stats.degenerate() {
			model.report.Degenerate = append(model.report.Degenerate, label)
			continue
		}
		model.classes = append(model.classes, stats)
	}

	if len(model.classes) == 0 {
		return nil, ErrEmptyModel
	}

	if opts.Policy == PolicySmooth {
		factor := opts.VarSmoothing
		if factor <= 0 {
			factor = DefaultVarSmoothing
		}
		model.epsilon = factor * maxVariance(records, arity)
		if model.epsilon == 0 {
			model.epsilon = factor
		}
	}
	return model, nil
}

func summarize(label int, rows []Record, arity int) ClassStats {
	stats := ClassStats{Label: label, Features: make([]FeatureStats, arity)}
	n := float64(len(rows))
	for f := 0; f < arity; f++ {
		sum := 0.0
		for _, row := range rows {
			sum += float64(row.Features[f])
		}
		mean := sum / n

		squares := 0.0
		for _, row := range rows {
			d := float64(row.Features[f]) - mean
			squares += d * d
		}
		stats.Features[f] = FeatureStats{
			Mean:   mean,
			StdDev: math.Sqrt(squares / (n - 1)),
			Count:  len(rows),
		}
	}
	return stats
}

func (c ClassStats) degenerate() bool {
	for _, f := range c.Features {
		if f.StdDev == 0 {
			return true
		}
	}
	return false
}

// maxVariance is the largest population variance of any feature over all records.
func maxVariance(records []Record, arity int) float64 {
	n := float64(len(records))
	best := 0.0
	for f := 0; f < arity; f++ {
		sum := 0.0
		for _, rec := range records {
			sum += float64(rec.Features[f])
		}
		mean := sum / n
		v := 0.0
		for _, rec := range records {
			d := float64(rec.Features[f]) - mean
			v += d * d
		}
		if v /= n; v > best {
			best = v
		}
	}
	return best
}

// Classes returns a copy of the class statistics in label order.
func (m *Model) Classes() []ClassStats {
	out := make([]ClassStats, len(m.classes))
	for i, c := range m.classes {
		out[i] = ClassStats{Label: c.Label, Features: slices.Clone(c.Features)}
	}
	return out
}

// Class returns the statistics for label, if it was retained.
func (m *Model) Class(label int) (ClassStats, bool) {
	for _, c := range m.classes {
		if c.Label == label {
			return ClassStats{Label: c.Label, Features: slices.Clone(c.Features)}, true
		}
	}
	return ClassStats{}, false
}

// Labels returns the predictable label codes in ascending order.
func (m *Model) Labels() []int {
	out := make([]int, len(m.classes))
	for i, c := range m.classes {
		out[i] = c.Label
	}
	return out
}

// Arity is the feature vector length the model expects.
func (m *Model) Arity() int { return m.arity }

// Epsilon is the variance padding applied while scoring.
func (m *Model) Epsilon() float64 { return m.epsilon }

// Report describes the labels excluded during training.
func (m *Model) Report() TrainReport {
	return TrainReport{
		Undersized: slices.Clone(m.report.Undersized),
		Degenerate: slices.Clone(m.report.Degenerate),
	}
}
