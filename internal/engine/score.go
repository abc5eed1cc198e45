package engine

import (
	"fmt"
	"math"
)

var sqrtTwoPi = math.Sqrt(2 * math.Pi)

// GaussianDensity evaluates the normal probability density at x.
func GaussianDensity(x, mean, stdev float64) float64 {
	exponent := math.Exp(-((x - mean) * (x - mean)) / (2 * stdev * stdev))
	return exponent / (stdev * sqrtTwoPi)
}

// LogGaussianDensity is the natural log of GaussianDensity, finite for any
// positive stdev even when the density itself underflows.
func LogGaussianDensity(x, mean, stdev float64) float64 {
	z := (x - mean) / stdev
	return -0.5*z*z - math.Log(stdev*sqrtTwoPi)
}

// Score is the unnormalised log posterior of one class.
type Score struct {
	Label int
	Log   float64
}

// LogScore sums the per-feature log densities of x under class c, treating
// features as independent given the class.
func (m *Model) LogScore(c ClassStats, x []int) (float64, error) {
	if len(x) != len(c.Features) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrArity, len(x), len(c.Features))
	}
	total := 0.0
	for i, f := range c.Features {
		stdev := math.Sqrt(f.StdDev*f.StdDev + m.epsilon)
		total += LogGaussianDensity(float64(x[i]), f.Mean, stdev)
	}
	return total, nil
}

// Likelihood returns the raw product of densities for label, which may
// underflow to zero where LogScore does not.
func (m *Model) Likelihood(label int, x []int) (float64, error) {
	c, ok := m.Class(label)
	if !ok {
		return 0, fmt.Errorf("label %d is not in the model", label)
	}
	logScore, err := m.LogScore(c, x)
	if err != nil {
		return 0, err
	}
	return math.Exp(logScore), nil
}

// Scores evaluates every class in ascending label order.
func (m *Model) Scores(x []int) ([]Score, error) {
	if m == nil || len(m.classes) == 0 {
		return nil, ErrEmptyModel
	}
	if len(x) != m.arity {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrArity, len(x), m.arity)
	}
	scores := make([]Score, len(m.classes))
	for i, c := range m.classes {
		s, err := m.LogScore(c, x)
		if err != nil {
			return nil, err
		}
		scores[i] = Score{Label: c.Label, Log: s}
	}
	return scores, nil
}

// Predict returns the label with the strictly greatest score; on ties the
// lowest label code wins.
func (m *Model) Predict(x []int) (int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return -1, err
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Log > best.Log {
			best = s
		}
	}
	return best.Label, nil
}

// PredictAll predicts a label for every record's features, in order.
func (m *Model) PredictAll(records []Record) ([]int, error) {
	out := make([]int, len(records))
	for i, rec := range records {
		label, err := m.Predict(rec.Features)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}
