package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var (
	// ErrEmptyHoldout reports an evaluation without held-out records.
	ErrEmptyHoldout = errors.New("held-out set is empty")
	// ErrSplitRatio reports a ratio outside (0,1).
	ErrSplitRatio = errors.New("split ratio must be in (0,1)")
)

// Evaluation summarises a hold-out run.
type Evaluation struct {
	TrainSize int
	TestSize  int
	Correct   int
	// Accuracy is a percentage in [0,100].
	Accuracy float64
}

// Split moves uniformly chosen records into the training set until it holds
// int(len(records)*ratio) of them; the rest form the held-out set.
func Split(records []Record, ratio float64, rng *rand.Rand) (train, test []Record, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrSplitRatio, ratio)
	}
	size := int(float64(len(records)) * ratio)
	train = make([]Record, 0, size)
	test = slices.Clone(records)
	for len(train) < size {
		i := rng.IntN(len(test))
		train = append(train, test[i])
		test = slices.Delete(test, i, i+1)
	}
	return train, test, nil
}

// Accuracy returns the percentage of records whose label equals the
// prediction at the same index, and the number of matches.
func Accuracy(records []Record, predicted []int) (float64, int, error) {
	if len(records) == 0 {
		return 0, 0, ErrEmptyHoldout
	}
	if len(records) != len(predicted) {
		return 0, 0, fmt.Errorf("%d predictions for %d records", len(predicted), len(records))
	}
	correct := 0
	for i, rec := range records {
		if rec.Label == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(records)) * 100, correct, nil
}

// Evaluate trains a fresh model on a random split of records and measures it
// against the remainder. The model used for serving is trained separately on
// the full dataset and is never touched here.
func Evaluate(records []Record, ratio float64, rng *rand.Rand, opts TrainOptions) (Evaluation, error) {
	train, test, err := Split(records, ratio, rng)
	if err != nil {
		return Evaluation{}, err
	}
	if len(test) == 0 {
		return Evaluation{}, ErrEmptyHoldout
	}
	model, err := Train(train, opts)
	if err != nil {
		return Evaluation{}, fmt.Errorf("train split: %w", err)
	}
	predicted, err := model.PredictAll(test)
	if err != nil {
		return Evaluation{}, fmt.Errorf("predict held-out: %w", err)
	}
	accuracy, correct, err := Accuracy(test, predicted)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		TrainSize: len(train),
		TestSize:  len(test),
		Correct:   correct,
		Accuracy:  accuracy,
	}, nil
}

// NewRand returns a PCG-backed generator; seed 0 draws a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
