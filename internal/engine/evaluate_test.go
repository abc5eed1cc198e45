package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticRecords(perClass int) []Record {
	var records []Record
	for i := 0; i < perClass; i++ {
		records = append(records,
			Record{Features: []int{i % 3, 10 + i%2}, Label: 0},
			Record{Features: []int{20 + i%3, i % 2}, Label: 1},
		)
	}
	return records
}

func TestSplitSizes(t *testing.T) {
	records := syntheticRecords(10)
	train, test, err := Split(records, 0.85, NewRand(7))
	require.NoError(t, err)

	assert.Len(t, train, 17)
	assert.Len(t, test, 3)
	assert.Len(t, records, 20, "input must not be modified")
}

func TestSplitIsPartition(t *testing.T) {
	records := make([]Record, 40)
	for i := range records {
		records[i] = Record{Features: []int{i}, Label: i % 2}
	}
	train, test, err := Split(records, 0.5, NewRand(99))
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, rec := range append(append([]Record(nil), train...), test...) {
		seen[rec.Features[0]]++
	}
	assert.Len(t, seen, 40)
	for id, count := range seen {
		assert.Equal(t, 1, count, "record %d", id)
	}
}

func TestSplitDeterministicForSeed(t *testing.T) {
	records := syntheticRecords(10)
	a, _, err := Split(records, 0.6, NewRand(3))
	require.NoError(t, err)
	b, _, err := Split(records, 0.6, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSplitRejectsRatio(t *testing.T) {
	for _, ratio := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := Split(syntheticRecords(2), ratio, NewRand(1))
		assert.ErrorIs(t, err, ErrSplitRatio, "ratio %v", ratio)
	}
}

func TestAccuracy(t *testing.T) {
	records := []Record{{Label: 0}, {Label: 1}, {Label: 1}, {Label: 2}}
	acc, correct, err := Accuracy(records, []int{0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, correct)
	assert.Equal(t, 50.0, acc)

	_, _, err = Accuracy(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyHoldout)

	_, _, err = Accuracy(records, []int{0})
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	eval, err := Evaluate(syntheticRecords(20), 0.75, NewRand(11), TrainOptions{})
	require.NoError(t, err)

	assert.Equal(t, 30, eval.TrainSize)
	assert.Equal(t, 10, eval.TestSize)
	assert.GreaterOrEqual(t, eval.Accuracy, 0.0)
	assert.LessOrEqual(t, eval.Accuracy, 100.0)
	assert.InDelta(t, float64(eval.Correct)/float64(eval.TestSize)*100, eval.Accuracy, 1e-9)
	// classes are far apart on both features
	assert.Equal(t, 100.0, eval.Accuracy)
}

func TestEvaluateEmptyHoldout(t *testing.T) {
	_, err := Evaluate(nil, 0.85, NewRand(1), TrainOptions{})
	assert.ErrorIs(t, err, ErrEmptyHoldout)
}

func TestEvaluateUntrainableSplit(t *testing.T) {
	// one record per label leaves no class with enough rows to train on
	records := []Record{{Features: []int{1}, Label: 0}, {Features: []int{2}, Label: 1}, {Features: []int{3}, Label: 2}}
	_, err := Evaluate(records, 0.5, NewRand(1), TrainOptions{})
	assert.ErrorIs(t, err, ErrEmptyModel)
}
