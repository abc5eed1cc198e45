package engine

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/vocab"
)

var featureColumns = []string{"Symptom_1", "Symptom_2", "Symptom_3", "Symptom_4", "Symptom_5"}

func loadFixture(t *testing.T) *dataset.Table {
	t.Helper()
	f, err := os.Open("testdata/flu_cold.csv")
	require.NoError(t, err)
	defer f.Close()

	table, err := dataset.Load(f, dataset.Options{LabelColumn: "Disease", ExcludeLabels: []string{"Typhoid"}})
	require.NoError(t, err)
	return table
}

func buildFixture(t *testing.T) (*Bundle, []Record) {
	t.Helper()
	bundle, records, err := Build(loadFixture(t), BuildOptions{
		LabelColumn:    "Disease",
		FeatureColumns: featureColumns,
	})
	require.NoError(t, err)
	return bundle, records
}

func TestEncodeSharedSymptomVocabulary(t *testing.T) {
	encoded, err := Encode(loadFixture(t), "Disease", featureColumns)
	require.NoError(t, err)

	// "fever" appears in Symptom_1 and Symptom_2 and must share one code
	assert.Equal(t, []string{"cough", "fever", "rash", "sneeze", "x"}, encoded.Symptoms.Tokens())
	assert.Equal(t, []string{"Cold", "Flu", "Measles"}, encoded.Labels.Tokens())
	require.Len(t, encoded.Records, 5)

	fever, _ := encoded.Symptoms.Encode("fever")
	measles := encoded.Records[4]
	assert.Equal(t, fever, measles.Features[1])
	flu := encoded.Records[0]
	assert.Equal(t, fever, flu.Features[0])
}

func TestEncodeMissingColumn(t *testing.T) {
	_, err := Encode(loadFixture(t), "Disease", []string{"Symptom_9"})
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestFluScenario(t *testing.T) {
	bundle, _ := buildFixture(t)

	label, err := bundle.Predict([]string{"fever", "cough", "x", "x", "x"})
	require.NoError(t, err)
	assert.Equal(t, "Flu", label)

	label, err = bundle.Predict([]string{" sneeze ", "cough", "x", "x", "x"})
	require.NoError(t, err)
	assert.Equal(t, "Cold", label)
}

func TestPredictUnknownSymptom(t *testing.T) {
	bundle, _ := buildFixture(t)
	_, err := bundle.Predict([]string{"headache", "cough", "x", "x", "x"})
	require.ErrorIs(t, err, vocab.ErrUnknownToken)

	// normalised before lookup; the first unknown token is reported
	_, err = bundle.Predict([]string{"fever", " headache ", "glitter", "x", "x"})
	var tokenErr *vocab.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, "headache", tokenErr.Token)
}

func TestPredictWrongArity(t *testing.T) {
	bundle, _ := buildFixture(t)
	_, err := bundle.Predict([]string{"fever", "cough"})
	require.ErrorIs(t, err, ErrArity)
}

func TestSingletonClassDropped(t *testing.T) {
	bundle, _ := buildFixture(t)

	measles, err := bundle.Labels.Encode("Measles")
	require.NoError(t, err)
	_, ok := bundle.Model.Class(measles)
	assert.False(t, ok)
	assert.Equal(t, []int{measles}, bundle.Model.Report().Undersized)
	assert.Equal(t, []string{"Cold", "Flu"}, bundle.Diseases())

	// even its own symptoms cannot yield it
	label, err := bundle.Predict([]string{"rash", "fever", "x", "x", "x"})
	require.NoError(t, err)
	assert.NotEqual(t, "Measles", label)
}

func TestTrainStatistics(t *testing.T) {
	records := []Record{
		{Features: []int{1, 4}, Label: 0},
		{Features: []int{3, 4}, Label: 0},
		{Features: []int{5, 4}, Label: 0},
		{Features: []int{7, 7}, Label: 1},
		{Features: []int{9, 8}, Label: 1},
		{Features: []int{2, 2}, Label: 2},
	}
	model, err := Train(records, TrainOptions{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, model.Labels())
	assert.Equal(t, 2, model.Arity())

	c0, ok := model.Class(0)
	require.True(t, ok)
	assert.InDelta(t, 3.0, c0.Features[0].Mean, 1e-12)
	assert.InDelta(t, 2.0, c0.Features[0].StdDev, 1e-12) // sqrt(8/2)
	assert.Equal(t, 3, c0.Features[0].Count)
	assert.Zero(t, c0.Features[1].StdDev)

	c1, ok := model.Class(1)
	require.True(t, ok)
	assert.Equal(t, 2, c1.Features[0].Count)
	assert.InDelta(t, math.Sqrt2, c1.Features[0].StdDev, 1e-12)
}

func TestTrainRejectPolicy(t *testing.T) {
	records := []Record{
		{Features: []int{1, 4}, Label: 0},
		{Features: []int{3, 4}, Label: 0},
		{Features: []int{7, 7}, Label: 1},
		{Features: []int{9, 8}, Label: 1},
	}
	model, err := Train(records, TrainOptions{Policy: PolicyReject})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, model.Labels())
	assert.Equal(t, []int{0}, model.Report().Degenerate)
	assert.Zero(t, model.Epsilon())
}

func TestTrainEmptyModel(t *testing.T) {
	_, err := Train([]Record{{Features: []int{1}, Label: 0}, {Features: []int{2}, Label: 1}}, TrainOptions{})
	assert.ErrorIs(t, err, ErrEmptyModel)

	_, err = Train(nil, TrainOptions{})
	assert.ErrorIs(t, err, ErrNoRecords)

	var empty *Model
	_, err = empty.Predict([]int{1})
	assert.ErrorIs(t, err, ErrEmptyModel)
}

func TestTrainArityMismatch(t *testing.T) {
	_, err := Train([]Record{{Features: []int{1, 2}}, {Features: []int{1}}}, TrainOptions{})
	assert.ErrorIs(t, err, ErrArity)
}

func TestGaussianDensity(t *testing.T) {
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), GaussianDensity(0, 0, 1), 1e-12)
	assert.InDelta(t, math.Log(GaussianDensity(1.5, 0.5, 2)), LogGaussianDensity(1.5, 0.5, 2), 1e-12)

	// the raw density underflows, the log form stays finite
	assert.Zero(t, GaussianDensity(1000, 0, 1))
	assert.False(t, math.IsInf(LogGaussianDensity(1000, 0, 1), 0))
}

func TestLikelihoodMatchesProduct(t *testing.T) {
	records := []Record{
		{Features: []int{1, 2}, Label: 0},
		{Features: []int{3, 6}, Label: 0},
	}
	model, err := Train(records, TrainOptions{})
	require.NoError(t, err)

	c, _ := model.Class(0)
	want := 1.0
	for i, x := range []int{2, 4} {
		stdev := math.Sqrt(c.Features[i].StdDev*c.Features[i].StdDev + model.Epsilon())
		want *= GaussianDensity(float64(x), c.Features[i].Mean, stdev)
	}
	got, err := model.Likelihood(0, []int{2, 4})
	require.NoError(t, err)
	assert.InEpsilon(t, want, got, 1e-9)

	_, err = model.Likelihood(7, []int{2, 4})
	assert.Error(t, err)
}

func TestPredictTieBreaksOnLowestLabel(t *testing.T) {
	// identical statistics for both classes produce identical scores
	records := []Record{
		{Features: []int{1}, Label: 3},
		{Features: []int{3}, Label: 3},
		{Features: []int{1}, Label: 5},
		{Features: []int{3}, Label: 5},
	}
	model, err := Train(records, TrainOptions{})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		label, err := model.Predict([]int{2})
		require.NoError(t, err)
		assert.Equal(t, 3, label)
	}
}

func TestPredictReturnsModelLabels(t *testing.T) {
	bundle, records := buildFixture(t)
	known := bundle.Model.Labels()

	predicted, err := bundle.Model.PredictAll(records)
	require.NoError(t, err)
	for _, label := range predicted {
		assert.Contains(t, known, label)
	}

	again, err := bundle.Model.PredictAll(records)
	require.NoError(t, err)
	assert.Equal(t, predicted, again)
}
