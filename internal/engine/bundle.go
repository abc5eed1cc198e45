package engine

import (
	"fmt"
	"slices"

	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/vocab"
)

// Bundle is everything needed to answer predictions: both vocabularies and
// the trained model. It is built once and only read afterwards.
type Bundle struct {
	Symptoms       *vocab.Vocabulary
	Labels         *vocab.Vocabulary
	Model          *Model
	FeatureColumns []string
}

// BuildOptions names the columns of the training table.
type BuildOptions struct {
	LabelColumn    string
	FeatureColumns []string
	Train          TrainOptions
}

// Build encodes table and trains the serving model on every record. The
// encoded records are returned for evaluation runs.
func Build(table *dataset.Table, opts BuildOptions) (*Bundle, []Record, error) {
	encoded, err := Encode(table, opts.LabelColumn, opts.FeatureColumns)
	if err != nil {
		return nil, nil, err
	}
	model, err := Train(encoded.Records, opts.Train)
	if err != nil {
		return nil, nil, fmt.Errorf("train: %w", err)
	}
	return &Bundle{
		Symptoms:       encoded.Symptoms,
		Labels:         encoded.Labels,
		Model:          model,
		FeatureColumns: slices.Clone(opts.FeatureColumns),
	}, encoded.Records, nil
}

// Predict normalises and encodes tokens, runs the model, and decodes the
// winning label. Unknown tokens fail with vocab.ErrUnknownToken.
func (b *Bundle) Predict(tokens []string) (string, error) {
	if len(tokens) != b.Model.Arity() {
		return "", fmt.Errorf("%w: got %d symptoms, want %d", ErrArity, len(tokens), b.Model.Arity())
	}
	normalized := make([]string, len(tokens))
	for i, token := range tokens {
		normalized[i] = dataset.Normalize(token)
	}
	codes, err := b.Symptoms.EncodeAll(normalized)
	if err != nil {
		return "", err
	}
	label, err := b.Model.Predict(codes)
	if err != nil {
		return "", err
	}
	return b.Labels.Decode(label)
}

// Diseases lists the labels the model can predict, in label order.
func (b *Bundle) Diseases() []string {
	labels := b.Model.Labels()
	out := make([]string, 0, len(labels))
	for _, code := range labels {
		if name, err := b.Labels.Decode(code); err == nil {
			out = append(out, name)
		}
	}
	return out
}
