package engine

import (
	"fmt"

	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/vocab"
)

// Record is one encoded training row: symptom codes followed by a label code.
type Record struct {
	Features []int
	Label    int
}

// Encoded is the output of the categorical encoder.
type Encoded struct {
	Symptoms *vocab.Vocabulary
	Labels   *vocab.Vocabulary
	Records  []Record
}

// Encode builds the label vocabulary from labelColumn and one symptom
// vocabulary shared by every feature column, then encodes each row.
func Encode(table *dataset.Table, labelColumn string, featureColumns []string) (*Encoded, error) {
	if len(featureColumns) == 0 {
		return nil, fmt.Errorf("encode: no feature columns")
	}

	labels, err := table.Column(labelColumn)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	features := make([][]string, len(featureColumns))
	for i, name := range featureColumns {
		col, err := table.Column(name)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		features[i] = col
	}

	labelVocab := vocab.New(labels)
	symptomVocab := vocab.New(features...)

	records := make([]Record, table.Len())
	for row := range records {
		codes := make([]int, len(featureColumns))
		for col := range featureColumns {
			code, err := symptomVocab.Encode(features[col][row])
			if err != nil {
				return nil, fmt.Errorf("encode row %d: %w", row+1, err)
			}
			codes[col] = code
		}
		label, err := labelVocab.Encode(labels[row])
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", row+1, err)
		}
		records[row] = Record{Features: codes, Label: label}
	}

	return &Encoded{Symptoms: symptomVocab, Labels: labelVocab, Records: records}, nil
}
