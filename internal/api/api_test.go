package api

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kenkohealth/kenko/internal/dataset"
	"github.com/kenkohealth/kenko/internal/engine"
	"github.com/kenkohealth/kenko/internal/services"
)

const trainingCSV = `Disease,Symptom_1,Symptom_2,Symptom_3,Symptom_4,Symptom_5
Flu,fever,cough,x,x,x
Flu,fever,cough,x,x,x
Cold,sneeze,cough,x,x,x
Cold,sneeze,cough,x,x,x
`

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPredictor(t *testing.T) *services.PredictionService {
	t.Helper()
	table, err := dataset.Load(strings.NewReader(trainingCSV), dataset.Options{LabelColumn: "Disease"})
	require.NoError(t, err)
	bundle, _, err := engine.Build(table, engine.BuildOptions{
		LabelColumn:    "Disease",
		FeatureColumns: []string{"Symptom_1", "Symptom_2", "Symptom_3", "Symptom_4", "Symptom_5"},
	})
	require.NoError(t, err)
	return services.NewPredictionService(quietLogger(), bundle)
}
