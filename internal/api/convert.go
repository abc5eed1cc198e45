package api

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kenkohealth/kenko/internal/models"
)

// symptomFields are the request keys, in feature column order.
var symptomFields = func() []string {
	out := make([]string, models.SymptomCount)
	for i := range out {
		out[i] = fmt.Sprintf("symptom%d", i+1)
	}
	return out
}()

// PredictBody is the JSON body of POST /api/v1/predict.
type PredictBody struct {
	Symptom1 string `json:"symptom1" binding:"required"`
	Symptom2 string `json:"symptom2" binding:"required"`
	Symptom3 string `json:"symptom3" binding:"required"`
	Symptom4 string `json:"symptom4" binding:"required"`
	Symptom5 string `json:"symptom5" binding:"required"`
}

// FromPredictBody maps the HTTP body into a domain PredictionRequest.
func FromPredictBody(body PredictBody, requestID string) models.PredictionRequest {
	return models.PredictionRequest{
		RequestID: requestID,
		Symptoms:  []string{body.Symptom1, body.Symptom2, body.Symptom3, body.Symptom4, body.Symptom5},
	}
}

// FromStruct maps a gRPC Struct carrying symptom1..symptom5 into a domain request.
func FromStruct(in *structpb.Struct, requestID string) (models.PredictionRequest, error) {
	if in == nil {
		return models.PredictionRequest{}, fmt.Errorf("request is nil")
	}
	fields := in.GetFields()
	symptoms := make([]string, len(symptomFields))
	for i, key := range symptomFields {
		value, ok := fields[key]
		if !ok {
			return models.PredictionRequest{}, fmt.Errorf("%s is required", key)
		}
		str, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok || str.StringValue == "" {
			return models.PredictionRequest{}, fmt.Errorf("%s must be a non-empty string", key)
		}
		symptoms[i] = str.StringValue
	}
	return models.PredictionRequest{RequestID: requestID, Symptoms: symptoms}, nil
}

// ToListValue renders a prediction as a one-element list, matching the HTTP body.
func ToListValue(pred models.Prediction) *structpb.ListValue {
	return &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue(pred.Disease)}}
}
