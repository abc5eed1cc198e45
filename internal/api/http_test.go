package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/services"
)

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPredictEndpoint(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "*")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/predict",
		`{"symptom1":"fever","symptom2":"cough","symptom3":"x","symptom4":"x","symptom5":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Flu"}, out)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestPredictEndpointUnknownSymptom(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "*")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/predict",
		`{"symptom1":"fever","symptom2":"vertigo","symptom3":"x","symptom4":"x","symptom5":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "vertigo", out["symptom"])
	assert.Contains(t, out["error"], "unknown symptom")
}

func TestPredictEndpointMissingField(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "*")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/predict", `{"symptom1":"fever"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/predict", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictEndpointWithoutModel(t *testing.T) {
	router := NewRouter(quietLogger(), services.NewPredictionService(quietLogger(), nil), "*")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/predict",
		`{"symptom1":"fever","symptom2":"cough","symptom3":"x","symptom4":"x","symptom5":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "*")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestVocabularyEndpoints(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "*")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/symptoms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var symptoms struct {
		Symptoms []string `json:"symptoms"`
		Arity    int      `json:"arity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &symptoms))
	assert.Equal(t, []string{"cough", "fever", "sneeze", "x"}, symptoms.Symptoms)
	assert.Equal(t, 5, symptoms.Arity)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/diseases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"diseases":["Cold","Flu"]}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(quietLogger(), newTestPredictor(t), "https://app.example")
	rec := doRequest(t, router, http.MethodOptions, "/api/v1/predict", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServerLifecycle(t *testing.T) {
	srv, err := NewHTTPServer(config.ServerConfig{HTTPAddress: "127.0.0.1:0"}, NewRouter(quietLogger(), newTestPredictor(t), "*"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Address() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(t.Context()))
	assert.NoError(t, <-done)
}
