// Package client calls a running kenko server over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kenkohealth/kenko/internal/models"
)

// ErrNoPrediction reports a successful response without a label.
var ErrNoPrediction = errors.New("server returned no prediction")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Symptom string `json:"symptom"`
}

func (e *APIError) Error() string {
	if e.Symptom != "" {
		return fmt.Sprintf("server returned %d: %s (symptom %q)", e.Status, e.Message, e.Symptom)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client wraps a resty client bound to one base URL.
type Client struct {
	http *resty.Client
}

// New builds a client for baseURL, e.g. http://localhost:8000.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Predict posts five symptoms and returns the predicted disease.
func (c *Client) Predict(ctx context.Context, symptoms []string) (string, error) {
	if len(symptoms) != models.SymptomCount {
		return "", fmt.Errorf("expected %d symptoms, got %d", models.SymptomCount, len(symptoms))
	}
	body := make(map[string]string, len(symptoms))
	for i, s := range symptoms {
		body[fmt.Sprintf("symptom%d", i+1)] = s
	}

	var result []string
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(apiErr).
		Post("/api/v1/predict")
	if err != nil {
		return "", fmt.Errorf("post predict: %w", err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return "", apiErr
	}
	if len(result) == 0 {
		return "", ErrNoPrediction
	}
	return result[0], nil
}

// Symptoms lists the server's known symptom tokens.
func (c *Client) Symptoms(ctx context.Context) ([]string, error) {
	return c.list(ctx, "/api/v1/symptoms", "symptoms")
}

// Diseases lists the labels the server can predict.
func (c *Client) Diseases(ctx context.Context) ([]string, error) {
	return c.list(ctx, "/api/v1/diseases", "diseases")
}

func (c *Client) list(ctx context.Context, path, key string) ([]string, error) {
	var result map[string]any
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).Get(path)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	raw, _ := result[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
