package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient makes REST calls to the NeuraSect backend.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8000").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// StartTraining submits a training configuration via POST /api/train/start.
// On a non-2xx status the server's {detail} message is returned if the body
// parses as a structured error, otherwise a generic failure message.
func (c *HTTPClient) StartTraining(cfg TrainingConfig) (*TrainingResponse, error) {
	var out TrainingResponse
	if err := c.post("/api/train/start", cfg, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("backend returned no session id")
	}
	return &out, nil
}

// GetStatus fetches GET /api/train/{id}/status.
func (c *HTTPClient) GetStatus(sessionID string) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get("/api/train/"+sessionID+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Predict sends rows of feature values via POST /api/train/{id}/predict.
func (c *HTTPClient) Predict(sessionID string, rows [][]float64) (*PredictResponse, error) {
	var out PredictResponse
	if err := c.post("/api/train/"+sessionID+"/predict", rows, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession removes server-side session state via DELETE /api/train/{id}.
func (c *HTTPClient) DeleteSession(sessionID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/train/"+sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError("DELETE /api/train/"+sessionID, resp)
	}
	return nil
}

// Health probes GET /api/health.
func (c *HTTPClient) Health() (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get("/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) get(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError("GET "+path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError("POST "+path, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("POST %s: decode response: %w", path, err)
		}
	}
	return nil
}

// statusError extracts the backend's {detail} message from an error
// response, falling back to the raw body text.
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Detail != "" {
		return fmt.Errorf("%s: %s", op, eb.Detail)
	}
	return fmt.Errorf("%s: %d %s", op, resp.StatusCode, string(body))
}
