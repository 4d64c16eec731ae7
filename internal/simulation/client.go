package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"policyscope/internal/household"
	"policyscope/internal/logging"
)

// HTTPEngine implements Engine against a microsimulation service exposing
// POST {base}/calculate.
type HTTPEngine struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// EngineConfig holds configuration for the HTTP engine client.
type EngineConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultEngineConfig returns sensible defaults for a locally running
// engine service.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BaseURL: "http://localhost:5000",
		Timeout: 60 * time.Second,
	}
}

// NewHTTPEngine creates an engine client with custom config.
func NewHTTPEngine(config EngineConfig) *HTTPEngine {
	return &HTTPEngine{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// calculateRequest is the engine's wire request.
type calculateRequest struct {
	Situation *household.Situation `json:"household"`
	Variable  string               `json:"variable"`
	Period    string               `json:"period"`
	Trace     bool                 `json:"trace"`
}

// calculateResponse is the engine's wire response.
type calculateResponse struct {
	Result     float64  `json:"result"`
	TraceLines []string `json:"trace"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Calculate posts the situation to the engine and returns the numeric
// result with its trace. Transport errors and 429s are retried with
// exponential backoff; any other failure is returned to the caller
// unwrapped into the submission's fatal path.
func (e *HTTPEngine) Calculate(ctx context.Context, situation *household.Situation, variable, period string) (*Result, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.SimulationDebug("calculate: variable=%s period=%s people=%d", variable, period, len(situation.People))

	reqBody := calculateRequest{
		Situation: situation,
		Variable:  variable,
		Period:    period,
		Trace:     true,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/calculate", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			logging.SimulationError("calculate: engine returned status %d", resp.StatusCode)
			return nil, fmt.Errorf("engine request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var calcResp calculateResponse
		if err := json.Unmarshal(body, &calcResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if calcResp.Error != nil {
			return nil, fmt.Errorf("engine error: %s", calcResp.Error.Message)
		}

		logging.Simulation("calculate: variable=%s value=%.2f trace_lines=%d elapsed=%v",
			variable, calcResp.Result, len(calcResp.TraceLines), time.Since(startTime))

		return &Result{
			Value:      calcResp.Result,
			TraceLines: calcResp.TraceLines,
		}, nil
	}

	logging.SimulationError("calculate: max retries exceeded after %v: %v", time.Since(startTime), lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
