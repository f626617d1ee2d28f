package fmi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/fmuweb/domain"
)

// Client talks to an engine sidecar service that wraps the actual FMU
// tooling. It implements both Inspector and Engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the engine sidecar at baseURL. The HTTP
// timeout is deliberately generous: simulations block until the engine's
// own forwarded timeout fires.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("engine request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read engine response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		var ef engineError
		if json.Unmarshal(respBody, &ef) == nil && ef.Message != "" {
			return &ef
		}
		return fmt.Errorf("engine returned status %d: %s", httpResp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, resp)
}

// engineError is the sidecar's failure body. The message and any log
// lines it carries are surfaced verbatim.
type engineError struct {
	Message string   `json:"error"`
	Logs    []string `json:"logs,omitempty"`
}

func (e *engineError) Error() string { return e.Message }

// Inspect implements Inspector.
func (c *Client) Inspect(ctx context.Context, modelPath string) (*ModelDescription, error) {
	var md ModelDescription
	err := c.post(ctx, "/inspect", map[string]string{"model_path": modelPath}, &md)
	if err != nil {
		return nil, err
	}
	return &md, nil
}

// Validate implements Inspector.
func (c *Client) Validate(ctx context.Context, modelPath string) ([]string, error) {
	var resp struct {
		Problems []string `json:"problems"`
	}
	if err := c.post(ctx, "/validate", map[string]string{"model_path": modelPath}, &resp); err != nil {
		return nil, err
	}
	return resp.Problems, nil
}

// Platform implements Engine.
func (c *Client) Platform(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/platform", nil)
	if err != nil {
		return "", err
	}
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("engine request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp struct {
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode platform response: %w", err)
	}
	return resp.Platform, nil
}

// simulateWire is the sidecar's /simulate body: the forwarded options
// plus the resolved model path and the merged input table, if any.
type simulateWire struct {
	domain.RunConfig
	ModelPath  string           `json:"model_path"`
	InputTable *sampleTableWire `json:"input_table,omitempty"`
	InputPath  string           `json:"input_file_path,omitempty"`
}

type sampleTableWire struct {
	Times   []float64            `json:"times"`
	Columns map[string][]float64 `json:"columns"`
}

// Simulate implements Engine. Diagnostic log lines returned by the
// sidecar are forwarded to sink in order, on success and failure alike.
func (c *Client) Simulate(ctx context.Context, req SimulateRequest, sink LogSink) (*domain.ResultTable, error) {
	wire := simulateWire{
		RunConfig: req.Options,
		ModelPath: req.ModelPath,
		InputPath: req.InputFilePath,
	}
	// The schedule and file forms are mutually exclusive; the table has
	// already been merged by the caller.
	wire.Inputs = nil
	wire.InputFile = nil
	if req.Input != nil {
		wire.InputTable = &sampleTableWire{Times: req.Input.Times, Columns: req.Input.Columns}
	}

	var resp struct {
		Columns []string             `json:"columns"`
		Rows    []map[string]float64 `json:"rows"`
		Logs    []string             `json:"logs,omitempty"`
	}
	err := c.post(ctx, "/simulate", wire, &resp)
	if err != nil {
		var ef *engineError
		if sink != nil && errors.As(err, &ef) {
			for _, line := range ef.Logs {
				sink(line)
			}
		}
		return nil, err
	}

	if sink != nil {
		for _, line := range resp.Logs {
			sink(line)
		}
	}
	return &domain.ResultTable{Columns: resp.Columns, Rows: resp.Rows}, nil
}
