package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"downtrack/internal/config"
)

// InfoResult is the metadata returned by the info endpoint.
type InfoResult struct {
	Title    string `json:"title"`
	Duration int    `json:"duration,omitempty"`
	Uploader string `json:"uploader,omitempty"`
}

// SubmitResult is the response of a download submission.
type SubmitResult struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message,omitempty"`
}

// StatusResult is one status poll response for a tracked task.
type StatusResult struct {
	Status        string  `json:"status"`
	Progress      float64 `json:"progress,omitempty"`
	Speed         string  `json:"speed,omitempty"`
	Title         string  `json:"title,omitempty"`
	Error         string  `json:"error,omitempty"`
	Filename      string  `json:"filename,omitempty"`
	Message       string  `json:"message,omitempty"`
	QueuePosition int     `json:"queue_position,omitempty"`
	RetryCount    int     `json:"retry_count,omitempty"`
}

type errorPayload struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Client is a thin wrapper around the remote job service HTTP API. It
// normalizes transport failures, call timeouts, application errors and
// malformed responses into the ConnectionError / TimeoutError / ServiceError
// / ParseError taxonomy and has no side effects beyond the calls themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	infoTimeout   time.Duration
	submitTimeout time.Duration
	statusTimeout time.Duration
	healthTimeout time.Duration
}

// NewClient creates a Client for the service at cfg.APIBase.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.APIBase, "/"),
		httpClient:    &http.Client{},
		logger:        logger,
		infoTimeout:   cfg.InfoTimeout,
		submitTimeout: cfg.SubmitTimeout,
		statusTimeout: cfg.StatusTimeout,
		healthTimeout: cfg.HealthTimeout,
	}
}

// Health checks service availability. Any outcome other than HTTP 200 is an
// error.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, c.healthTimeout, nil)
}

// FetchInfo asks the service for metadata about a source URL.
func (c *Client) FetchInfo(ctx context.Context, sourceURL string) (*InfoResult, error) {
	var info InfoResult
	body := map[string]string{"url": sourceURL}
	if err := c.call(ctx, http.MethodPost, "/api/info", body, c.infoTimeout, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Submit asks the service to start downloading the source URL. A success
// response that carries no task id is reported as a ServiceError, since
// without an id the job can never be tracked.
func (c *Client) Submit(ctx context.Context, sourceURL, format string, audioOnly bool) (*SubmitResult, error) {
	var result SubmitResult
	body := map[string]any{
		"url":        sourceURL,
		"format":     format,
		"audio_only": audioOnly,
	}
	if err := c.call(ctx, http.MethodPost, "/api/download", body, c.submitTimeout, &result); err != nil {
		return nil, err
	}
	if result.TaskID == "" {
		return nil, &ServiceError{Message: "download response carries no task id"}
	}
	return &result, nil
}

// Status polls the current state of a submitted task.
func (c *Client) Status(ctx context.Context, taskID string) (*StatusResult, error) {
	var status StatusResult
	if err := c.call(ctx, http.MethodGet, "/api/status/"+taskID, nil, c.statusTimeout, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FileURL returns the URL a host page can use to save a finished file. The
// tracker never fetches it itself.
func (c *Client) FileURL(filename string) string {
	return c.baseURL + "/api/download-file/" + filename
}

func (c *Client) call(ctx context.Context, method, path string, body any, budget time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Debug("request timed out", "method", method, "path", path, "budget", budget)
			return &TimeoutError{Op: method + " " + path}
		}
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &ServiceError{StatusCode: resp.StatusCode, Message: serviceMessage(data, resp.StatusCode)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		// A bare 200 with an undecodable body still counts as success,
		// the caller just gets an empty result.
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		return &ParseError{Err: err}
	}

	return nil
}

// serviceMessage extracts the human-readable error from an error payload.
// The convention is a JSON object with a "detail" or "error" string; if both
// are absent the HTTP status still constitutes a generic service error.
func serviceMessage(data []byte, statusCode int) string {
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}
