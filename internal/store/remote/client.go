package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client speaks the action protocol of the remote storage service.
// Every call is a POST of {"action": ..., ...payload} to the service
// URL; the service answers {"success": bool, "data": ..., "message": ...}.
//
// The client deliberately carries no request timeout of its own.
// Callers bound calls through the context they pass in.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// CallError is a failed action round-trip. Transport failures and
// failures reported by the service itself surface the same way so
// callers fall back identically for both.
type CallError struct {
	Action  string
	Message string // service-reported message, empty for transport failures
	Err     error  // underlying transport error, nil for service failures
}

func (e *CallError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("remote action %q failed: %v", e.Action, e.Err)
	case e.Message != "":
		return fmt.Sprintf("remote action %q failed: %s", e.Action, e.Message)
	default:
		return fmt.Sprintf("remote action %q failed", e.Action)
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Call performs one action round-trip. payload may be nil for actions
// that take no arguments. The returned raw message is the response
// "data" field and may be empty.
func (c *Client) Call(ctx context.Context, action string, payload map[string]interface{}) (json.RawMessage, error) {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = action

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to build %q request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CallError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Action: action, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CallError{Action: action, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &CallError{Action: action, Err: fmt.Errorf("invalid response: %w", err)}
	}

	if !env.Success {
		c.logger.Warn("remote action rejected",
			slog.String("action", action),
			slog.String("message", env.Message),
		)
		return nil, &CallError{Action: action, Message: env.Message}
	}

	return env.Data, nil
}

// Test verifies connectivity with the service's test action.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.Call(ctx, "testConnection", nil)
	return err
}
