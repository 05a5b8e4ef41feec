// Package webhook delivers action requests to external HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maubry/ouvra/pkg/actions"
	"github.com/maubry/ouvra/pkg/events"
)

var (
	ErrURLRequired   = errors.New("webhook url is required")
	ErrMethodInvalid = errors.New("webhook method is invalid")
	ErrServerError   = errors.New("webhook endpoint returned server error")
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

type RetryConfig struct {
	Attempts int
	Delay    int
}

type config struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    any
	Retry   RetryConfig
}

type Executor struct {
	client *http.Client
}

func NewExecutor() *Executor {
	return &Executor{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *Executor) Type() string {
	return actions.TypeWebhook
}

func (e *Executor) Execute(ctx context.Context, request events.AutoActionRequested, logger *slog.Logger) error {
	cfg, err := parseConfig(request.Action.Config)
	if err != nil {
		return err
	}

	body := cfg.Body
	if body == nil {
		body = map[string]any{
			"intervention_id": request.InterventionID,
			"action_type":     request.Action.Type,
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode webhook body: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.Retry.Attempts; attempt++ {
		if attempt > 1 {
			logger.Info("Retrying webhook delivery", "attempt", attempt, "url", cfg.URL)
			time.Sleep(time.Duration(cfg.Retry.Delay) * time.Second)
		}

		retryable, err := e.deliver(ctx, cfg, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		if !retryable {
			return lastErr
		}
	}

	return lastErr
}

// deliver performs one delivery attempt. Transport failures and 5xx responses
// are retryable; 4xx responses mean the request itself is wrong and retrying
// cannot help.
func (e *Executor) deliver(ctx context.Context, cfg config, payload []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for name, value := range cfg.Headers {
		req.Header.Set(name, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return true, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return false, fmt.Errorf("webhook endpoint rejected request: %d", resp.StatusCode)
	}

	return false, nil
}

func parseConfig(raw map[string]any) (config, error) {
	cfg := config{
		Method: http.MethodPost,
		Retry:  RetryConfig{Attempts: 1, Delay: 0},
	}

	url, _ := raw["url"].(string)
	if url == "" {
		return cfg, ErrURLRequired
	}

	cfg.URL = url

	if method, ok := raw["method"].(string); ok && method != "" {
		method = strings.ToUpper(method)
		if !allowedMethods[method] {
			return cfg, fmt.Errorf("%w: %s", ErrMethodInvalid, method)
		}

		cfg.Method = method
	}

	if headers, ok := raw["headers"].(map[string]any); ok {
		cfg.Headers = make(map[string]string, len(headers))

		for name, value := range headers {
			if str, ok := value.(string); ok {
				cfg.Headers[name] = str
			}
		}
	}

	if body, ok := raw["body"]; ok {
		cfg.Body = body
	}

	if retry, ok := raw["retry"].(map[string]any); ok {
		if attempts, ok := retry["attempts"].(float64); ok && attempts >= 1 {
			cfg.Retry.Attempts = int(attempts)
		}

		if delay, ok := retry["delay"].(float64); ok && delay >= 0 {
			cfg.Retry.Delay = int(delay)
		}
	}

	return cfg, nil
}
