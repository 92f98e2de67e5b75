// Package openai implements the augment.Client contract over the OpenAI
// chat/completions HTTP API. The response content is validated against a
// JSON Schema before it is accepted.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment"
)

type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g. "gpt-4o-mini"
	Temperature float64       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Complete implements augment.Client.
func (c *Client) Complete(ctx context.Context, prompt string, opts augment.Options) (augment.Candidate, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}

	body := map[string]any{
		"model":           model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You extract a single field value from valuation document text. Return ONLY JSON matching the provided schema."},
			{"role": "user", "content": prompt},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(fieldSchema())},
		},
	}

	c.logger.Info("openai.complete.start",
		"req_id", rid, "model", model, "field", opts.Field, "prompt_len", len(prompt))

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("openai.complete.http_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return augment.Candidate{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return augment.Candidate{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return augment.Candidate{}, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	if err := validateAgainstSchema(fieldSchema(), []byte(content)); err != nil {
		c.logger.Error("openai.complete.schema_validation_failed",
			"req_id", rid, "error", err, "content", content)
		return augment.Candidate{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var out struct {
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return augment.Candidate{}, fmt.Errorf("unmarshal field: %w", err)
	}

	c.logger.Info("openai.complete.ok",
		"req_id", rid, "field", opts.Field,
		"confidence", out.Confidence, "elapsed_ms", time.Since(start).Milliseconds())

	return augment.Candidate{
		Value:      out.Value,
		Confidence: out.Confidence,
		RawText:    content,
		Metadata:   map[string]any{"provider": "openai", "model": model},
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
