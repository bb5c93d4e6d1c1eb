// Package gemini calls the Gemini generateContent endpoint for language
// detection and translation.
package gemini

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

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"live-translator/internal/domain"
)

const (
	// DefaultBaseURL is the public Generative Language API host.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model used for both detection and translation.
	DefaultModel = "gemini-1.5-flash"

	detectPrompt    = "Identify the language of this text: %s"
	translatePrompt = "Translate this text professionally, don't send any extras, just the translated text %s to %s: %s"

	maxResponseBytes = 1 << 20
)

// Config controls endpoint, credentials and outbound pacing.
type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// DefaultConfig returns production endpoint settings with a modest rate limit.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Model:             DefaultModel,
		RequestsPerSecond: 5,
		Burst:             2,
	}
}

// Client implements detection and translation on top of generateContent.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// New builds a client; empty config fields fall back to DefaultConfig values.
func New(cfg Config, logger *zap.SugaredLogger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}, nil
}

// Detect asks the model to name the language and maps the answer onto the
// supported table. Answers naming no supported language are detection errors.
func (c *Client) Detect(ctx context.Context, text string) (domain.LanguageCode, error) {
	answer, err := c.generate(ctx, "detect", domain.ErrorKindDetection, "Language detection service error", fmt.Sprintf(detectPrompt, text))
	if err != nil {
		return "", err
	}

	code, ok := domain.MatchLanguageLabel(answer)
	if !ok {
		return "", &domain.ServiceError{
			Kind:    domain.ErrorKindDetection,
			Op:      "detect",
			Message: fmt.Sprintf("no supported language in response %q", truncate(answer, 80)),
		}
	}
	return code, nil
}

// Translate converts text from source to target.
func (c *Client) Translate(ctx context.Context, text string, source, target domain.LanguageCode) (string, error) {
	prompt := fmt.Sprintf(translatePrompt, source, target, text)
	answer, err := c.generate(ctx, "translate", domain.ErrorKindTranslation, "Translation service error", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (c *Client) generate(ctx context.Context, op string, kind domain.ErrorKind, failure, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s: wait for rate limiter: %w", op, err)
	}

	body, err := buildRequest(prompt)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.ServiceError{Kind: kind, Op: op, Message: failure, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.ServiceError{Kind: kind, Op: op, Message: failure, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debugw("gemini request finished", "op", op, "model", c.model, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(payload, "error.message").String()
		if detail == "" {
			detail = truncate(string(payload), 200)
		}
		return "", &domain.ServiceError{
			Kind:       kind,
			Op:         op,
			Message:    failure,
			StatusCode: resp.StatusCode,
			Err:        errors.New(detail),
		}
	}

	text := gjson.GetBytes(payload, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		reason := gjson.GetBytes(payload, "promptFeedback.blockReason").String()
		if reason == "" {
			reason = "response has no candidates"
		}
		return "", &domain.ServiceError{Kind: kind, Op: op, Message: failure, StatusCode: resp.StatusCode, Err: errors.New(reason)}
	}
	return text.String(), nil
}

func buildRequest(prompt string) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	req := struct {
		Contents []content `json:"contents"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}
	return json.Marshal(req)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
