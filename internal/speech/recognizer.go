// Package speech wraps the speech-to-text and text-to-speech providers.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"live-translator/internal/domain"
)

// DefaultWhisperModel is the OpenAI transcription model.
const DefaultWhisperModel = openai.Whisper1

// WhisperConfig configures the OpenAI-compatible transcription endpoint.
type WhisperConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// WhisperRecognizer transcribes recorded audio through the OpenAI audio API.
type WhisperRecognizer struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

// NewWhisperRecognizer builds a recognizer; BaseURL overrides the OpenAI host.
func NewWhisperRecognizer(cfg WhisperConfig, logger *zap.SugaredLogger) (*WhisperRecognizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultWhisperModel
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &WhisperRecognizer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Transcribe sends audio named filename and returns the recognized text.
func (r *WhisperRecognizer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	req := openai.AudioRequest{
		Model:    r.model,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Format:   openai.AudioResponseFormatJSON,
	}

	start := time.Now()
	resp, err := r.client.CreateTranscription(ctx, req)
	if err != nil {
		r.logger.Warnw("transcription failed", "model", r.model, "elapsed", time.Since(start), "error", err)
		return "", wrapOpenAIError("transcribe", err)
	}

	r.logger.Debugw("transcription finished", "model", r.model, "bytes", len(audio), "elapsed", time.Since(start))
	return strings.TrimSpace(resp.Text), nil
}

func wrapOpenAIError(op string, err error) error {
	svcErr := &domain.ServiceError{
		Kind:    domain.ErrorKindSpeech,
		Op:      op,
		Message: "Speech recognition service error",
		Err:     err,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		svcErr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		svcErr.StatusCode = reqErr.HTTPStatusCode
	}
	if svcErr.StatusCode == 0 && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return svcErr
}
