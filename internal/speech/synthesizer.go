package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	elevenlabs "github.com/haguro/elevenlabs-go"
	"go.uber.org/zap"

	"live-translator/internal/domain"
)

const (
	// DefaultTTSModel speaks every supported language.
	DefaultTTSModel = "eleven_multilingual_v2"
	// DefaultVoiceID is used when no voice has been selected.
	DefaultVoiceID = "FTNCalFNG5bRnkkaP5Ug"
	// MaxAudioBytes caps the size of one synthesized clip.
	MaxAudioBytes = 20 << 20

	outputFormat         = "mp3_44100_128"
	defaultSpeechTimeout = 60 * time.Second
)

// ConvertFunc performs one text-to-speech call.
type ConvertFunc func(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error)

// ElevenLabsConfig configures the text-to-speech client.
type ElevenLabsConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// Convert replaces the ElevenLabs client; nil uses the real API.
	Convert ConvertFunc
}

// ElevenLabsSynthesizer converts text to MP3 audio.
type ElevenLabsSynthesizer struct {
	model   string
	convert ConvertFunc
	logger  *zap.SugaredLogger
}

// NewElevenLabsSynthesizer builds a synthesizer with defaults for empty fields.
func NewElevenLabsSynthesizer(cfg ElevenLabsConfig, logger *zap.SugaredLogger) (*ElevenLabsSynthesizer, error) {
	if cfg.Convert == nil && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultTTSModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSpeechTimeout
	}
	if cfg.Convert == nil {
		cfg.Convert = clientConvert(cfg.APIKey, cfg.Timeout)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &ElevenLabsSynthesizer{
		model:   cfg.Model,
		convert: cfg.Convert,
		logger:  logger,
	}, nil
}

// clientConvert binds a fresh client to each call's context.
func clientConvert(apiKey string, timeout time.Duration) ConvertFunc {
	return func(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error) {
		client := elevenlabs.NewClient(ctx, apiKey, timeout)
		return client.TextToSpeech(voiceID, req, elevenlabs.OutputFormat(outputFormat))
	}
}

// Synthesize returns MP3 audio of text spoken by voiceID.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is required")
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	audio, err := s.convert(ctx, voiceID, elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: s.model,
	})
	if err != nil {
		return nil, &domain.ServiceError{Kind: domain.ErrorKindSpeech, Op: "synthesize", Message: "Failed to convert text to speech.", Err: err}
	}
	if len(audio) > MaxAudioBytes {
		return nil, &domain.ServiceError{
			Kind:    domain.ErrorKindSpeech,
			Op:      "synthesize",
			Message: fmt.Sprintf("audio is %d bytes, limit is %d", len(audio), MaxAudioBytes),
		}
	}

	s.logger.Debugw("speech synthesized", "voiceID", voiceID, "chars", len(text), "bytes", len(audio))
	return audio, nil
}
