package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"live-translator/internal/config"
	"live-translator/internal/detect"
	"live-translator/internal/domain"
	"live-translator/internal/gemini"
	"live-translator/internal/orchestrator"
	"live-translator/internal/server"
	"live-translator/internal/speech"
	"live-translator/internal/transcribe"
)

// BuildServices creates provider clients from settings and credentials.
// Speech services are optional and stay nil without their API keys.
func BuildServices(settings domain.Settings, creds config.Credentials, logger *zap.SugaredLogger) (server.Services, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var remote interface {
		detect.Detector
		orchestrator.Translator
	}
	if creds.GoogleAPIKey != "" {
		client, err := gemini.New(gemini.Config{
			BaseURL: settings.GeminiBaseURL,
			Model:   settings.GeminiModel,
			APIKey:  creds.GoogleAPIKey,
		}, logger.Named("gemini"))
		if err != nil {
			return server.Services{}, fmt.Errorf("create gemini client: %w", err)
		}
		remote = client
	} else {
		logger.Warnw("translation unavailable", "reason", config.EnvGoogleAPIKey+" not set")
		remote = unavailable{reason: config.EnvGoogleAPIKey + " is not set"}
	}

	detector, err := NewDetector(settings.DetectionProvider, remote, logger)
	if err != nil {
		return server.Services{}, err
	}

	services := server.Services{
		Detector:   detector,
		Translator: remote,
	}

	if creds.ElevenLabsAPIKey != "" {
		synth, err := speech.NewElevenLabsSynthesizer(speech.ElevenLabsConfig{
			APIKey: creds.ElevenLabsAPIKey,
			Model:  settings.TTSModel,
		}, logger.Named("tts"))
		if err != nil {
			return server.Services{}, fmt.Errorf("create speech synthesizer: %w", err)
		}
		services.Synthesizer = synth
	} else {
		logger.Infow("text-to-speech disabled", "reason", config.EnvElevenLabsAPIKey+" not set")
	}

	if creds.OpenAIAPIKey != "" {
		recognizer, err := speech.NewWhisperRecognizer(speech.WhisperConfig{
			APIKey:  creds.OpenAIAPIKey,
			BaseURL: settings.STTBaseURL,
			Model:   settings.STTModel,
		}, logger.Named("stt"))
		if err != nil {
			return server.Services{}, fmt.Errorf("create speech recognizer: %w", err)
		}
		services.Voice = transcribe.NewPipeline(recognizer)
	} else {
		logger.Infow("voice input disabled", "reason", config.EnvOpenAIAPIKey+" not set")
	}

	return services, nil
}

// NewDetector selects a detection provider by name.
func NewDetector(provider string, remote detect.Detector, logger *zap.SugaredLogger) (detect.Detector, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	switch provider {
	case "", config.DetectionGemini:
		return remote, nil
	case config.DetectionLocal:
		return detect.NewLocalDetector(), nil
	case config.DetectionAuto:
		return detect.NewChain(logger.Named("detect"), remote, detect.NewLocalDetector()), nil
	default:
		return nil, fmt.Errorf("unknown detection provider: %q", provider)
	}
}

// ServerConfig maps settings onto HTTP server config.
func ServerConfig(settings domain.Settings) server.Config {
	orch := orchestrator.ConfigFromSettings(settings)
	return server.Config{
		Orchestrator:   orch,
		RequestTimeout: orch.RequestTimeout,
		VoiceID:        settings.VoiceID,
	}
}

// unavailable answers every call with a configuration error so the UI can
// still start and show diagnostics.
type unavailable struct {
	reason string
}

func (u unavailable) Detect(context.Context, string) (domain.LanguageCode, error) {
	return "", &domain.ServiceError{Kind: domain.ErrorKindDetection, Op: "detect", Message: u.reason}
}

func (u unavailable) Translate(context.Context, string, domain.LanguageCode, domain.LanguageCode) (string, error) {
	return "", &domain.ServiceError{Kind: domain.ErrorKindTranslation, Op: "translate", Message: u.reason}
}
