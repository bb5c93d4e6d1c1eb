package config

import (
	"os"
	"path/filepath"

	"live-translator/internal/debounce"
	"live-translator/internal/domain"
	"live-translator/internal/gemini"
	"live-translator/internal/speech"
)

// Detection providers accepted in Settings.DetectionProvider.
const (
	DetectionGemini = "gemini"
	DetectionLocal  = "local"
	DetectionAuto   = "auto"
)

// Debounce bounds accepted by diagnostics and the settings form.
const (
	MinDebounceMs = 100
	MaxDebounceMs = 5000
)

// DefaultPath returns the settings file location under the user's home.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".live-translator", "settings.json")
}

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		SourceLanguage:    domain.LanguageEnglish,
		TargetLanguage:    domain.LanguageArabic,
		DebounceMs:        int(debounce.DefaultDelay.Milliseconds()),
		RequestTimeoutSec: 10,
		DetectionProvider: DetectionGemini,
		GeminiBaseURL:     gemini.DefaultBaseURL,
		GeminiModel:       gemini.DefaultModel,
		VoiceID:           speech.DefaultVoiceID,
		TTSModel:          speech.DefaultTTSModel,
		STTBaseURL:        "https://api.openai.com/v1",
		STTModel:          speech.DefaultWhisperModel,
		ListenAddr:        "127.0.0.1:8080",
	}
}
