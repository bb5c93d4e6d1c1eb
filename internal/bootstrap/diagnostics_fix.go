package bootstrap

import (
	"fmt"
	"strings"

	"live-translator/internal/config"
	"live-translator/internal/diagnostics"
	"live-translator/internal/domain"
)

// FixDiagnostic resets the setting behind one failed diagnostic item to its default.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	fixed, err := applyFix(id, settings)
	if err != nil {
		return a.refreshDiagnosticsFromSettings(settings), err
	}

	if err := a.Store.Save(fixed); err != nil {
		return a.refreshDiagnosticsFromSettings(settings), fmt.Errorf("save settings after fix: %w", err)
	}
	if err := a.applySettings(fixed); err != nil {
		return a.refreshDiagnosticsFromSettings(fixed), err
	}
	return a.refreshDiagnosticsFromSettings(fixed), nil
}

// applyFix returns settings with the field behind id restored.
func applyFix(id string, settings domain.Settings) (domain.Settings, error) {
	defaults := config.DefaultSettings()

	switch id {
	case diagnostics.ItemLanguagePair:
		settings.SourceLanguage = defaults.SourceLanguage
		settings.TargetLanguage = defaults.TargetLanguage
	case diagnostics.ItemDebounce:
		settings.DebounceMs = defaults.DebounceMs
	case diagnostics.ItemRequestTimeout:
		settings.RequestTimeoutSec = defaults.RequestTimeoutSec
	case diagnostics.ItemDetectionProvider:
		settings.DetectionProvider = defaults.DetectionProvider
	case diagnostics.ItemGeminiEndpoint:
		settings.GeminiBaseURL = defaults.GeminiBaseURL
	case diagnostics.ItemSTTEndpoint:
		settings.STTBaseURL = defaults.STTBaseURL
	case diagnostics.ItemGoogleKey:
		return settings, fmt.Errorf("export %s and restart the translator", config.EnvGoogleAPIKey)
	case diagnostics.ItemElevenLabsKey:
		return settings, fmt.Errorf("export %s and restart the translator", config.EnvElevenLabsAPIKey)
	case diagnostics.ItemOpenAIKey:
		return settings, fmt.Errorf("export %s and restart the translator", config.EnvOpenAIAPIKey)
	default:
		return settings, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}
	return settings, nil
}
