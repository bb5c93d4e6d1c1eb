package diagnostics

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"live-translator/internal/config"
	"live-translator/internal/domain"
)

// Diagnostic item IDs; the fixable ones are repaired by bootstrap.FixDiagnostic.
const (
	ItemGoogleKey         = "credential_google"
	ItemElevenLabsKey     = "credential_elevenlabs"
	ItemOpenAIKey         = "credential_openai"
	ItemLanguagePair      = "language_pair"
	ItemDebounce          = "debounce"
	ItemRequestTimeout    = "request_timeout"
	ItemDetectionProvider = "detection_provider"
	ItemGeminiEndpoint    = "endpoint_gemini"
	ItemSTTEndpoint       = "endpoint_stt"
)

// MaxRequestTimeoutSec caps the per-call timeout accepted in settings.
const MaxRequestTimeoutSec = 60

// Checker validates credentials and settings before the translator starts.
type Checker struct {
	lookupEnv func(string) (string, bool)
	now       func() time.Time
}

// NewChecker builds a checker using the process environment.
func NewChecker() *Checker {
	return &Checker{
		lookupEnv: os.LookupEnv,
		now:       time.Now,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkCredential(ItemGoogleKey, "Gemini API key", config.EnvGoogleAPIKey, domain.DiagnosticStatusFail,
			"Language detection and translation are unavailable."),
		c.checkCredential(ItemElevenLabsKey, "ElevenLabs API key", config.EnvElevenLabsAPIKey, domain.DiagnosticStatusWarn,
			"Text-to-speech playback is disabled."),
		c.checkCredential(ItemOpenAIKey, "OpenAI API key", config.EnvOpenAIAPIKey, domain.DiagnosticStatusWarn,
			"Voice input is disabled."),
		checkLanguagePair(settings.SourceLanguage, settings.TargetLanguage),
		checkDebounce(settings.DebounceMs),
		checkRequestTimeout(settings.RequestTimeoutSec),
		checkDetectionProvider(settings.DetectionProvider),
		checkEndpoint(ItemGeminiEndpoint, "Gemini endpoint", settings.GeminiBaseURL),
		checkEndpoint(ItemSTTEndpoint, "Speech-to-text endpoint", settings.STTBaseURL),
	}

	hasFailures := lo.SomeBy(items, func(item domain.DiagnosticItem) bool {
		return item.Status == domain.DiagnosticStatusFail
	})

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkCredential verifies a provider key is present in the environment.
func (c *Checker) checkCredential(id, name, envKey string, missing domain.DiagnosticStatus, impact string) domain.DiagnosticItem {
	value, _ := c.lookupEnv(envKey)
	if strings.TrimSpace(value) == "" {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    name,
			Status:  missing,
			Message: fmt.Sprintf("%s is not set. %s", envKey, impact),
			Hint:    fmt.Sprintf("Export %s before starting the translator.", envKey),
		}
	}

	return domain.DiagnosticItem{
		ID:      id,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("%s is set.", envKey),
	}
}

// checkLanguagePair validates the persisted default pair.
func checkLanguagePair(source, target domain.LanguageCode) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemLanguagePair,
		Name: "Language pair",
	}

	switch {
	case !source.IsSupported():
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Source language %q is not supported.", source)
	case !target.IsSupported():
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Target language %q is not supported.", target)
	case source == target:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Source and target are both %s.", source.Label())
	default:
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("%s to %s.", source.Label(), target.Label())
		return item
	}

	item.Hint = "Reset to English to Arabic or pick two different supported languages."
	item.Fixable = true
	return item
}

// checkDebounce validates the typing pause window.
func checkDebounce(ms int) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemDebounce,
		Name: "Typing delay",
	}
	if ms < config.MinDebounceMs || ms > config.MaxDebounceMs {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Typing delay %d ms is outside %d-%d ms.", ms, config.MinDebounceMs, config.MaxDebounceMs)
		item.Hint = "Reset the delay to 1000 ms."
		item.Fixable = true
		return item
	}
	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Translating %d ms after typing stops.", ms)
	return item
}

// checkRequestTimeout validates the per-call timeout.
func checkRequestTimeout(sec int) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemRequestTimeout,
		Name: "Request timeout",
	}
	if sec <= 0 || sec > MaxRequestTimeoutSec {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Request timeout %d s is outside 1-%d s.", sec, MaxRequestTimeoutSec)
		item.Hint = "Reset the timeout to 10 seconds."
		item.Fixable = true
		return item
	}
	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Requests time out after %d s.", sec)
	return item
}

// checkDetectionProvider validates the provider name.
func checkDetectionProvider(provider string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemDetectionProvider,
		Name: "Detection provider",
	}
	switch provider {
	case config.DetectionGemini, config.DetectionLocal, config.DetectionAuto:
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("Using %s detection.", provider)
	default:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unknown detection provider %q.", provider)
		item.Hint = "Use gemini, local or auto."
		item.Fixable = true
	}
	return item
}

// checkEndpoint validates an absolute http(s) base URL.
func checkEndpoint(id, name, raw string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Invalid endpoint URL: %q", raw)
		item.Hint = "Restore the default endpoint."
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Using %s", parsed.Redacted())
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(lookupEnv func(string) (string, bool), now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{
		lookupEnv: lookupEnv,
		now:       now,
	}
}
