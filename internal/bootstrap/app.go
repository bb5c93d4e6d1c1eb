package bootstrap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"live-translator/internal/config"
	"live-translator/internal/diagnostics"
	"live-translator/internal/domain"
	"live-translator/internal/jobs"
	"live-translator/internal/orchestrator"
	"live-translator/internal/server"
	"live-translator/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// translationEventName is the runtime event carrying jobs.Event payloads.
const translationEventName = "translation:event"

const voiceRequestTimeout = 60 * time.Second

// App wires configuration, the translation orchestrator, and UI runtime callbacks.
type App struct {
	Store       config.Store
	Diagnostics domain.DiagnosticReport
	Logger      *zap.SugaredLogger

	assets        fs.FS
	checker       *diagnostics.Checker
	events        *jobs.EventBus
	buildServices func(domain.Settings) (server.Services, error)

	mu         sync.Mutex
	settings   domain.Settings
	services   server.Services
	translator *orchestrator.Orchestrator
	runtimeCtx context.Context
}

// New builds the application from the settings file at configPath.
func New(configPath string, logger *zap.SugaredLogger) (*App, error) {
	return NewWithAssets(nil, configPath, logger)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS, configPath string, logger *zap.SugaredLogger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if strings.TrimSpace(configPath) == "" {
		configPath = config.DefaultPath()
	}

	store := config.NewStore(configPath)
	creds := config.LoadCredentials(nil)
	app, err := newApp(store, diagnostics.NewChecker(), func(settings domain.Settings) (server.Services, error) {
		return BuildServices(settings, creds, logger)
	}, logger)
	if err != nil {
		return nil, err
	}
	app.assets = assets
	return app, nil
}

// newApp loads settings, runs diagnostics and starts the orchestrator.
func newApp(store config.Store, checker *diagnostics.Checker, build func(domain.Settings) (server.Services, error), logger *zap.SugaredLogger) (*App, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	a := &App{
		Store:         store,
		Logger:        logger,
		checker:       checker,
		events:        jobs.NewEventBus(1000),
		buildServices: build,
	}
	if checker != nil {
		a.Diagnostics = checker.Run(settings)
	}
	if err := a.applySettings(settings); err != nil {
		logger.Warnw("persisted settings rejected, starting with defaults", "error", err)
		if err := a.applySettings(config.DefaultSettings()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Live Translator",
		Width:       1100,
		Height:      720,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// Shutdown stops the orchestrator and drops the runtime context.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	a.runtimeCtx = nil
	translator := a.translator
	a.mu.Unlock()

	if translator != nil {
		translator.Close()
	}
}

// Publish stores event history and emits runtime push notifications.
// It is called by the orchestrator with its lock held.
func (a *App) Publish(event jobs.Event) jobs.Event {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, translationEventName, published)
	}
	return published
}

// NotifySourceText forwards one edit of the source pane.
func (a *App) NotifySourceText(text string) {
	a.current().Notify(text)
}

// CancelTranslation drops pending and in-flight work.
func (a *App) CancelTranslation() {
	a.current().Cancel()
}

// SetSourceLanguage picks the source language and retranslates.
func (a *App) SetSourceLanguage(code string) (domain.OrchestratorState, error) {
	translator := a.current()
	if err := translator.SetSourceLanguage(domain.LanguageCode(code)); err != nil {
		return translator.State(), err
	}
	return translator.State(), nil
}

// SetTargetLanguage picks the target language and retranslates.
func (a *App) SetTargetLanguage(code string) (domain.OrchestratorState, error) {
	translator := a.current()
	if err := translator.SetTargetLanguage(domain.LanguageCode(code)); err != nil {
		return translator.State(), err
	}
	return translator.State(), nil
}

// SwitchLanguages swaps the language pair and both pane texts.
func (a *App) SwitchLanguages() domain.OrchestratorState {
	translator := a.current()
	translator.SwitchLanguages()
	return translator.State()
}

// TranslatorState returns the current pane state.
func (a *App) TranslatorState() domain.OrchestratorState {
	return a.current().State()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetLanguages returns the supported language table.
func (a *App) GetLanguages() []domain.Language {
	return domain.SupportedLanguages()
}

// GetLanguagesExcluding returns picker options without the other side's language.
func (a *App) GetLanguagesExcluding(code string) []domain.Language {
	return domain.LanguagesExcluding(domain.LanguageCode(code))
}

// TranscribeAudio transcribes a base64 recording and feeds it into the source pane.
func (a *App) TranscribeAudio(audioBase64, mimeType string) (string, error) {
	voice := a.currentServices().Voice
	if voice == nil {
		return "", fmt.Errorf("voice input is not configured: set %s", config.EnvOpenAIAPIKey)
	}

	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", fmt.Errorf("decode recording: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceRequestTimeout)
	defer cancel()

	result, err := voice.Run(ctx, transcribe.Request{Audio: audio, MimeType: mimeType})
	if err != nil {
		a.Publish(jobs.Event{
			Type:      jobs.EventTypeError,
			ErrorKind: domain.ErrorKindSpeech,
			Message:   err.Error(),
		})
		return "", err
	}

	a.Logger.Debugw("voice input transcribed", "bytes", result.Bytes, "elapsed", result.Elapsed)
	if result.Transcript != "" {
		a.current().Notify(result.Transcript)
	}
	return result.Transcript, nil
}

// SpeakText returns base64 MP3 audio of text in the selected voice.
func (a *App) SpeakText(text string) (string, error) {
	a.mu.Lock()
	synth := a.services.Synthesizer
	voiceID := a.settings.VoiceID
	a.mu.Unlock()

	if synth == nil {
		return "", fmt.Errorf("text-to-speech is not configured: set %s", config.EnvElevenLabsAPIKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceRequestTimeout)
	defer cancel()

	audio, err := synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings normalizes and persists settings, then applies them and refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized, err := normalizeSettings(settings)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	if err := a.applySettings(normalized); err != nil {
		return domain.Settings{}, err
	}
	a.refreshDiagnosticsFromSettings(normalized)
	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// applySettings rebuilds providers and the orchestrator for settings. Pane
// texts carry over; so does a detected pair when settings keep the same pair.
func (a *App) applySettings(settings domain.Settings) error {
	services, err := a.buildServices(settings)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	translator, err := orchestrator.New(orchestrator.ConfigFromSettings(settings), services.Detector, services.Translator, a, a.Logger)
	if err != nil {
		return fmt.Errorf("create translator: %w", err)
	}

	a.mu.Lock()
	previous := a.translator
	previousSettings := a.settings
	a.mu.Unlock()

	if previous != nil {
		a.carryOver(previous.State(), previousSettings, settings, translator)
	}

	a.mu.Lock()
	previous = a.translator
	a.settings = settings
	a.services = services
	a.translator = translator
	a.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	state := translator.State()
	a.Publish(jobs.Event{
		Type:           jobs.EventTypeLanguages,
		SourceLanguage: state.SourceLanguage,
		TargetLanguage: state.TargetLanguage,
		Message:        "Settings applied",
	})
	return nil
}

// carryOver moves pane state from a replaced orchestrator into next and
// retranslates when the pair changed or work was still pending.
func (a *App) carryOver(prev domain.OrchestratorState, prevSettings, settings domain.Settings, next *orchestrator.Orchestrator) {
	samePair := prevSettings.SourceLanguage == settings.SourceLanguage && prevSettings.TargetLanguage == settings.TargetLanguage
	if samePair {
		if err := next.SetLanguages(prev.SourceLanguage, prev.TargetLanguage); err != nil {
			a.Logger.Warnw("previous language pair not restored", "source", prev.SourceLanguage, "target", prev.TargetLanguage, "error", err)
		}
	}
	next.Restore(prev.SourceText, prev.TranslatedText)

	if strings.TrimSpace(prev.SourceText) == "" {
		return
	}
	switch {
	case !samePair:
		if err := next.SetTargetLanguage(settings.TargetLanguage); err != nil {
			a.Logger.Warnw("retranslation after settings change failed", "error", err)
		}
	case prev.Status != domain.JobStatusIdle:
		next.Notify(prev.SourceText)
	}
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}

func (a *App) current() *orchestrator.Orchestrator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.translator
}

func (a *App) currentServices() server.Services {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.services
}

// normalizeSettings trims user inputs, canonicalizes language tags, and fills defaults.
func normalizeSettings(settings domain.Settings) (domain.Settings, error) {
	defaults := config.DefaultSettings()

	source, err := domain.ParseLanguageCode(string(settings.SourceLanguage))
	if err != nil {
		return domain.Settings{}, fmt.Errorf("source language: %w", err)
	}
	target, err := domain.ParseLanguageCode(string(settings.TargetLanguage))
	if err != nil {
		return domain.Settings{}, fmt.Errorf("target language: %w", err)
	}
	if source == target {
		return domain.Settings{}, errors.New("source and target language must differ")
	}
	settings.SourceLanguage = source
	settings.TargetLanguage = target

	settings.DetectionProvider = strings.ToLower(strings.TrimSpace(settings.DetectionProvider))
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&settings.DetectionProvider, defaults.DetectionProvider)
	fill(&settings.GeminiBaseURL, defaults.GeminiBaseURL)
	fill(&settings.GeminiModel, defaults.GeminiModel)
	fill(&settings.VoiceID, defaults.VoiceID)
	fill(&settings.TTSModel, defaults.TTSModel)
	fill(&settings.STTBaseURL, defaults.STTBaseURL)
	fill(&settings.STTModel, defaults.STTModel)
	fill(&settings.ListenAddr, defaults.ListenAddr)

	if settings.DebounceMs <= 0 {
		settings.DebounceMs = defaults.DebounceMs
	}
	if settings.RequestTimeoutSec <= 0 {
		settings.RequestTimeoutSec = defaults.RequestTimeoutSec
	}
	return settings, nil
}
