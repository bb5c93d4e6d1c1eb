// Package orchestrator turns source-text edits into debounced, single-flight
// detect+translate jobs and keeps the source/target pane state consistent.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"live-translator/internal/debounce"
	"live-translator/internal/domain"
	"live-translator/internal/jobs"
	"live-translator/internal/policy"
)

// DefaultRequestTimeout bounds each detect or translate call.
const DefaultRequestTimeout = 10 * time.Second

// Detector identifies the language of source text.
type Detector interface {
	Detect(ctx context.Context, text string) (domain.LanguageCode, error)
}

// Translator converts text between two supported languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.LanguageCode) (string, error)
}

// Publisher receives orchestrator events. Publish is called with the
// orchestrator lock held and must not call back into the orchestrator.
type Publisher interface {
	Publish(event jobs.Event) jobs.Event
}

// Config holds timing and the initial language pair.
type Config struct {
	DebounceDelay  time.Duration
	RequestTimeout time.Duration
	SourceLanguage domain.LanguageCode
	TargetLanguage domain.LanguageCode
}

// DefaultConfig returns the English to Arabic pair with default timings.
func DefaultConfig() Config {
	return Config{
		DebounceDelay:  debounce.DefaultDelay,
		RequestTimeout: DefaultRequestTimeout,
		SourceLanguage: domain.LanguageEnglish,
		TargetLanguage: domain.LanguageArabic,
	}
}

// ConfigFromSettings maps persisted settings onto orchestrator config.
func ConfigFromSettings(settings domain.Settings) Config {
	cfg := DefaultConfig()
	if settings.DebounceMs > 0 {
		cfg.DebounceDelay = time.Duration(settings.DebounceMs) * time.Millisecond
	}
	if settings.RequestTimeoutSec > 0 {
		cfg.RequestTimeout = time.Duration(settings.RequestTimeoutSec) * time.Second
	}
	if settings.SourceLanguage != "" {
		cfg.SourceLanguage = settings.SourceLanguage
	}
	if settings.TargetLanguage != "" {
		cfg.TargetLanguage = settings.TargetLanguage
	}
	return cfg
}

// Orchestrator owns the debounce timer, the active job slot and pane state.
type Orchestrator struct {
	detector   Detector
	translator Translator
	events     Publisher
	logger     *zap.SugaredLogger
	timeout    time.Duration

	debouncer *debounce.Debouncer
	guard     *jobs.Guard
	machine   *jobs.Manager

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu             sync.Mutex
	source         domain.LanguageCode
	target         domain.LanguageCode
	sourceText     string
	translatedText string
	lastError      domain.ErrorKind
	closed         bool
	// armed is the debounce generation allowed to fire; zero when none is.
	armed uint64
}

// New validates the language pair and builds an idle orchestrator.
func New(cfg Config, detector Detector, translator Translator, events Publisher, logger *zap.SugaredLogger) (*Orchestrator, error) {
	if detector == nil || translator == nil {
		return nil, errors.New("detector and translator are required")
	}
	if err := validatePair(cfg.SourceLanguage, cfg.TargetLanguage); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if events == nil {
		events = discardPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		detector:   detector,
		translator: translator,
		events:     events,
		logger:     logger,
		timeout:    cfg.RequestTimeout,
		guard:      jobs.NewGuard(),
		machine:    jobs.NewManager(),
		baseCtx:    ctx,
		stop:       stop,
		source:     cfg.SourceLanguage,
		target:     cfg.TargetLanguage,
	}
	o.debouncer = debounce.New(cfg.DebounceDelay, debounce.Handlers{
		Fire: o.fire,
	})
	return o, nil
}

// Notify records new source text and re-arms the debounce timer. Any job in
// flight is superseded by the newer text.
func (o *Orchestrator) Notify(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.guard.Cancel()
	o.sourceText = text

	gen := o.debouncer.Notify(text)
	if strings.TrimSpace(text) == "" {
		o.armed = 0
		o.clearLocked()
		return
	}
	o.armed = gen
	o.machine.Arm()
	o.publishStatusLocked("", domain.JobStatusDebouncing, "Waiting for typing to pause")
}

// Cancel drops the pending debounce timer and the in-flight job.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelLocked("Translation cancelled")
}

// SetSourceLanguage picks the source language and retranslates current text.
func (o *Orchestrator) SetSourceLanguage(code domain.LanguageCode) error {
	return o.changeLanguage(code, true)
}

// SetTargetLanguage picks the target language and retranslates current text.
func (o *Orchestrator) SetTargetLanguage(code domain.LanguageCode) error {
	return o.changeLanguage(code, false)
}

// SetLanguages replaces the pair without starting a job.
func (o *Orchestrator) SetLanguages(source, target domain.LanguageCode) error {
	if err := validatePair(source, target); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.source, o.target = source, target
	o.publishLanguagesLocked("")
	return nil
}

// SwitchLanguages swaps both the language pair and the pane texts.
func (o *Orchestrator) SwitchLanguages() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelLocked("")
	o.source, o.target = o.target, o.source
	o.sourceText, o.translatedText = o.translatedText, o.sourceText
	o.lastError = domain.ErrorKindNone

	o.publishLanguagesLocked("")
	o.events.Publish(jobs.Event{
		Type:           jobs.EventTypeText,
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		SourceText:     o.sourceText,
		TranslatedText: o.translatedText,
		Message:        "Languages switched",
	})
}

// Restore seeds both pane texts without starting a job.
func (o *Orchestrator) Restore(sourceText, translatedText string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.sourceText, o.translatedText = sourceText, translatedText
	o.events.Publish(jobs.Event{
		Type:           jobs.EventTypeText,
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		SourceText:     o.sourceText,
		TranslatedText: o.translatedText,
		Message:        "Text restored",
	})
}

// State returns a snapshot of the orchestrator.
func (o *Orchestrator) State() domain.OrchestratorState {
	o.mu.Lock()
	defer o.mu.Unlock()

	job := o.machine.Current()
	return domain.OrchestratorState{
		Status:         job.Status,
		Busy:           o.machine.IsRunning(),
		LastError:      o.lastError,
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		SourceText:     o.sourceText,
		TranslatedText: o.translatedText,
		JobID:          job.ID,
	}
}

// Close cancels all work and waits for job goroutines to exit.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.cancelLocked("")
	o.mu.Unlock()

	o.stop()
	o.wg.Wait()
}

// fire runs on the debounce timer goroutine. A timer that expired while
// Cancel or a language change held the lock carries a disarmed generation.
func (o *Orchestrator) fire(text string, gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || gen != o.armed || text != o.sourceText {
		return
	}
	o.armed = 0

	h := o.guard.Begin(o.baseCtx)
	if err := o.machine.Start(h.ID(), domain.JobStatusDetecting); err != nil {
		o.logger.Errorw("failed to start detection job", "error", err)
		o.guard.End(h)
		return
	}
	o.publishStatusLocked(h.ID(), domain.JobStatusDetecting, "Detecting language")
	o.logger.Debugw("translation job started", "jobID", h.ID(), "origin", domain.JobOriginInput, "chars", len(text))

	o.wg.Add(1)
	go o.runDetected(h, text)
}

// clearLocked empties the target pane after the source text became blank.
func (o *Orchestrator) clearLocked() {
	o.guard.Cancel()
	o.machine.Reset()
	o.translatedText = ""
	o.lastError = domain.ErrorKindNone
	o.events.Publish(jobs.Event{
		Type:    jobs.EventTypeClear,
		Status:  domain.JobStatusIdle,
		Message: "Source text cleared",
	})
}

func (o *Orchestrator) changeLanguage(code domain.LanguageCode, isSource bool) error {
	if !code.IsSupported() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, code)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disarmLocked()

	if isSource {
		if code == o.target {
			o.target = o.source
		}
		o.source = code
	} else {
		if code == o.source {
			o.source = o.target
		}
		o.target = code
	}

	if o.closed || strings.TrimSpace(o.sourceText) == "" {
		o.publishLanguagesLocked("")
		return nil
	}

	h := o.guard.Begin(o.baseCtx)
	job := domain.TranslationJob{
		ID:             h.ID(),
		SourceText:     o.sourceText,
		SourceLanguage: o.source,
		TargetLanguage: o.target,
		Origin:         domain.JobOriginLanguage,
	}
	if err := o.machine.Start(job.ID, domain.JobStatusTranslating); err != nil {
		o.guard.End(h)
		return err
	}
	o.publishLanguagesLocked(job.ID)
	o.publishStatusLocked(job.ID, domain.JobStatusTranslating, "Translating")
	o.logger.Debugw("translation job started", "jobID", job.ID, "origin", job.Origin, "source", job.SourceLanguage, "target", job.TargetLanguage)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.guard.End(h)
		o.translate(h, job)
	}()
	return nil
}

// runDetected executes detection, language resolution and translation for h.
func (o *Orchestrator) runDetected(h *jobs.Handle, text string) {
	defer o.wg.Done()
	defer o.guard.End(h)

	detected, detectErr := o.detect(h, text)
	if o.guard.IsCancelled(h) {
		o.logger.Debugw("dropping superseded detection", "jobID", h.ID())
		return
	}

	var job domain.TranslationJob
	committed := o.commit(h, func() {
		if detectErr != nil {
			o.logger.Warnw("language detection failed, keeping source language",
				"jobID", h.ID(), "source", o.source, "kind", domain.KindOf(detectErr, domain.ErrorKindDetection), "error", detectErr)
			detected = o.source
		}

		pair, err := policy.Resolve(detected, o.source, o.target)
		if err != nil {
			o.failLocked(h, err, domain.ErrorKindUnsupportedLanguage)
			return
		}

		o.source, o.target = pair.Source, pair.Target
		job = domain.TranslationJob{
			ID:             h.ID(),
			SourceText:     text,
			SourceLanguage: pair.Source,
			TargetLanguage: pair.Target,
			Origin:         domain.JobOriginInput,
		}
		if err := o.machine.Transition(domain.JobStatusTranslating); err != nil {
			o.logger.Errorw("invalid job transition", "jobID", h.ID(), "error", err)
		}
		o.publishLanguagesLocked(h.ID())
		o.publishStatusLocked(h.ID(), domain.JobStatusTranslating, "Translating")
	})
	if !committed || job.ID == "" {
		return
	}

	o.translate(h, job)
}

func (o *Orchestrator) detect(h *jobs.Handle, text string) (domain.LanguageCode, error) {
	ctx, cancel := context.WithTimeout(h.Context(), o.timeout)
	defer cancel()

	code, err := o.detector.Detect(ctx, text)
	if err == nil {
		return code, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("detect language: %w", domain.ErrTimeout)
	}
	return "", err
}

func (o *Orchestrator) translate(h *jobs.Handle, job domain.TranslationJob) {
	ctx, cancel := context.WithTimeout(h.Context(), o.timeout)
	defer cancel()

	translated, err := o.translator.Translate(ctx, job.SourceText, job.SourceLanguage, job.TargetLanguage)
	if err != nil {
		kind := domain.KindOf(err, domain.ErrorKindTranslation)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = domain.ErrorKindTimeout
		}
		if kind == domain.ErrorKindCancelled {
			o.logger.Debugw("dropping superseded translation", "jobID", job.ID)
			return
		}
		if !o.commit(h, func() { o.failLocked(h, err, kind) }) {
			o.logger.Debugw("dropping failure from superseded job", "jobID", job.ID, "error", err)
		}
		return
	}

	applied := o.commit(h, func() {
		o.translatedText = translated
		o.lastError = domain.ErrorKindNone
		if err := o.machine.Transition(domain.JobStatusIdle); err != nil {
			o.logger.Errorw("invalid job transition", "jobID", job.ID, "error", err)
		}
		o.events.Publish(jobs.Event{
			JobID:          job.ID,
			Type:           jobs.EventTypeResult,
			Status:         domain.JobStatusIdle,
			SourceLanguage: job.SourceLanguage,
			TargetLanguage: job.TargetLanguage,
			SourceText:     job.SourceText,
			TranslatedText: translated,
			Message:        "Translation completed",
		})
	})
	if !applied {
		o.logger.Debugw("dropping superseded translation", "jobID", job.ID)
		return
	}
	o.logger.Infow("translation completed", "jobID", job.ID, "source", job.SourceLanguage, "target", job.TargetLanguage, "origin", job.Origin)
}

// commit applies fn under the orchestrator lock only while h is active.
func (o *Orchestrator) commit(h *jobs.Handle, fn func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.guard.Commit(h, fn)
}

// failLocked records the error and walks Failed back to Idle.
func (o *Orchestrator) failLocked(h *jobs.Handle, err error, kind domain.ErrorKind) {
	o.lastError = kind
	if terr := o.machine.Transition(domain.JobStatusFailed); terr != nil {
		o.logger.Errorw("invalid job transition", "jobID", h.ID(), "error", terr)
	}
	o.publishStatusLocked(h.ID(), domain.JobStatusFailed, "Translation failed")
	o.events.Publish(jobs.Event{
		JobID:     h.ID(),
		Type:      jobs.EventTypeError,
		Status:    domain.JobStatusFailed,
		ErrorKind: kind,
		Message:   err.Error(),
	})
	if terr := o.machine.Transition(domain.JobStatusIdle); terr != nil {
		o.logger.Errorw("invalid job transition", "jobID", h.ID(), "error", terr)
	}
	o.publishStatusLocked(h.ID(), domain.JobStatusIdle, "Idle")
	o.logger.Warnw("translation job failed", "jobID", h.ID(), "kind", kind, "error", err)
}

// disarmLocked stops the debounce timer, including one already expiring.
func (o *Orchestrator) disarmLocked() {
	o.debouncer.Cancel()
	o.armed = 0
}

func (o *Orchestrator) cancelLocked(message string) {
	o.disarmLocked()
	o.guard.Cancel()
	if err := o.machine.Cancel(); err != nil {
		return
	}
	if message != "" {
		o.publishStatusLocked("", domain.JobStatusIdle, message)
	}
}

func (o *Orchestrator) publishStatusLocked(jobID string, status domain.JobStatus, message string) {
	o.events.Publish(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

func (o *Orchestrator) publishLanguagesLocked(jobID string) {
	o.events.Publish(jobs.Event{
		JobID:          jobID,
		Type:           jobs.EventTypeLanguages,
		SourceLanguage: o.source,
		TargetLanguage: o.target,
	})
}

func validatePair(source, target domain.LanguageCode) error {
	if !source.IsSupported() {
		return fmt.Errorf("source language: %w: %q", domain.ErrUnsupportedLanguage, source)
	}
	if !target.IsSupported() {
		return fmt.Errorf("target language: %w: %q", domain.ErrUnsupportedLanguage, target)
	}
	if source == target {
		return fmt.Errorf("source and target language are both %q", source)
	}
	return nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(event jobs.Event) jobs.Event { return event }
