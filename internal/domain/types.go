package domain

// JobStatus tracks each orchestrator stage for the current translation job.
type JobStatus string

const (
	JobStatusIdle        JobStatus = "idle"
	JobStatusDebouncing  JobStatus = "debouncing"
	JobStatusDetecting   JobStatus = "detecting"
	JobStatusTranslating JobStatus = "translating"
	JobStatusFailed      JobStatus = "failed"
)

// JobOrigin records what created a translation job.
type JobOrigin string

const (
	// JobOriginInput marks jobs fired by the input debouncer.
	JobOriginInput JobOrigin = "input"
	// JobOriginLanguage marks jobs started by an explicit language change.
	JobOriginLanguage JobOrigin = "language"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	SourceLanguage    LanguageCode `json:"sourceLanguage" yaml:"sourceLanguage"`
	TargetLanguage    LanguageCode `json:"targetLanguage" yaml:"targetLanguage"`
	DebounceMs        int          `json:"debounceMs" yaml:"debounceMs"`
	RequestTimeoutSec int          `json:"requestTimeoutSec" yaml:"requestTimeoutSec"`
	DetectionProvider string       `json:"detectionProvider" yaml:"detectionProvider"`
	GeminiBaseURL     string       `json:"geminiBaseUrl" yaml:"geminiBaseUrl"`
	GeminiModel       string       `json:"geminiModel" yaml:"geminiModel"`
	VoiceID           string       `json:"voiceId" yaml:"voiceId"`
	TTSModel          string       `json:"ttsModel" yaml:"ttsModel"`
	STTBaseURL        string       `json:"sttBaseUrl" yaml:"sttBaseUrl"`
	STTModel          string       `json:"sttModel" yaml:"sttModel"`
	ListenAddr        string       `json:"listenAddr" yaml:"listenAddr"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// TranslationJob is one immutable unit of translation work.
type TranslationJob struct {
	ID             string       `json:"id"`
	SourceText     string       `json:"sourceText"`
	SourceLanguage LanguageCode `json:"sourceLanguage"`
	TargetLanguage LanguageCode `json:"targetLanguage"`
	Origin         JobOrigin    `json:"origin"`
}

// OrchestratorState is a snapshot of the translation pane state.
type OrchestratorState struct {
	Status         JobStatus    `json:"status"`
	Busy           bool         `json:"busy"`
	LastError      ErrorKind    `json:"lastError,omitempty"`
	SourceLanguage LanguageCode `json:"sourceLanguage"`
	TargetLanguage LanguageCode `json:"targetLanguage"`
	SourceText     string       `json:"sourceText"`
	TranslatedText string       `json:"translatedText"`
	JobID          string       `json:"jobId,omitempty"`
}
