// Package transcribe turns recorded voice input into source text.
package transcribe

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"
)

// MaxAudioBytes is the upload limit accepted by the transcription API.
const MaxAudioBytes = 25 << 20

// Stages reported through Request.OnStage.
const (
	StageValidating   = "validating"
	StageTranscribing = "transcribing"
)

// defaultFileNames maps accepted MIME types to the upload file name.
var defaultFileNames = map[string]string{
	"audio/webm":  "recording.webm",
	"video/webm":  "recording.webm",
	"audio/ogg":   "recording.ogg",
	"audio/wav":   "recording.wav",
	"audio/x-wav": "recording.wav",
	"audio/mpeg":  "recording.mp3",
	"audio/mp4":   "recording.m4a",
	"audio/x-m4a": "recording.m4a",
}

// Recognizer converts audio bytes to text.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Request contains one recorded audio blob and an optional stage callback.
type Request struct {
	Audio    []byte
	MimeType string
	Filename string
	OnStage  func(stage string)
}

// Result contains the transcript and basic timing.
type Result struct {
	Transcript string
	Filename   string
	Bytes      int
	Elapsed    time.Duration
}

// PipelineError is a stage-aware error.
type PipelineError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Pipeline validates recordings and forwards them to a Recognizer.
type Pipeline struct {
	recognizer Recognizer
	maxBytes   int
	now        func() time.Time
}

// NewPipeline constructs the production pipeline.
func NewPipeline(recognizer Recognizer) *Pipeline {
	return &Pipeline{
		recognizer: recognizer,
		maxBytes:   MaxAudioBytes,
		now:        time.Now,
	}
}

// Run validates the blob, transcribes it, and returns trimmed text.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	emitStage(req.OnStage, StageValidating)

	if p.recognizer == nil {
		return Result{}, &PipelineError{
			Stage:   StageValidating,
			Message: "speech recognition is not configured",
		}
	}
	if len(req.Audio) == 0 {
		return Result{}, &PipelineError{
			Stage:   StageValidating,
			Message: "recording is empty",
		}
	}
	if len(req.Audio) > p.maxBytes {
		return Result{}, &PipelineError{
			Stage:   StageValidating,
			Message: fmt.Sprintf("recording is %d bytes, limit is %d", len(req.Audio), p.maxBytes),
		}
	}

	mediaType, err := normalizeMimeType(req.MimeType)
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   StageValidating,
			Message: fmt.Sprintf("unsupported audio type: %q", req.MimeType),
			Err:     err,
		}
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = defaultFileNames[mediaType]
	}

	emitStage(req.OnStage, StageTranscribing)
	started := p.now()
	text, err := p.recognizer.Transcribe(ctx, req.Audio, filename)
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   StageTranscribing,
			Message: "speech recognition failed",
			Err:     err,
		}
	}

	return Result{
		Transcript: strings.TrimSpace(text),
		Filename:   filename,
		Bytes:      len(req.Audio),
		Elapsed:    p.now().Sub(started),
	}, nil
}

// AcceptedMimeTypes lists the audio types Run accepts.
func AcceptedMimeTypes() []string {
	out := make([]string, 0, len(defaultFileNames))
	for mediaType := range defaultFileNames {
		out = append(out, mediaType)
	}
	return out
}

// normalizeMimeType strips parameters such as codecs=opus.
func normalizeMimeType(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "audio/webm", nil
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", err
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := defaultFileNames[mediaType]; !ok {
		return "", fmt.Errorf("media type %s is not audio", mediaType)
	}
	return mediaType, nil
}

// emitStage forwards stage updates when callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// NewPipelineForTests constructs a pipeline with injectable limits and clock.
func NewPipelineForTests(recognizer Recognizer, maxBytes int, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		recognizer: recognizer,
		maxBytes:   maxBytes,
		now:        now,
	}
}
