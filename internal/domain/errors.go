package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced as orchestrator LastError.
type ErrorKind string

const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindDetection           ErrorKind = "detection"
	ErrorKindTranslation         ErrorKind = "translation"
	ErrorKindUnsupportedLanguage ErrorKind = "unsupported_language"
	ErrorKindTimeout             ErrorKind = "timeout"
	ErrorKindCancelled           ErrorKind = "cancelled"
	ErrorKindSpeech              ErrorKind = "speech"
)

var (
	ErrDetection           = errors.New("language detection failed")
	ErrTranslation         = errors.New("translation failed")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrTimeout             = errors.New("request timed out")
	ErrCancelled           = errors.New("job cancelled")
	ErrSpeech              = errors.New("speech service failed")
)

// ServiceError is a collaborator failure tagged with its error kind.
type ServiceError struct {
	Kind       ErrorKind `json:"kind"`
	Op         string    `json:"op"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	Err        error     `json:"-"`
}

// Error formats service failures for logs and UI.
func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel error belonging to the service error kind.
func (e *ServiceError) Is(target error) bool {
	if e == nil {
		return false
	}
	return sentinelFor(e.Kind) == target
}

// KindOf maps an error to its ErrorKind; context errors win over service tags.
// Unclassified errors map to fallback.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return ErrorKindTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, ErrCancelled):
		return ErrorKindCancelled
	case errors.Is(err, ErrUnsupportedLanguage):
		return ErrorKindUnsupportedLanguage
	case errors.Is(err, ErrDetection):
		return ErrorKindDetection
	case errors.Is(err, ErrTranslation):
		return ErrorKindTranslation
	case errors.Is(err, ErrSpeech):
		return ErrorKindSpeech
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Kind != ErrorKindNone {
		return svcErr.Kind
	}
	return fallback
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case ErrorKindDetection:
		return ErrDetection
	case ErrorKindTranslation:
		return ErrTranslation
	case ErrorKindUnsupportedLanguage:
		return ErrUnsupportedLanguage
	case ErrorKindTimeout:
		return ErrTimeout
	case ErrorKindCancelled:
		return ErrCancelled
	case ErrorKindSpeech:
		return ErrSpeech
	default:
		return nil
	}
}
