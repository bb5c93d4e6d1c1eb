package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"live-translator/internal/domain"
	"live-translator/internal/transcribe"
)

type translateRequest struct {
	Text           string              `json:"text"`
	SourceLanguage domain.LanguageCode `json:"sourceLanguage"`
	TargetLanguage domain.LanguageCode `json:"targetLanguage"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type speakRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.count(),
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.SupportedLanguages())
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required fields"))
	}
	if strings.TrimSpace(req.Text) == "" || req.SourceLanguage == "" || req.TargetLanguage == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required fields"))
	}
	if !req.SourceLanguage.IsSupported() || !req.TargetLanguage.IsSupported() {
		return c.JSON(http.StatusBadRequest, errorBody("Unsupported language"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.RequestTimeout)
	defer cancel()

	translated, err := s.services.Translator.Translate(ctx, req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.logger.Errorw("translation error", "source", req.SourceLanguage, "target", req.TargetLanguage, "error", err)
		return c.JSON(statusFor(err), errorBody("Translation service error"))
	}
	return c.JSON(http.StatusOK, map[string]string{"translatedText": translated})
}

func (s *Server) handleDetect(c echo.Context) error {
	var req detectRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required 'text' field"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.RequestTimeout)
	defer cancel()

	code, err := s.services.Detector.Detect(ctx, req.Text)
	if err != nil {
		s.logger.Errorw("language detection error", "error", err)
		return c.JSON(statusFor(err), errorBody("Language detection service error"))
	}
	return c.JSON(http.StatusOK, map[string]domain.LanguageCode{"languageCode": code})
}

func (s *Server) handleTextToSpeech(c echo.Context) error {
	if s.services.Synthesizer == nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody("Text-to-speech is not configured"))
	}

	var req speakRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required 'text' field"))
	}
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = s.cfg.VoiceID
	}

	audio, err := s.services.Synthesizer.Synthesize(c.Request().Context(), req.Text, voiceID)
	if err != nil {
		s.logger.Errorw("text-to-speech error", "voiceID", voiceID, "error", err)
		return c.JSON(statusFor(err), errorBody("Failed to convert text to speech."))
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

func (s *Server) handleSpeechToText(c echo.Context) error {
	if s.services.Voice == nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody("Speech-to-text is not configured"))
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required 'file' field"))
	}
	file, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Cannot read uploaded file"))
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, transcribe.MaxAudioBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Cannot read uploaded file"))
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	result, err := s.services.Voice.Run(c.Request().Context(), transcribe.Request{
		Audio:    audio,
		MimeType: mimeType,
		Filename: header.Filename,
	})
	if err != nil {
		var pErr *transcribe.PipelineError
		if errors.As(err, &pErr) && pErr.Stage == transcribe.StageValidating {
			return c.JSON(http.StatusBadRequest, errorBody(pErr.Message))
		}
		s.logger.Errorw("speech-to-text error", "error", err)
		return c.JSON(statusFor(err), errorBody("Speech recognition service error"))
	}
	return c.JSON(http.StatusOK, map[string]string{"text": result.Transcript})
}

// statusFor maps collaborator failures onto HTTP status codes.
func statusFor(err error) int {
	switch domain.KindOf(err, domain.ErrorKindNone) {
	case domain.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	case domain.ErrorKindUnsupportedLanguage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
