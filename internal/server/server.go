// Package server exposes the translator over HTTP and websocket sessions.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"live-translator/internal/orchestrator"
	"live-translator/internal/transcribe"
)

// Synthesizer converts text to MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// VoiceInput transcribes a recorded audio blob.
type VoiceInput interface {
	Run(ctx context.Context, req transcribe.Request) (transcribe.Result, error)
}

// Services are the collaborators behind the routes. Synthesizer and Voice may
// be nil, in which case their routes answer 503.
type Services struct {
	Detector    orchestrator.Detector
	Translator  orchestrator.Translator
	Synthesizer Synthesizer
	Voice       VoiceInput
}

// Config controls per-session orchestrators and request timeouts.
type Config struct {
	Orchestrator   orchestrator.Config
	RequestTimeout time.Duration
	VoiceID        string
}

// Server owns the echo instance and the active websocket sessions.
type Server struct {
	cfg      Config
	services Services
	logger   *zap.SugaredLogger
	echo     *echo.Echo
	upgrader websocket.Upgrader
	sessions *sessionRegistry
}

// New wires middleware and routes.
func New(cfg Config, services Services, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = orchestrator.DefaultRequestTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:      cfg,
		services: services,
		logger:   logger,
		echo:     e,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: newSessionRegistry(),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warnw("request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			logger.Debugw("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{Limit: "26M"}))

	e.GET("/healthz", s.handleHealth)
	api := e.Group("/api")
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.handleTranslate)
	api.POST("/detect-language", s.handleDetect)
	api.POST("/text-to-speech", s.handleTextToSpeech)
	api.POST("/speech-to-text", s.handleSpeechToText)
	api.GET("/session", s.handleSession)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("http server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.sessions.closeAll()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Infow("http server stopped")
	return nil
}
