// Package cli defines the live-translator command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"live-translator/internal/bootstrap"
	"live-translator/internal/config"
	"live-translator/internal/domain"
	"live-translator/internal/logging"
	"live-translator/internal/policy"
	"live-translator/internal/server"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	assets     fs.FS
}

// NewRootCmd builds the root command; assets are the embedded desktop frontend, if any.
func NewRootCmd(assets fs.FS) *cobra.Command {
	opts := &options{assets: assets}

	root := &cobra.Command{
		Use:   "live-translator",
		Short: "Live two-pane translator with voice input and playback",
		Long: `live-translator translates text as you type.

Typing pauses are debounced, the source language is detected, and the text is
translated with Gemini. Voice input uses Whisper and playback uses ElevenLabs.

Without a subcommand the desktop window is opened.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "Settings file (.json or .yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv(logging.EnvLevel), "Log level: debug, info, warn, error")

	root.AddCommand(
		newDesktopCmd(opts),
		newServeCmd(opts),
		newTranslateCmd(opts),
		newDetectCmd(opts),
		newLanguagesCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree.
func Execute(assets fs.FS) error {
	return NewRootCmd(assets).Execute()
}

func newDesktopCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "desktop",
		Short: "Open the desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(opts)
		},
	}
}

func runDesktop(opts *options) error {
	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.NewWithAssets(opts.assets, opts.configPath, logger)
	if err != nil {
		return fmt.Errorf("bootstrap app: %w", err)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and websocket sessions",
		Long: `Serve the translation API over HTTP.

Routes:
  GET  /healthz
  GET  /api/languages
  POST /api/translate
  POST /api/detect-language
  POST /api/text-to-speech
  POST /api/speech-to-text
  GET  /api/session        websocket, one translator per connection`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, settings, services, err := loadServices(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr == "" {
				addr = settings.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(bootstrap.ServerConfig(settings), services, logger.Named("http"))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from settings)")
	return cmd
}

func newTranslateCmd(opts *options) *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text once and print the result",
		Long: `Translate text once and print the result to stdout.

Without --from the source language is detected. When the detected language is
the target language, the configured source becomes the target.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, settings, services, err := loadServices(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("text is empty")
			}

			pair, err := cliPair(settings, from, to)
			if err != nil {
				return err
			}

			timeout := requestTimeout(settings)
			if from == "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				detected, err := services.Detector.Detect(ctx, text)
				cancel()
				if err != nil {
					return fmt.Errorf("detect language: %w", err)
				}
				pair, err = policy.Resolve(detected, pair.Source, pair.Target)
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			translated, err := services.Translator.Translate(ctx, text, pair.Source, pair.Target)
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			logger.Debugw("translated", "source", pair.Source, "target", pair.Target)
			fmt.Fprintln(cmd.OutOrStdout(), translated)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source language (detected when empty)")
	cmd.Flags().StringVar(&to, "to", "", "Target language (default from settings)")
	return cmd
}

func newDetectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, settings, services, err := loadServices(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(settings))
			defer cancel()

			code, err := services.Detector.Detect(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("detect language: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, code.Label())
			return nil
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run: func(cmd *cobra.Command, args []string) {
			for _, lang := range domain.SupportedLanguages() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", lang.Code, lang.Label)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "live-translator version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// loadServices reads settings and credentials and builds provider clients.
func loadServices(opts *options) (*zap.SugaredLogger, domain.Settings, server.Services, error) {
	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return nil, domain.Settings{}, server.Services{}, err
	}

	settings, err := config.NewStore(opts.configPath).Load()
	if err != nil {
		return nil, domain.Settings{}, server.Services{}, fmt.Errorf("load settings: %w", err)
	}

	services, err := bootstrap.BuildServices(settings, config.LoadCredentials(nil), logger)
	if err != nil {
		return nil, domain.Settings{}, server.Services{}, err
	}
	return logger, settings, services, nil
}

// cliPair merges --from/--to over the configured pair.
func cliPair(settings domain.Settings, from, to string) (policy.Pair, error) {
	pair := policy.Pair{Source: settings.SourceLanguage, Target: settings.TargetLanguage}
	if from != "" {
		code, err := domain.ParseLanguageCode(from)
		if err != nil {
			return policy.Pair{}, fmt.Errorf("--from: %w", err)
		}
		pair.Source = code
	}
	if to != "" {
		code, err := domain.ParseLanguageCode(to)
		if err != nil {
			return policy.Pair{}, fmt.Errorf("--to: %w", err)
		}
		pair.Target = code
	}
	if pair.Source == pair.Target {
		return policy.Pair{}, fmt.Errorf("source and target are both %s", pair.Source)
	}
	return pair, nil
}

func requestTimeout(settings domain.Settings) time.Duration {
	if settings.RequestTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(settings.RequestTimeoutSec) * time.Second
}
