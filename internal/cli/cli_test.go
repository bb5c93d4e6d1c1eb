package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"live-translator/internal/config"
	"live-translator/internal/domain"
)

func TestCLIPair(t *testing.T) {
	settings := config.DefaultSettings()

	tests := []struct {
		name     string
		from, to string
		want     string
		wantErr  bool
	}{
		{name: "settings pair", want: "en->ar"},
		{name: "from override", from: "fr-CA", want: "fr->ar"},
		{name: "to override", to: "de", want: "en->de"},
		{name: "same language", from: "ar", wantErr: true},
		{name: "unsupported", to: "ja", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := cliPair(settings, tc.from, tc.to)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", pair)
				}
				return
			}
			if err != nil {
				t.Fatalf("cliPair() error = %v", err)
			}
			if got := string(pair.Source) + "->" + string(pair.Target); got != tc.want {
				t.Fatalf("pair = %s, want %s", got, tc.want)
			}
		})
	}

	if _, err := cliPair(settings, "", "xx"); !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestLanguagesCommand(t *testing.T) {
	cmd := NewRootCmd(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"languages"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 || lines[0] != "en\tEnglish" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "live-translator version dev") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestTranslateWithoutKeyFails(t *testing.T) {
	t.Setenv(config.EnvGoogleAPIKey, "")
	t.Setenv(config.EnvElevenLabsAPIKey, "")
	t.Setenv(config.EnvOpenAIAPIKey, "")

	cmd := NewRootCmd(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"translate", "--from", "en", "--to", "fr",
		"--config", filepath.Join(t.TempDir(), "settings.yaml"),
		"--log-level", "error",
		"hello",
	})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), config.EnvGoogleAPIKey) {
		t.Fatalf("error = %v", err)
	}
}
