package config

import (
	"os"
	"path/filepath"
	"testing"

	"live-translator/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.SourceLanguage != domain.LanguageEnglish || cfg.TargetLanguage != domain.LanguageArabic {
		t.Fatalf("pair = %s->%s, want en->ar", cfg.SourceLanguage, cfg.TargetLanguage)
	}
	if cfg.DebounceMs != 1000 {
		t.Fatalf("debounce = %d, want 1000", cfg.DebounceMs)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("gemini model = %q", cfg.GeminiModel)
	}
	if cfg.VoiceID == "" || cfg.ListenAddr == "" {
		t.Fatal("expected voice and listen address defaults")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

// TestStoreSaveAndLoadRoundTrip checks persisted settings fidelity for both formats.
func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	want := DefaultSettings()
	want.SourceLanguage = domain.LanguageFrench
	want.TargetLanguage = domain.LanguageGerman
	want.DebounceMs = 750
	want.DetectionProvider = DetectionAuto

	for _, name := range []string{"settings.json", "settings.yaml", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			store := NewStore(filepath.Join(t.TempDir(), "cfg", name))
			if err := store.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != want {
				t.Fatalf("settings = %+v, want %+v", got, want)
			}
		})
	}
}

func TestNewStoreSelectsFormat(t *testing.T) {
	if _, ok := NewStore("/tmp/a.YAML").(*YAMLStore); !ok {
		t.Fatal("expected YAML store for .YAML")
	}
	if _, ok := NewStore("/tmp/a.json").(*JSONStore); !ok {
		t.Fatal("expected JSON store for .json")
	}
}

// TestYAMLStorePartialFileKeepsDefaults checks fields missing from disk.
func TestYAMLStorePartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("targetLanguage: es\ndebounceMs: 400\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewYAMLStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.TargetLanguage != domain.LanguageSpanish || got.DebounceMs != 400 {
		t.Fatalf("settings = %+v", got)
	}
	if got.SourceLanguage != domain.LanguageEnglish || got.GeminiModel != DefaultSettings().GeminiModel {
		t.Fatalf("defaults lost: %+v", got)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

func TestLoadCredentials(t *testing.T) {
	env := map[string]string{
		EnvGoogleAPIKey: "  g-key ",
		EnvOpenAIAPIKey: "sk-1",
	}
	creds := LoadCredentials(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if creds.GoogleAPIKey != "g-key" || creds.OpenAIAPIKey != "sk-1" || creds.ElevenLabsAPIKey != "" {
		t.Fatalf("credentials = %+v", creds)
	}
}
