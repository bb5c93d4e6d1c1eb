package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"live-translator/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		RequestsPerSecond: 1000,
		Burst:             10,
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func answer(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	body := `{"candidates":[{"content":{"parts":[{"text":` + quote(text) + `}]}}]}`
	_, _ = io.WriteString(w, body)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestTranslateSendsPrompt(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		gotPrompt = gjson.GetBytes(body, "contents.0.parts.0.text").String()
		answer(w, "  Bonjour  \n")
	})

	got, err := client.Translate(context.Background(), "Hello", domain.LanguageEnglish, domain.LanguageFrench)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Bonjour" {
		t.Fatalf("Translate() = %q, want Bonjour", got)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
	want := "Translate this text professionally, don't send any extras, just the translated text en to fr: Hello"
	if gotPrompt != want {
		t.Fatalf("prompt = %q, want %q", gotPrompt, want)
	}
}

func TestDetectMatchesLabel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		answer(w, "The language of this text is French.")
	})

	got, err := client.Detect(context.Background(), "Bonjour")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != domain.LanguageFrench {
		t.Fatalf("Detect() = %q, want fr", got)
	}
}

func TestDetectUnknownLanguage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		answer(w, "This looks like Japanese.")
	})

	_, err := client.Detect(context.Background(), "こんにちは")
	if !errors.Is(err, domain.ErrDetection) {
		t.Fatalf("Detect() error = %v, want detection error", err)
	}
}

func TestServiceErrorCarriesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exhausted"}}`)
	})

	_, err := client.Translate(context.Background(), "Hello", domain.LanguageEnglish, domain.LanguageArabic)
	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
	if svcErr.StatusCode != http.StatusTooManyRequests || svcErr.Kind != domain.ErrorKindTranslation {
		t.Fatalf("service error = %+v", svcErr)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("error %q missing upstream message", err.Error())
	}
}

func TestMissingCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := client.Translate(context.Background(), "Hello", domain.LanguageEnglish, domain.LanguageArabic)
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("error = %v, want block reason", err)
	}
}

func TestContextDeadlineIsTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Translate(ctx, "Hello", domain.LanguageEnglish, domain.LanguageArabic)
	if kind := domain.KindOf(err, domain.ErrorKindTranslation); kind != domain.ErrorKindTimeout {
		t.Fatalf("kind = %q (err %v), want timeout", kind, err)
	}
}
