package detect

import (
	"context"
	"errors"
	"testing"

	"live-translator/internal/domain"
)

// fakeDetector returns fixed output and counts calls.
type fakeDetector struct {
	code  domain.LanguageCode
	err   error
	calls int
}

// Detect returns the configured result.
func (f *fakeDetector) Detect(context.Context, string) (domain.LanguageCode, error) {
	f.calls++
	return f.code, f.err
}

func TestLocalDetector(t *testing.T) {
	detector := NewLocalDetector()

	tests := []struct {
		text string
		want domain.LanguageCode
	}{
		{text: "Hello, how are you doing today? The weather is lovely.", want: domain.LanguageEnglish},
		{text: "Bonjour, comment allez-vous aujourd'hui ? Il fait très beau.", want: domain.LanguageFrench},
		{text: "Hola, ¿cómo estás hoy? Hace muy buen tiempo en la ciudad.", want: domain.LanguageSpanish},
		{text: "Guten Morgen, wie geht es Ihnen heute? Das Wetter ist schön.", want: domain.LanguageGerman},
		{text: "مرحبا، كيف حالك اليوم؟ الطقس جميل جدا.", want: domain.LanguageArabic},
	}

	for _, tt := range tests {
		got, err := detector.Detect(context.Background(), tt.text)
		if err != nil {
			t.Fatalf("Detect(%q) error = %v", tt.text, err)
		}
		if got != tt.want {
			t.Fatalf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLocalDetectorRejectsBlank(t *testing.T) {
	_, err := NewLocalDetector().Detect(context.Background(), "   ")
	if !errors.Is(err, domain.ErrDetection) {
		t.Fatalf("error = %v, want detection error", err)
	}
}

func TestChainFallsBack(t *testing.T) {
	first := &fakeDetector{err: errors.New("upstream down")}
	second := &fakeDetector{code: domain.LanguageGerman}
	chain := NewChain(nil, first, nil, second)

	got, err := chain.Detect(context.Background(), "Hallo")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != domain.LanguageGerman {
		t.Fatalf("Detect() = %q, want de", got)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestChainJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	chain := NewChain(nil, &fakeDetector{err: boom}, &fakeDetector{err: errors.New("bust")})

	_, err := chain.Detect(context.Background(), "text")
	if !errors.Is(err, domain.ErrDetection) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want joined detection error", err)
	}
}

func TestChainStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := &fakeDetector{code: domain.LanguageEnglish}
	chain := NewChain(nil, &fakeDetector{err: context.Canceled}, second)

	if _, err := chain.Detect(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if second.calls != 0 {
		t.Fatal("second detector should not run after cancellation")
	}
}
