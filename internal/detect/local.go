// Package detect provides offline and chained language detectors.
package detect

import (
	"context"
	"strings"

	"github.com/pemistahl/lingua-go"

	"live-translator/internal/domain"
)

// codes maps lingua languages onto the supported table.
var codes = map[lingua.Language]domain.LanguageCode{
	lingua.English: domain.LanguageEnglish,
	lingua.Arabic:  domain.LanguageArabic,
	lingua.French:  domain.LanguageFrench,
	lingua.Spanish: domain.LanguageSpanish,
	lingua.German:  domain.LanguageGerman,
}

// LocalDetector identifies languages offline with lingua n-gram models.
// Building it is expensive; reuse the instance.
type LocalDetector struct {
	detector lingua.LanguageDetector
}

// NewLocalDetector restricts lingua to the supported languages.
func NewLocalDetector() *LocalDetector {
	languages := make([]lingua.Language, 0, len(codes))
	for lang := range codes {
		languages = append(languages, lang)
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()
	return &LocalDetector{detector: detector}
}

// Detect returns the most likely supported language of text.
func (d *LocalDetector) Detect(ctx context.Context, text string) (domain.LanguageCode, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := strings.TrimSpace(text)
	if clean == "" {
		return "", &domain.ServiceError{Kind: domain.ErrorKindDetection, Op: "detect", Message: "empty text"}
	}

	lang, ok := d.detector.DetectLanguageOf(clean)
	if !ok {
		return "", &domain.ServiceError{Kind: domain.ErrorKindDetection, Op: "detect", Message: "language is ambiguous"}
	}
	code, ok := codes[lang]
	if !ok {
		return "", &domain.ServiceError{Kind: domain.ErrorKindDetection, Op: "detect", Message: "unmapped language " + lang.String()}
	}
	return code, nil
}
