package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// LanguageCode is an ISO 639-1 code from the supported language table.
type LanguageCode string

// Language pairs a code with its display label.
type Language struct {
	Code  LanguageCode `json:"value"`
	Label string       `json:"label"`
}

const (
	LanguageEnglish LanguageCode = "en"
	LanguageArabic  LanguageCode = "ar"
	LanguageFrench  LanguageCode = "fr"
	LanguageSpanish LanguageCode = "es"
	LanguageGerman  LanguageCode = "de"
)

// supportedLanguages is ordered; label matching walks it front to back.
var supportedLanguages = []Language{
	{Code: LanguageEnglish, Label: "English"},
	{Code: LanguageArabic, Label: "Arabic"},
	{Code: LanguageFrench, Label: "French"},
	{Code: LanguageSpanish, Label: "Spanish"},
	{Code: LanguageGerman, Label: "German"},
}

// SupportedLanguages returns a copy of the supported language table.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// LanguagesExcluding returns supported languages other than code, for picker lists.
func LanguagesExcluding(code LanguageCode) []Language {
	return lo.Filter(supportedLanguages, func(lang Language, _ int) bool {
		return lang.Code != code
	})
}

// IsSupported reports whether code is in the supported table.
func (c LanguageCode) IsSupported() bool {
	_, ok := LookupLanguage(c)
	return ok
}

// Label returns the display label or the raw code when unsupported.
func (c LanguageCode) Label() string {
	if lang, ok := LookupLanguage(c); ok {
		return lang.Label
	}
	return string(c)
}

// LookupLanguage finds a supported language by code.
func LookupLanguage(code LanguageCode) (Language, bool) {
	return lo.Find(supportedLanguages, func(lang Language) bool {
		return lang.Code == code
	})
}

// ParseLanguageCode normalizes a BCP 47 tag such as "fr-CA" to a supported base code.
func ParseLanguageCode(raw string) (LanguageCode, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty language code", ErrUnsupportedLanguage)
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, trimmed)
	}
	base, _ := tag.Base()

	code := LanguageCode(base.String())
	if !code.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, trimmed)
	}
	return code, nil
}

// MatchLanguageLabel returns the first supported language whose label occurs in text.
func MatchLanguageLabel(text string) (LanguageCode, bool) {
	lower := strings.ToLower(text)
	lang, ok := lo.Find(supportedLanguages, func(lang Language) bool {
		return strings.Contains(lower, strings.ToLower(lang.Label))
	})
	if !ok {
		return "", false
	}
	return lang.Code, true
}
