// Package policy decides which language pair a translation job submits.
package policy

import (
	"fmt"

	"live-translator/internal/domain"
)

// Pair is the resolved source/target submitted for translation.
type Pair struct {
	Source domain.LanguageCode `json:"source"`
	Target domain.LanguageCode `json:"target"`
}

// Resolve picks the submitted pair from a freshly detected language.
// The source always becomes detected; when detected collides with the current
// target the previous source takes the target slot.
func Resolve(detected, currentSource, currentTarget domain.LanguageCode) (Pair, error) {
	for _, code := range []domain.LanguageCode{detected, currentSource, currentTarget} {
		if !code.IsSupported() {
			return Pair{}, fmt.Errorf("resolve language pair: %w: %q", domain.ErrUnsupportedLanguage, code)
		}
	}

	target := currentTarget
	if detected == currentTarget {
		target = currentSource
	}

	return Pair{Source: detected, Target: target}, nil
}
