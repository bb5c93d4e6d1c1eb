package bootstrap

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"live-translator/internal/domain"
	"live-translator/internal/speech"
)

var voiceCatalog = []domain.VoiceOption{
	{
		ID:          speech.DefaultVoiceID,
		Name:        "Default",
		Description: "Multilingual voice used when nothing else is selected.",
	},
	{
		ID:          "21m00Tcm4TlvDq8ikWAM",
		Name:        "Rachel",
		Accent:      "American",
		Description: "Calm, clear narration.",
	},
	{
		ID:          "EXAVITQu4vr4xnSDxMaL",
		Name:        "Sarah",
		Accent:      "American",
		Description: "Soft, young voice.",
	},
	{
		ID:          "ErXwobaYiN019PkySvjV",
		Name:        "Antoni",
		Accent:      "American",
		Description: "Well-rounded male voice.",
	},
	{
		ID:          "pNInz6obpgDQGcFmaJgB",
		Name:        "Adam",
		Accent:      "American",
		Description: "Deep narration voice.",
	},
	{
		ID:          "TxGEqnHWrfWFTfGW9XjX",
		Name:        "Josh",
		Accent:      "American",
		Description: "Deep, young male voice.",
	},
}

// GetVoices returns the built-in voice presets with the selected one marked.
func (a *App) GetVoices() []domain.VoiceOption {
	a.mu.Lock()
	selected := a.settings.VoiceID
	a.mu.Unlock()

	return markSelectedVoice(selected)
}

// SelectVoice persists voiceID as the text-to-speech voice.
func (a *App) SelectVoice(voiceID string) (domain.Settings, error) {
	id := strings.TrimSpace(voiceID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("voice id is required")
	}
	if _, found := getVoiceByID(id); !found {
		return domain.Settings{}, fmt.Errorf("unknown voice id: %s", id)
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings.VoiceID = id
	if err := a.Store.Save(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.settings.VoiceID = id
	a.mu.Unlock()
	return settings, nil
}

func getVoiceByID(id string) (domain.VoiceOption, bool) {
	return lo.Find(voiceCatalog, func(voice domain.VoiceOption) bool {
		return voice.ID == id
	})
}

func markSelectedVoice(selected string) []domain.VoiceOption {
	if selected == "" {
		selected = speech.DefaultVoiceID
	}
	return lo.Map(voiceCatalog, func(voice domain.VoiceOption, _ int) domain.VoiceOption {
		voice.Selected = voice.ID == selected
		return voice
	})
}
