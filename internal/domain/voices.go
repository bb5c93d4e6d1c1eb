package domain

// VoiceOption describes one text-to-speech voice preset.
type VoiceOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Accent      string `json:"accent,omitempty"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}
