package config

import (
	"os"
	"strings"
)

// Environment variables holding provider credentials.
const (
	EnvGoogleAPIKey     = "GOOGLE_API_KEY"
	EnvElevenLabsAPIKey = "ELEVENLABS_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
)

// Credentials are read from the environment and never persisted.
type Credentials struct {
	GoogleAPIKey     string
	ElevenLabsAPIKey string
	OpenAIAPIKey     string
}

// LoadCredentials reads provider keys through lookup; nil uses os.LookupEnv.
func LoadCredentials(lookup func(string) (string, bool)) Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}
	return Credentials{
		GoogleAPIKey:     get(EnvGoogleAPIKey),
		ElevenLabsAPIKey: get(EnvElevenLabsAPIKey),
		OpenAIAPIKey:     get(EnvOpenAIAPIKey),
	}
}
