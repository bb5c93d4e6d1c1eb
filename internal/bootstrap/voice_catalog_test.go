package bootstrap

import (
	"testing"

	"live-translator/internal/server"
	"live-translator/internal/speech"
)

func TestGetVoiceByID(t *testing.T) {
	voice, found := getVoiceByID("pNInz6obpgDQGcFmaJgB")
	if !found || voice.Name != "Adam" {
		t.Fatalf("voice = %+v, found = %v", voice, found)
	}
	if _, found := getVoiceByID("nope"); found {
		t.Fatal("unexpected voice")
	}
}

// TestGetVoicesMarksDefault checks the default voice is selected on first launch.
func TestGetVoicesMarksDefault(t *testing.T) {
	app := newTestApp(t, &fakeStore{settings: testSettings()}, server.Services{})

	selected := 0
	for _, voice := range app.GetVoices() {
		if voice.Selected {
			selected++
			if voice.ID != speech.DefaultVoiceID {
				t.Fatalf("selected = %s, want default", voice.ID)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("selected voices = %d, want 1", selected)
	}
}

func TestSelectVoiceRejectsUnknown(t *testing.T) {
	store := &fakeStore{settings: testSettings()}
	app := newTestApp(t, store, server.Services{})

	if _, err := app.SelectVoice("unknown"); err == nil {
		t.Fatal("expected error for unknown voice")
	}
	if _, err := app.SelectVoice(" "); err == nil {
		t.Fatal("expected error for blank voice")
	}
	if store.saves != 0 {
		t.Fatalf("saves = %d, want 0", store.saves)
	}
}

func TestSelectVoicePersists(t *testing.T) {
	store := &fakeStore{settings: testSettings()}
	app := newTestApp(t, store, server.Services{})

	if _, err := app.SelectVoice("TxGEqnHWrfWFTfGW9XjX"); err != nil {
		t.Fatalf("SelectVoice() error = %v", err)
	}
	if store.settings.VoiceID != "TxGEqnHWrfWFTfGW9XjX" {
		t.Fatalf("stored voice = %q", store.settings.VoiceID)
	}
	for _, voice := range app.GetVoices() {
		if voice.Selected && voice.ID != "TxGEqnHWrfWFTfGW9XjX" {
			t.Fatalf("selected = %s", voice.ID)
		}
	}
}
