package transcribe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRecognizer simulates transcription outcomes.
type fakeRecognizer struct {
	transcribe func(ctx context.Context, audio []byte, filename string) (string, error)
}

// Transcribe delegates to injected behavior.
func (f *fakeRecognizer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if f.transcribe == nil {
		return "", nil
	}
	return f.transcribe(ctx, audio, filename)
}

// TestPipelineRunSuccess checks the happy path with a codec parameter.
func TestPipelineRunSuccess(t *testing.T) {
	var gotFile string
	recognizer := &fakeRecognizer{transcribe: func(_ context.Context, audio []byte, filename string) (string, error) {
		gotFile = filename
		return "  hello world \n", nil
	}}

	var stages []string
	clock := fixedClock(time.Unix(100, 0), 250*time.Millisecond)
	pipeline := NewPipelineForTests(recognizer, 1024, clock)
	result, err := pipeline.Run(context.Background(), Request{
		Audio:    []byte("webm-data"),
		MimeType: "audio/webm;codecs=opus",
		OnStage:  func(stage string) { stages = append(stages, stage) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Transcript != "hello world" {
		t.Fatalf("transcript = %q", result.Transcript)
	}
	if gotFile != "recording.webm" || result.Filename != "recording.webm" {
		t.Fatalf("filename = %q / %q", gotFile, result.Filename)
	}
	if result.Bytes != len("webm-data") || result.Elapsed != 250*time.Millisecond {
		t.Fatalf("result = %+v", result)
	}
	if strings.Join(stages, ",") != "validating,transcribing" {
		t.Fatalf("stages = %v", stages)
	}
}

func TestPipelineKeepsExplicitFilename(t *testing.T) {
	var gotFile string
	recognizer := &fakeRecognizer{transcribe: func(_ context.Context, _ []byte, filename string) (string, error) {
		gotFile = filename
		return "ok", nil
	}}

	_, err := NewPipeline(recognizer).Run(context.Background(), Request{
		Audio:    []byte("x"),
		MimeType: "audio/mpeg",
		Filename: "memo.mp3",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if gotFile != "memo.mp3" {
		t.Fatalf("filename = %q", gotFile)
	}
}

// TestPipelineValidation checks every validation failure stays in the validating stage.
func TestPipelineValidation(t *testing.T) {
	called := false
	recognizer := &fakeRecognizer{transcribe: func(context.Context, []byte, string) (string, error) {
		called = true
		return "", nil
	}}
	pipeline := NewPipelineForTests(recognizer, 8, nil)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{name: "empty", req: Request{}, want: "recording is empty"},
		{name: "too large", req: Request{Audio: []byte("123456789"), MimeType: "audio/webm"}, want: "limit is 8"},
		{name: "not audio", req: Request{Audio: []byte("x"), MimeType: "image/png"}, want: "unsupported audio type"},
		{name: "malformed", req: Request{Audio: []byte("x"), MimeType: "audio/;;"}, want: "unsupported audio type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Run(context.Background(), tt.req)
			var pErr *PipelineError
			if !errors.As(err, &pErr) {
				t.Fatalf("error = %v, want PipelineError", err)
			}
			if pErr.Stage != StageValidating {
				t.Fatalf("stage = %q, want validating", pErr.Stage)
			}
			if !strings.Contains(pErr.Message, tt.want) {
				t.Fatalf("message = %q, want to contain %q", pErr.Message, tt.want)
			}
		})
	}

	if called {
		t.Fatal("recognizer called for invalid input")
	}
}

func TestPipelineRecognizerFailure(t *testing.T) {
	boom := errors.New("upstream down")
	recognizer := &fakeRecognizer{transcribe: func(context.Context, []byte, string) (string, error) {
		return "", boom
	}}

	_, err := NewPipeline(recognizer).Run(context.Background(), Request{Audio: []byte("x"), MimeType: "audio/wav"})
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Stage != StageTranscribing {
		t.Fatalf("error = %v, want transcribing PipelineError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped cause", err)
	}
}

func TestPipelineWithoutRecognizer(t *testing.T) {
	_, err := NewPipeline(nil).Run(context.Background(), Request{Audio: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("error = %v", err)
	}
}

// fixedClock returns start on the first call and start+step afterwards.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}
