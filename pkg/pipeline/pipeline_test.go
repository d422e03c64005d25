package pipeline

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pagevoice/pagevoice/pkg/audio"
	"github.com/pagevoice/pagevoice/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.UploadsDir = t.TempDir()
	return cfg
}

func writeTone(t *testing.T, path string, rate int, seconds float64) {
	t.Helper()
	n := int(float64(rate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	clip := &audio.Clip{Samples: samples, SampleRate: rate}
	if err := clip.WriteWAV(path); err != nil {
		t.Fatalf("writing tone: %v", err)
	}
}

func TestPageToHostedSpeechMissingPDF(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hosted.APIKey = "k"

	got := New(cfg).PageToHostedSpeech(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), 1, "")
	if got != "" {
		t.Errorf("expected empty result for missing PDF, got %q", got)
	}
}

func TestExtractOnlyMissingPDF(t *testing.T) {
	cfg := testConfig(t)
	if got := New(cfg).ExtractOnly("does-not-exist.pdf", 1); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestTextToClonedSpeechMissingTextFile(t *testing.T) {
	cfg := testConfig(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	cfg.Clone.ServerURL = server.URL

	got := New(cfg).TextToClonedSpeech(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "ref.wav", "")
	if got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if calls.Load() != 0 {
		t.Error("model server must not be contacted when the text file is missing")
	}
}

func TestTextToClonedSpeechEmptyTextFile(t *testing.T) {
	cfg := testConfig(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	cfg.Clone.ServerURL = server.URL

	textPath := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(textPath, []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := New(cfg).TextToClonedSpeech(context.Background(), textPath, "ref.wav", "")
	if got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if calls.Load() != 0 {
		t.Error("model server must not be contacted for empty text")
	}
}

func TestTextToClonedSpeechFullFlow(t *testing.T) {
	cfg := testConfig(t)

	dir := t.TempDir()
	refPath := filepath.Join(dir, "speaker.wav")
	writeTone(t, refPath, 44100, 1)

	// Serve a valid model-rate waveform for every chunk.
	tonePath := filepath.Join(dir, "response.wav")
	writeTone(t, tonePath, audio.ModelSampleRate, 0.1)
	toneBytes, err := os.ReadFile(tonePath)
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(toneBytes)
	}))
	defer server.Close()
	cfg.Clone.ServerURL = server.URL

	textPath := filepath.Join(dir, "story.txt")
	if err := os.WriteFile(textPath, []byte("A short story for the clone."), 0o644); err != nil {
		t.Fatal(err)
	}

	got := New(cfg).TextToClonedSpeech(context.Background(), textPath, refPath, "")
	want := filepath.Join(cfg.Output.Dir, "cloned_voice_output.wav")
	if got != want {
		t.Fatalf("result = %q, want %q", got, want)
	}

	// The prepared reference lands next to the output, mono at model rate.
	prepared := filepath.Join(cfg.Output.Dir, "processed_speaker.wav")
	clip, err := audio.ReadWAVMono(prepared)
	if err != nil {
		t.Fatalf("reading prepared reference: %v", err)
	}
	if clip.SampleRate != audio.ModelSampleRate {
		t.Errorf("prepared reference rate = %d", clip.SampleRate)
	}

	out, err := audio.ReadWAVMono(got)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if out.SampleRate != audio.ModelSampleRate {
		t.Errorf("output rate = %d", out.SampleRate)
	}
	if len(out.Samples) == 0 {
		t.Error("output has no samples")
	}
}

func TestTextToClonedSpeechServerDown(t *testing.T) {
	cfg := testConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	cfg.Clone.ServerURL = server.URL

	dir := t.TempDir()
	refPath := filepath.Join(dir, "speaker.wav")
	writeTone(t, refPath, audio.ModelSampleRate, 1)
	textPath := filepath.Join(dir, "story.txt")
	if err := os.WriteFile(textPath, []byte("Some text."), 0o644); err != nil {
		t.Fatal(err)
	}

	got := New(cfg).TextToClonedSpeech(context.Background(), textPath, refPath, "")
	if got != "" {
		t.Errorf("expected empty result when the model server is down, got %q", got)
	}

	// The prepared reference from the earlier stage stays on disk.
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "processed_speaker.wav")); err != nil {
		t.Errorf("prepared reference missing: %v", err)
	}
}

func TestSidecarPath(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg)
	want := filepath.Join(cfg.Output.Dir, "page_3_text.txt")
	if got := p.SidecarPath(3); got != want {
		t.Errorf("SidecarPath(3) = %q, want %q", got, want)
	}
}
