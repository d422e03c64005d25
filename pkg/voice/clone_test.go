package voice

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pagevoice/pagevoice/pkg/audio"
	"github.com/pagevoice/pagevoice/pkg/faults"
)

// wavBytes renders a short tone as a WAV file body.
func wavBytes(t *testing.T, rate int, seconds float64) []byte {
	t.Helper()

	n := int(float64(rate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*220*float64(i)/float64(rate))
	}
	clip := &audio.Clip{Samples: samples, SampleRate: rate}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := clip.WriteWAV(path); err != nil {
		t.Fatalf("writing tone: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading tone: %v", err)
	}
	return data
}

func TestCloneSynthesize(t *testing.T) {
	chunkAudio := wavBytes(t, audio.ModelSampleRate, 0.1)

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req cloneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SpeakerWav != "ref.wav" || req.Language != "en" {
			t.Errorf("request = %+v", req)
		}
		requests.Add(1)
		w.Write(chunkAudio)
	}))
	defer server.Close()

	s := NewCloneSynthesizer(server.URL, "ref.wav", "en", 30)
	outPath := filepath.Join(t.TempDir(), "cloned_voice_output.wav")

	// Two sentences that cannot share a 30-char chunk.
	got, err := s.Synthesize(context.Background(), "First sentence here for test. Second sentence here for test.", outPath)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got != outPath {
		t.Errorf("returned path = %q", got)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}

	clip, err := audio.ReadWAVMono(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if clip.SampleRate != audio.ModelSampleRate {
		t.Errorf("output rate = %d", clip.SampleRate)
	}
	// Two concatenated 0.1s chunks.
	if d := clip.Duration(); math.Abs(d-0.2) > 0.01 {
		t.Errorf("output duration = %.3fs, want ~0.2s", d)
	}
}

func TestCloneSynthesizeResamplesServerAudio(t *testing.T) {
	// Server responds at 44100; the client must bring it to the model rate.
	chunkAudio := wavBytes(t, 44100, 0.1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chunkAudio)
	}))
	defer server.Close()

	s := NewCloneSynthesizer(server.URL, "ref.wav", "en", 0)
	outPath := filepath.Join(t.TempDir(), "out.wav")

	if _, err := s.Synthesize(context.Background(), "One short sentence.", outPath); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	clip, err := audio.ReadWAVMono(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if clip.SampleRate != audio.ModelSampleRate {
		t.Errorf("output rate = %d, want %d", clip.SampleRate, audio.ModelSampleRate)
	}
	if d := clip.Duration(); math.Abs(d-0.1) > 0.01 {
		t.Errorf("output duration = %.3fs, want ~0.1s", d)
	}
}

func TestCloneSynthesizeValidation(t *testing.T) {
	s := NewCloneSynthesizer("http://unused.invalid", "ref.wav", "en", 0)

	_, err := s.Synthesize(context.Background(), "   ", "out.wav")
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("blank text: error = %v, want ErrInvalidInput", err)
	}

	noRef := NewCloneSynthesizer("http://unused.invalid", "", "en", 0)
	_, err = noRef.Synthesize(context.Background(), "Hello.", "out.wav")
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("missing reference: error = %v, want ErrInvalidInput", err)
	}
}

func TestCloneSynthesizeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewCloneSynthesizer(server.URL, "ref.wav", "en", 0)
	_, err := s.Synthesize(context.Background(), "Hello.", filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, faults.ErrExternalService) {
		t.Errorf("error = %v, want ErrExternalService", err)
	}
}

func TestCloneIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	if !NewCloneSynthesizer(server.URL, "ref.wav", "en", 0).IsAvailable() {
		t.Error("expected available while server is up")
	}

	server.Close()
	if NewCloneSynthesizer(server.URL, "ref.wav", "en", 0).IsAvailable() {
		t.Error("expected unavailable after server shutdown")
	}
}
