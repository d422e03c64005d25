package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pagevoice/pagevoice/pkg/faults"
)

func TestRegistryListVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/voices" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "k" {
			t.Errorf("api key header = %q", r.Header.Get("xi-api-key"))
		}
		w.Write([]byte(`{"voices": [
			{"voice_id": "abc", "name": "George", "category": "premade"},
			{"voice_id": "def", "name": "My Clone", "category": "cloned"}
		]}`))
	}))
	defer server.Close()

	voices, err := NewRegistry("k", server.URL).ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(voices))
	}
	if voices[1].VoiceID != "def" || voices[1].Category != "cloned" {
		t.Errorf("voice[1] = %+v", voices[1])
	}
}

func TestRegistryAddVoice(t *testing.T) {
	sample := filepath.Join(t.TempDir(), "sample.mp3")
	if err := os.WriteFile(sample, []byte("mp3data"), 0o644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/voices/add" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("name"); got != "My Voice" {
			t.Errorf("name field = %q", got)
		}
		file, header, err := r.FormFile("files")
		if err != nil {
			t.Fatalf("files field: %v", err)
		}
		file.Close()
		if header.Filename != "sample.mp3" {
			t.Errorf("upload filename = %q", header.Filename)
		}
		w.Write([]byte(`{"voice_id": "new-voice-id"}`))
	}))
	defer server.Close()

	voiceID, err := NewRegistry("k", server.URL).AddVoice(context.Background(), "My Voice", "test voice", sample)
	if err != nil {
		t.Fatalf("AddVoice: %v", err)
	}
	if voiceID != "new-voice-id" {
		t.Errorf("voice id = %q", voiceID)
	}
}

func TestRegistryAddVoiceValidation(t *testing.T) {
	r := NewRegistry("k", "http://unused.invalid")

	_, err := r.AddVoice(context.Background(), "", "", "sample.mp3")
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Errorf("empty name: error = %v, want ErrInvalidInput", err)
	}

	_, err = r.AddVoice(context.Background(), "Name", "", filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("missing sample: error = %v, want ErrNotFound", err)
	}
}

func TestRegistryDeleteVoice(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	if err := NewRegistry("k", server.URL).DeleteVoice(context.Background(), "abc123"); err != nil {
		t.Fatalf("DeleteVoice: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/v1/voices/abc123" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestRegistryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	r := NewRegistry("k", server.URL)

	if _, err := r.ListVoices(context.Background()); !errors.Is(err, faults.ErrExternalService) {
		t.Errorf("ListVoices error = %v, want ErrExternalService", err)
	}
	if err := r.DeleteVoice(context.Background(), "abc"); !errors.Is(err, faults.ErrExternalService) {
		t.Errorf("DeleteVoice error = %v, want ErrExternalService", err)
	}
}
