package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
)

// Voice describes one entry of the hosted provider's voice registry.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

type addVoiceResponse struct {
	VoiceID string `json:"voice_id"`
}

// Registry manages cloned voices on the hosted provider. It is used by
// the voice-management CLI, independent of the synthesis path.
type Registry struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewRegistry(apiKey, baseURL string) *Registry {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &Registry{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ListVoices returns all available voices, premade and cloned.
func (r *Registry) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w: %v", faults.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list voices status %d: %s: %w", resp.StatusCode, string(body), faults.ErrExternalService)
	}

	var parsed voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode voices response: %w", err)
	}
	return parsed.Voices, nil
}

// AddVoice uploads a reference sample and registers a new cloned voice,
// returning the provider-assigned voice ID.
func (r *Registry) AddVoice(ctx context.Context, name, description, samplePath string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("voice name is required: %w", faults.ErrInvalidInput)
	}
	f, err := os.Open(samplePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("voice sample %s: %w", samplePath, faults.ErrNotFound)
		}
		return "", err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		sizeMB := float64(info.Size()) / (1024 * 1024)
		if sizeMB > 25 {
			logger.WarnCF("voice", "Sample is large; consider trimming", map[string]any{
				"size_mb": fmt.Sprintf("%.2f", sizeMB),
			})
		}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filepath.Base(samplePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	w.WriteField("name", name)
	w.WriteField("description", description)
	labels, _ := json.Marshal(map[string]string{"accent": "custom", "description": description})
	w.WriteField("labels", string(labels))
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/voices/add", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", r.apiKey)

	logger.InfoCF("voice", "Uploading voice sample", map[string]any{
		"sample": samplePath,
		"name":   name,
	})

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("add voice: %w: %v", faults.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("add voice status %d: %s: %w", resp.StatusCode, string(respBody), faults.ErrExternalService)
	}

	var parsed addVoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode add voice response: %w", err)
	}

	logger.InfoCF("voice", "Voice cloned on provider", map[string]any{"voice_id": parsed.VoiceID})
	return parsed.VoiceID, nil
}

// DeleteVoice removes a registered voice by ID.
func (r *Registry) DeleteVoice(ctx context.Context, voiceID string) error {
	if voiceID == "" {
		return fmt.Errorf("voice ID is required: %w", faults.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.baseURL+"/v1/voices/"+voiceID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete voice: %w: %v", faults.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete voice status %d: %s: %w", resp.StatusCode, string(body), faults.ErrExternalService)
	}

	logger.InfoCF("voice", "Voice deleted", map[string]any{"voice_id": voiceID})
	return nil
}
