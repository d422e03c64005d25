package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
)

// ElevenLabsSynthesizer calls the hosted text-to-speech API with a fixed
// model and output encoding.
type ElevenLabsSynthesizer struct {
	apiKey       string
	baseURL      string
	voiceID      string
	modelID      string
	outputFormat string
	stability    float64
	similarity   float64
	playback     bool
	httpClient   *http.Client
}

type elevenLabsRequest struct {
	Text          string              `json:"text"`
	ModelID       string              `json:"model_id"`
	VoiceSettings *elevenLabsSettings `json:"voice_settings,omitempty"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsOptions configures the hosted backend. Zero values fall back
// to the API defaults used throughout this project.
type ElevenLabsOptions struct {
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Stability    float64
	Similarity   float64
	Playback     bool
}

func NewElevenLabsSynthesizer(apiKey string, opts ElevenLabsOptions) *ElevenLabsSynthesizer {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.elevenlabs.io"
	}
	if opts.ModelID == "" {
		opts.ModelID = "eleven_multilingual_v2"
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = "mp3_44100_128"
	}

	return &ElevenLabsSynthesizer{
		apiKey:       apiKey,
		baseURL:      opts.BaseURL,
		voiceID:      opts.VoiceID,
		modelID:      opts.ModelID,
		outputFormat: opts.OutputFormat,
		stability:    opts.Stability,
		similarity:   opts.Similarity,
		playback:     opts.Playback,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Synthesize converts text to speech and writes the audio to outPath.
// Empty text and a missing voice ID are programmer errors and wrap
// faults.ErrInvalidInput; API failures wrap faults.ErrExternalService.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, outPath string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no text provided for conversion: %w", faults.ErrInvalidInput)
	}
	if s.voiceID == "" {
		return "", fmt.Errorf("voice ID is required: %w", faults.ErrInvalidInput)
	}

	logger.InfoCF("voice", "Synthesizing with hosted API", map[string]any{
		"chars":  len(text),
		"voice":  s.voiceID,
		"model":  s.modelID,
		"format": s.outputFormat,
	})

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: s.modelID,
	}
	if s.stability > 0 || s.similarity > 0 {
		reqBody.VoiceSettings = &elevenLabsSettings{
			Stability:       s.stability,
			SimilarityBoost: s.similarity,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", s.baseURL, s.voiceID, s.outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis request: %w: %v", faults.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("hosted API status %d: %s: %w", resp.StatusCode, string(body), faults.ErrExternalService)
	}

	audioBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read synthesis response: %w: %v", faults.ErrExternalService, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, audioBytes, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}

	logger.InfoCF("voice", "Audio saved", map[string]any{
		"path":  outPath,
		"bytes": len(audioBytes),
	})

	if s.playback {
		PlayFile(outPath)
	}

	return outPath, nil
}

// IsAvailable reports whether the backend has an API key to work with.
func (s *ElevenLabsSynthesizer) IsAvailable() bool {
	return s.apiKey != ""
}
