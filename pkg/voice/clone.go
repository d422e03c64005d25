package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagevoice/pagevoice/pkg/audio"
	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
	"github.com/pagevoice/pagevoice/pkg/textproc"
)

// CloneSynthesizer talks to a locally hosted XTTS-style multi-speaker
// server. Each request is conditioned on a prepared reference sample so
// the output imitates that speaker's timbre.
type CloneSynthesizer struct {
	serverURL  string
	speakerWav string
	language   string
	chunkSize  int
	httpClient *http.Client
}

type cloneRequest struct {
	Text       string `json:"text"`
	SpeakerWav string `json:"speaker_wav"`
	Language   string `json:"language"`
}

// NewCloneSynthesizer creates a client for the local model server.
// speakerWav must point at an already prepared (mono, model-rate)
// reference file, see audio.PrepareReference.
func NewCloneSynthesizer(serverURL, speakerWav, language string, chunkSize int) *CloneSynthesizer {
	if serverURL == "" {
		serverURL = "http://localhost:5002"
	}
	if language == "" {
		language = "en"
	}
	if chunkSize <= 0 {
		chunkSize = textproc.DefaultChunkSize
	}

	return &CloneSynthesizer{
		serverURL:  serverURL,
		speakerWav: speakerWav,
		language:   language,
		chunkSize:  chunkSize,
		httpClient: &http.Client{
			// Local inference of a long chunk can take a while on CPU.
			Timeout: 10 * time.Minute,
		},
	}
}

// Synthesize splits text into sentence chunks, synthesizes each one with
// the cloned voice and writes the concatenated waveform to outPath as a
// single WAV at the model sample rate.
func (s *CloneSynthesizer) Synthesize(ctx context.Context, text, outPath string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text provided for conversion: %w", faults.ErrInvalidInput)
	}
	if s.speakerWav == "" {
		return "", fmt.Errorf("reference sample is required: %w", faults.ErrInvalidInput)
	}

	chunks := textproc.SplitChunks(text, s.chunkSize)
	logger.InfoCF("voice", "Cloning voice and generating speech", map[string]any{
		"chars":     len(text),
		"chunks":    len(chunks),
		"reference": s.speakerWav,
		"language":  s.language,
	})

	combined := &audio.Clip{SampleRate: audio.ModelSampleRate}
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		logger.InfoCF("voice", "Processing chunk", map[string]any{
			"chunk": i + 1,
			"total": len(chunks),
		})

		clip, err := s.synthesizeChunk(ctx, chunk)
		if err != nil {
			return "", err
		}
		combined.Append(clip)
	}

	if len(combined.Samples) == 0 {
		return "", fmt.Errorf("no audio segments generated")
	}

	if err := combined.WriteWAV(outPath); err != nil {
		return "", err
	}

	logger.InfoCF("voice", "Cloned voice audio saved", map[string]any{
		"path":       outPath,
		"duration_s": fmt.Sprintf("%.2f", combined.Duration()),
	})
	return outPath, nil
}

func (s *CloneSynthesizer) synthesizeChunk(ctx context.Context, text string) (*audio.Clip, error) {
	body, err := json.Marshal(cloneRequest{
		Text:       text,
		SpeakerWav: s.speakerWav,
		Language:   s.language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal clone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create clone request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clone request: %w: %v", faults.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model server status %d: %s: %w", resp.StatusCode, string(respBody), faults.ErrExternalService)
	}

	wavBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model response: %w: %v", faults.ErrExternalService, err)
	}

	clip, err := audio.DecodeWAVBytes(wavBytes)
	if err != nil {
		return nil, fmt.Errorf("decode model waveform: %w", err)
	}
	if clip.SampleRate != audio.ModelSampleRate {
		clip = clip.Resample(audio.ModelSampleRate)
	}
	return clip, nil
}

// IsAvailable checks whether the local model server is reachable.
func (s *CloneSynthesizer) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.serverURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.DebugCF("voice", "Model server health check failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
