// Package pipeline sequences the extraction, cleanup and synthesis stages.
//
// Stage failures are logged and collapse to an empty result instead of
// propagating; callers check for "" after each run. Only setup mistakes
// (missing API key, missing required arguments) surface as errors before
// a pipeline starts.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagevoice/pagevoice/pkg/audio"
	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
	"github.com/pagevoice/pagevoice/pkg/pdftext"
	"github.com/pagevoice/pagevoice/pkg/textproc"
	"github.com/pagevoice/pagevoice/pkg/voice"
)

// Pipeline wires the stages together using one shared configuration.
// It is synchronous and assumes a single caller at a time; repeated runs
// overwrite their fixed-name outputs.
type Pipeline struct {
	cfg        *config.Config
	normalizer *textproc.Normalizer
}

func New(cfg *config.Config) *Pipeline {
	n := textproc.NewNormalizer()
	n.WordJoinFix = cfg.Text.WordJoinFix
	return &Pipeline{cfg: cfg, normalizer: n}
}

// PageToHostedSpeech extracts one PDF page, cleans it, persists the
// cleaned text sidecar and synthesizes it with the hosted backend.
// Returns the audio path, or "" when any stage fails. The sidecar stays
// on disk even when synthesis fails.
func (p *Pipeline) PageToHostedSpeech(ctx context.Context, pdfPath string, page int, voiceID string) string {
	logger.InfoCF("pipeline", "Starting PDF to hosted speech", map[string]any{
		"pdf":  pdfPath,
		"page": page,
	})

	raw, err := pdftext.ExtractPage(pdfPath, page)
	if err != nil {
		logger.ErrorCF("pipeline", "Extraction failed", map[string]any{"error": err.Error()})
		return ""
	}
	if raw == "" {
		logger.WarnC("pipeline", "Page has no extractable text, nothing to narrate")
		return ""
	}

	cleaned := p.normalizer.Normalize(raw)
	if cleaned == "" {
		logger.WarnC("pipeline", "Cleaned text is empty, nothing to narrate")
		return ""
	}

	if err := p.writeSidecar(page, cleaned); err != nil {
		logger.ErrorCF("pipeline", "Sidecar write failed", map[string]any{"error": err.Error()})
		return ""
	}

	synth := voice.NewElevenLabsSynthesizer(p.cfg.Hosted.APIKey, voice.ElevenLabsOptions{
		BaseURL:      p.cfg.Hosted.BaseURL,
		VoiceID:      p.orVoiceID(voiceID),
		ModelID:      p.cfg.Hosted.ModelID,
		OutputFormat: p.cfg.Hosted.OutputFormat,
		Stability:    p.cfg.Hosted.Stability,
		Similarity:   p.cfg.Hosted.Similarity,
		Playback:     p.cfg.Hosted.Playback,
	})

	outPath := filepath.Join(p.cfg.Output.Dir, fmt.Sprintf("page_%d.mp3", page))
	result, err := synth.Synthesize(ctx, cleaned, outPath)
	if err != nil {
		logger.ErrorCF("pipeline", "Hosted synthesis failed", map[string]any{"error": err.Error()})
		return ""
	}

	logger.InfoCF("pipeline", "Hosted speech completed", map[string]any{"audio": result})
	return result
}

// ExtractOnly runs the extraction stage alone, for the manual voice
// cloning preparation path. Returns the raw page text or "" on failure.
func (p *Pipeline) ExtractOnly(pdfPath string, page int) string {
	raw, err := pdftext.ExtractPage(pdfPath, page)
	if err != nil {
		logger.ErrorCF("pipeline", "Extraction failed", map[string]any{"error": err.Error()})
		return ""
	}
	return raw
}

// TextToClonedSpeech reads an already-extracted text file, prepares the
// reference sample and synthesizes the text with the cloned voice.
// Returns the audio path, or "" when any stage fails.
func (p *Pipeline) TextToClonedSpeech(ctx context.Context, textPath, refPath, language string) string {
	logger.InfoCF("pipeline", "Starting text to cloned speech", map[string]any{
		"text":      textPath,
		"reference": refPath,
	})

	text, err := loadTextFile(textPath)
	if err != nil {
		logger.ErrorCF("pipeline", "Text load failed", map[string]any{"error": err.Error()})
		return ""
	}
	if text == "" {
		logger.WarnC("pipeline", "Text file is empty, nothing to narrate")
		return ""
	}

	_, preparedRef, err := audio.PrepareReference(refPath, p.cfg.Output.Dir)
	if err != nil {
		logger.ErrorCF("pipeline", "Reference preparation failed", map[string]any{"error": err.Error()})
		return ""
	}

	if language == "" {
		language = p.cfg.Clone.Language
	}
	synth := voice.NewCloneSynthesizer(p.cfg.Clone.ServerURL, preparedRef, language, p.cfg.Text.ChunkSize)

	outPath := filepath.Join(p.cfg.Output.Dir, "cloned_voice_output.wav")
	result, err := synth.Synthesize(ctx, text, outPath)
	if err != nil {
		logger.ErrorCF("pipeline", "Clone synthesis failed", map[string]any{"error": err.Error()})
		return ""
	}

	logger.InfoCF("pipeline", "Cloned speech completed", map[string]any{"audio": result})
	return result
}

// SidecarPath returns where the cleaned text for a page is persisted.
func (p *Pipeline) SidecarPath(page int) string {
	return filepath.Join(p.cfg.Output.Dir, fmt.Sprintf("page_%d_text.txt", page))
}

func (p *Pipeline) writeSidecar(page int, cleaned string) error {
	if err := os.MkdirAll(p.cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	path := p.SidecarPath(page)
	if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
		return err
	}
	logger.InfoCF("pipeline", "Cleaned text saved", map[string]any{"path": path})
	return nil
}

func (p *Pipeline) orVoiceID(voiceID string) string {
	if voiceID != "" {
		return voiceID
	}
	return p.cfg.Hosted.VoiceID
}

func loadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("text file %s: %w", path, faults.ErrNotFound)
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
