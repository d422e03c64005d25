package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pagevoice/pagevoice/pkg/faults"
	"github.com/pagevoice/pagevoice/pkg/logger"
)

const (
	// ModelSampleRate is the rate the cloning model expects.
	ModelSampleRate = 22050

	// Recommended reference duration band. Outside it the sample still
	// works, just with worse cloning quality.
	minRecommendedSeconds = 3
	maxRecommendedSeconds = 120
)

// PrepareReference loads a reference recording through a cascade of
// decoding strategies, downmixes to mono, resamples to ModelSampleRate
// and writes the result to outDir as processed_<stem>.wav. The returned
// path points at the processed file.
//
// The cascade is: direct WAV decode, then MP3 decode, then an ffmpeg
// transcode to WAV followed by a WAV decode. Only when all three fail
// does the call fail, wrapping faults.ErrDecodeFailure.
func PrepareReference(path, outDir string) (*Clip, string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("reference audio %s: %w", path, faults.ErrNotFound)
		}
		return nil, "", err
	}

	logger.InfoCF("audio", "Preparing reference audio", map[string]any{"path": path})

	raw, err := decodeCascade(path, outDir)
	if err != nil {
		return nil, "", err
	}

	clip := raw.downmix()
	if raw.channels > 1 {
		logger.InfoCF("audio", "Downmixed to mono", map[string]any{"channels": raw.channels})
	}

	if clip.SampleRate != ModelSampleRate {
		logger.InfoCF("audio", "Resampling reference", map[string]any{
			"from_hz": clip.SampleRate,
			"to_hz":   ModelSampleRate,
		})
		clip = clip.Resample(ModelSampleRate)
	}

	duration := clip.Duration()
	logger.InfoCF("audio", "Reference audio ready", map[string]any{
		"duration_s": fmt.Sprintf("%.2f", duration),
	})
	if duration < minRecommendedSeconds {
		logger.WarnC("audio", "Reference audio is very short; 10+ seconds clones better")
	} else if duration > maxRecommendedSeconds {
		logger.WarnC("audio", "Reference audio is very long; consider trimming to 30-60 seconds")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, "", err
	}
	outPath := filepath.Join(outDir, "processed_"+stem(path)+".wav")
	if err := clip.WriteWAV(outPath); err != nil {
		return nil, "", err
	}
	logger.InfoCF("audio", "Processed reference saved", map[string]any{"path": outPath})

	return clip, outPath, nil
}

func decodeCascade(path, outDir string) (*rawAudio, error) {
	raw, wavErr := decodeWAV(path)
	if wavErr == nil {
		logger.DebugC("audio", "Loaded reference with wav decoder")
		return raw, nil
	}

	raw, mp3Err := decodeMP3(path)
	if mp3Err == nil {
		logger.DebugC("audio", "Loaded reference with mp3 decoder")
		return raw, nil
	}

	raw, ffErr := transcodeAndDecode(path, outDir)
	if ffErr == nil {
		logger.DebugC("audio", "Loaded reference after ffmpeg transcode")
		return raw, nil
	}

	logger.ErrorCF("audio", "All decoding strategies failed", map[string]any{
		"wav":    wavErr.Error(),
		"mp3":    mp3Err.Error(),
		"ffmpeg": ffErr.Error(),
	})
	return nil, fmt.Errorf("decode %s: %w", path, faults.ErrDecodeFailure)
}

// transcodeAndDecode shells out to ffmpeg to rewrite the file as mono WAV
// at the model rate, then decodes that.
func transcodeAndDecode(path, outDir string) (*rawAudio, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	converted := filepath.Join(outDir, "converted_"+stem(path)+".wav")

	cmd := exec.Command("ffmpeg",
		"-i", path,
		"-ar", strconv.Itoa(ModelSampleRate),
		"-ac", "1",
		"-y", converted,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return decodeWAV(converted)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
