package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagevoice/pagevoice/pkg/faults"
)

func TestPrepareReferenceMissingFile(t *testing.T) {
	_, _, err := PrepareReference(filepath.Join(t.TempDir(), "nope.wav"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrNotFound))
}

func TestPrepareReferenceResamplesAndWrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.wav")
	require.NoError(t, sineClip(440, 44100, 1).WriteWAV(src))

	outDir := filepath.Join(dir, "out")
	clip, outPath, err := PrepareReference(src, outDir)
	require.NoError(t, err)

	assert.Equal(t, ModelSampleRate, clip.SampleRate)
	assert.InDelta(t, 1.0, clip.Duration(), 0.01)
	assert.Equal(t, filepath.Join(outDir, "processed_sample.wav"), outPath)

	// The processed file decodes back at the model rate.
	reread, err := ReadWAVMono(outPath)
	require.NoError(t, err)
	assert.Equal(t, ModelSampleRate, reread.SampleRate)
}

func TestPrepareReferenceAlreadyAtModelRate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ready.wav")
	require.NoError(t, sineClip(440, ModelSampleRate, 4).WriteWAV(src))

	clip, _, err := PrepareReference(src, dir)
	require.NoError(t, err)
	assert.Equal(t, ModelSampleRate, clip.SampleRate)
	assert.InDelta(t, 4.0, clip.Duration(), 0.01)
}

func TestPrepareReferenceUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "noise.bin")
	require.NoError(t, os.WriteFile(src, []byte("not audio at all"), 0o644))

	_, _, err := PrepareReference(src, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrDecodeFailure))
}
