// Package voice holds the speech synthesis backends: a hosted
// ElevenLabs-style API with preset voices and a local cloning server
// conditioned on a reference recording.
package voice

import "context"

// Synthesizer converts text to audio and writes it to outPath,
// overwriting any existing file. It returns the written path.
// Backends are interchangeable; the caller picks one by configuration.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) (string, error)
	IsAvailable() bool
}
