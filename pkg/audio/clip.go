// Package audio handles reference-sample preparation for voice cloning and
// the WAV plumbing around the local synthesis model.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Clip is a mono waveform with samples in [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Append concatenates other onto c. Sample rates must already match.
func (c *Clip) Append(other *Clip) {
	c.Samples = append(c.Samples, other.Samples...)
}

// rawAudio holds interleaved samples before downmixing.
type rawAudio struct {
	data     []float64
	rate     int
	channels int
}

// decodeWAV reads a RIFF/WAV file into interleaved float samples.
func decodeWAV(path string) (*rawAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeWAVReader(f, path)
}

func decodeWAVReader(r io.ReadSeeker, name string) (*rawAudio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", name)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("wav file has no format chunk: %s", name)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int(1) << (bitDepth - 1))

	data := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		data[i] = float64(s) / scale
	}

	return &rawAudio{
		data:     data,
		rate:     buf.Format.SampleRate,
		channels: buf.Format.NumChannels,
	}, nil
}

// decodeMP3 reads an MP3 file. The decoder always yields 16-bit stereo.
func decodeMP3(path string) (*rawAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 read: %w", err)
	}

	data := make([]float64, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		data = append(data, float64(s)/(1<<15))
	}

	return &rawAudio{data: data, rate: dec.SampleRate(), channels: 2}, nil
}

// downmix averages interleaved channels into a mono clip.
func (r *rawAudio) downmix() *Clip {
	if r.channels <= 1 {
		return &Clip{Samples: r.data, SampleRate: r.rate}
	}

	frames := len(r.data) / r.channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < r.channels; ch++ {
			sum += r.data[i*r.channels+ch]
		}
		mono[i] = sum / float64(r.channels)
	}
	return &Clip{Samples: mono, SampleRate: r.rate}
}

// Resample converts the clip to targetRate by linear interpolation.
func (c *Clip) Resample(targetRate int) *Clip {
	if c.SampleRate == targetRate || len(c.Samples) == 0 {
		return &Clip{Samples: c.Samples, SampleRate: targetRate}
	}

	ratio := float64(targetRate) / float64(c.SampleRate)
	outLen := int(math.Round(float64(len(c.Samples)) * ratio))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) / ratio
		j := int(pos)
		if j >= len(c.Samples)-1 {
			out[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = c.Samples[j]*(1-frac) + c.Samples[j+1]*frac
	}

	return &Clip{Samples: out, SampleRate: targetRate}
}

// WriteWAV writes the clip as 16-bit mono PCM.
func (c *Clip) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, c.SampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		SourceBitDepth: 16,
	}
	buf.Data = make([]int, len(c.Samples))
	for i, s := range c.Samples {
		v := math.Round(s * (1 << 15))
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		buf.Data[i] = int(v)
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

// ReadWAVMono reads a WAV file, downmixing to mono if needed.
func ReadWAVMono(path string) (*Clip, error) {
	raw, err := decodeWAV(path)
	if err != nil {
		return nil, err
	}
	return raw.downmix(), nil
}

// DecodeWAVBytes decodes an in-memory WAV body, downmixing to mono.
// Used for waveforms returned by the local synthesis server.
func DecodeWAVBytes(data []byte) (*Clip, error) {
	raw, err := decodeWAVReader(bytes.NewReader(data), "response body")
	if err != nil {
		return nil, err
	}
	return raw.downmix(), nil
}
