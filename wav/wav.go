// Package wav writes rendered LTC as mono PCM WAV.
package wav

import (
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
	"github.com/pkg/errors"
)

const (
	// DefaultBitDepth is used when a bit depth of 0 is requested
	DefaultBitDepth = 16

	formatPCM = 1
	mono      = 1
)

// Write encodes samples in [-1, 1] as a mono PCM WAV stream
func Write(w io.WriteSeeker, samples []float32, sampleRate, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return errors.Errorf("unsupported bit depth %d", bitDepth)
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, mono, formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: mono, SampleRate: sampleRate},
		Data:           quantize(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "writing wav samples")
	}
	return errors.Wrap(enc.Close(), "finalizing wav header")
}

// Encode returns samples as a complete WAV file
func Encode(samples []float32, sampleRate, bitDepth int) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := Write(ws, samples, sampleRate, bitDepth); err != nil {
		return nil, err
	}
	return io.ReadAll(ws.Reader())
}

// WriteFile writes samples to the WAV file at path
func WriteFile(path string, samples []float32, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating wav file")
	}
	if err := Write(f, samples, sampleRate, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a mono PCM WAV stream back into samples in [-1, 1]
func Read(r io.ReadSeeker) (samples []float32, sampleRate int, err error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading wav samples")
	}
	if dec.NumChans != mono {
		return nil, 0, errors.Errorf("want a mono file, have %d channels", dec.NumChans)
	}
	scale := float32(fullScale(int(dec.BitDepth)))
	samples = make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, int(dec.SampleRate), nil
}

func quantize(samples []float32, bitDepth int) []int {
	scale := fullScale(bitDepth)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(float64(s) * float64(scale)))
	}
	return data
}

// fullScale is the largest positive sample value at bitDepth
func fullScale(bitDepth int) int {
	return 1<<(bitDepth-1) - 1
}
