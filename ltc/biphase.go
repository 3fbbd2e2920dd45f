package ltc

import "fmt"

// SamplesPerBit returns the number of audio samples in one bit cell
func SamplesPerBit(fps, sampleRate int) int {
	if fps <= 0 {
		return 0
	}
	return sampleRate / (fps * FrameBits)
}

// MinSampleRate is the lowest sample rate that leaves room for a
// mid-cell transition at fps
func MinSampleRate(fps int) int {
	return 2 * fps * FrameBits
}

// Modulate renders f as a biphase-mark signal of unit amplitude. Every
// bit cell begins with a level change; a one bit adds a second change
// in the middle of the cell. The first cell starts at +1.
//
// The result has 80*2*(SamplesPerBit/2) samples. A sample rate below
// MinSampleRate yields an empty buffer.
func Modulate(f Frame, fps, sampleRate int) []float32 {
	half := SamplesPerBit(fps, sampleRate) / 2
	if half < 1 {
		return []float32{}
	}
	buf := make([]float32, FrameBits*2*half)
	modulate(buf, &f, half)
	return buf
}

// modulate writes the cells of f into dst, which must hold exactly
// 160*half samples
func modulate(dst []float32, f *Frame, half int) {
	level := float32(1)
	i := 0
	for _, b := range f {
		for end := i + half; i < end; i++ {
			dst[i] = level
		}
		if b == 1 {
			level = -level
		}
		for end := i + half; i < end; i++ {
			dst[i] = level
		}
		level = -level
	}
}

// Demodulate decodes a cell-aligned biphase-mark signal produced with
// half samples per half cell back into frames. It only inspects the
// sign of the first sample of each half cell.
func Demodulate(samples []float32, half int) ([]Frame, error) {
	if half < 1 {
		return nil, fmt.Errorf("%w: %d samples per half cell", ErrSignal, half)
	}
	cell := 2 * half
	size := FrameBits * cell
	if len(samples)%size != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-sample frames", ErrSignal, len(samples), size)
	}

	frames := make([]Frame, len(samples)/size)
	prev := -sign(samples[0:])
	for n := range frames {
		for b := 0; b < FrameBits; b++ {
			at := n*size + b*cell
			first, second := sign(samples[at:]), sign(samples[at+half:])
			if first == prev {
				return nil, fmt.Errorf("%w: no transition at frame %d bit %d", ErrSignal, n, b)
			}
			frames[n][b] = bit(first != second)
			prev = second
		}
	}
	return frames, nil
}

func sign(s []float32) int {
	if len(s) == 0 || s[0] >= 0 {
		return 1
	}
	return -1
}
