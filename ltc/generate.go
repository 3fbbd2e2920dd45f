package ltc

import (
	"fmt"
	"math"
)

// frameEpsilon absorbs float error in duration*fps, so 1/25 s at 25 fps
// is one frame rather than zero
const frameEpsilon = 1e-9

// MaxSamples bounds the length of a single render
const MaxSamples = min(math.MaxInt, 1<<40)

// Generator renders LTC for one immutable configuration. It is safe for
// concurrent use.
type Generator struct {
	profile    Profile
	sampleRate int
	userBits   UserBits
	half       int
}

// NewGenerator validates the configuration once so that Generate can
// not fail part way through a render
func NewGenerator(fps, sampleRate int, ub UserBits) (*Generator, error) {
	p, err := NewProfile(fps)
	if err != nil {
		return nil, err
	}
	return NewGeneratorProfile(p, sampleRate, ub)
}

// NewGeneratorProfile is NewGenerator for an existing profile
func NewGeneratorProfile(p Profile, sampleRate int, ub UserBits) (*Generator, error) {
	if p.FPS <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFPS, p.FPS)
	}
	if sampleRate < MinSampleRate(p.FPS) {
		return nil, fmt.Errorf("%w: %d Hz, need at least %d Hz for %d fps", ErrSampleRateTooLow, sampleRate, MinSampleRate(p.FPS), p.FPS)
	}
	return &Generator{
		profile:    p,
		sampleRate: sampleRate,
		userBits:   ub,
		half:       SamplesPerBit(p.FPS, sampleRate) / 2,
	}, nil
}

func (g *Generator) Profile() Profile   { return g.profile }
func (g *Generator) SampleRate() int    { return g.sampleRate }
func (g *Generator) UserBits() UserBits { return g.userBits }

// HalfSamplesPerBit is the length of half a bit cell
func (g *Generator) HalfSamplesPerBit() int { return g.half }

// FrameLen is the number of samples in one rendered frame
func (g *Generator) FrameLen() int {
	return FrameBits * 2 * g.half
}

// MaxFrames is the most frames one render can hold
func (g *Generator) MaxFrames() int {
	return MaxSamples / g.FrameLen()
}

// CheckDuration returns ErrDuration for negative or non-finite durations
// and for durations longer than MaxFrames
func (g *Generator) CheckDuration(duration float64) error {
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return fmt.Errorf("%w: %v", ErrDuration, duration)
	}
	if duration*float64(g.profile.FPS) > float64(g.MaxFrames()) {
		return fmt.Errorf("%w: %v s is more than %d frames", ErrDuration, duration, g.MaxFrames())
	}
	return nil
}

// FrameCount is the number of whole frames in duration seconds. It is 0
// for durations CheckDuration rejects.
func (g *Generator) FrameCount(duration float64) int {
	if duration <= 0 || g.CheckDuration(duration) != nil {
		return 0
	}
	return int(math.Floor(duration*float64(g.profile.FPS) + frameEpsilon))
}

// Generate renders FrameCount(duration) consecutive frames starting at
// start into a single buffer owned by the caller
func (g *Generator) Generate(start Timecode, duration float64) ([]float32, error) {
	if err := g.CheckDuration(duration); err != nil {
		return nil, err
	}
	if err := start.Validate(g.profile.FPS); err != nil {
		return nil, err
	}

	n, size := g.FrameCount(duration), g.FrameLen()
	buf := make([]float32, n*size)
	for i := 0; i < n; i++ {
		f, err := Encode(start.Add(i, g.profile.FPS), g.userBits, g.profile)
		if err != nil {
			return nil, err
		}
		modulate(buf[i*size:(i+1)*size], &f, g.half)
	}
	return buf, nil
}

// Generate renders duration seconds of LTC starting at start. See
// Generator.
func Generate(start Timecode, duration float64, fps, sampleRate int, ub UserBits) ([]float32, error) {
	g, err := NewGenerator(fps, sampleRate, ub)
	if err != nil {
		return nil, err
	}
	return g.Generate(start, duration)
}
