package ltc

import (
	"fmt"

	"github.com/cbsinteractive/pkg/video"
)

// Variant selects how bits 4-9 of a frame carry the frame tens digit
type Variant int

const (
	// Generic packs frame tens as a 2-bit binary number in bits 8-9 and
	// user bits field1 in bits 4-7.
	Generic Variant = iota

	// SixtyFPS replaces field1 with a frame >= 30 flag in bit 4 and
	// spreads the tens digit over bits 8-9 so that 60 frames fit.
	SixtyFPS
)

func (v Variant) String() string {
	switch v {
	case Generic:
		return "generic"
	case SixtyFPS:
		return "60fps"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Profile is a frame rate and the bit layout variant it implies
type Profile struct {
	FPS     int
	Variant Variant
}

// NewProfile returns the profile for an integer frame rate
func NewProfile(fps int) (Profile, error) {
	if fps <= 0 {
		return Profile{}, fmt.Errorf("%w: %d", ErrInvalidFPS, fps)
	}
	p := Profile{FPS: fps, Variant: Generic}
	if fps == 60 {
		p.Variant = SixtyFPS
	}
	return p, nil
}

// ProfileFor returns the profile of the nominal integer frame rate of
// a fractional rate, e.g. 30000/1001 counts as 30 non-drop.
func ProfileFor(rate video.Framerate) (Profile, error) {
	if rate.Empty() {
		return Profile{}, fmt.Errorf("%w: %d/%d", ErrInvalidFPS, rate.Numerator, rate.Denominator)
	}
	n, d := rate.Numerator, rate.Denominator
	if n < 0 || d < 0 {
		return Profile{}, fmt.Errorf("%w: %d/%d", ErrInvalidFPS, n, d)
	}
	return NewProfile((n + d - 1) / d)
}

func (p Profile) String() string {
	return fmt.Sprintf("%dfps/%s", p.FPS, p.Variant)
}

// packTens writes bits 4-9: the frame tens digit and, for the generic
// layout, user bits field1.
func (p Profile) packTens(f *Frame, frame int, ub UserBits) {
	tens := frame / 10
	switch p.Variant {
	case SixtyFPS:
		f.put(4, 4, 0)
		if frame >= 30 {
			f[4] = 1
		}
		f[8] = bit(tens == 1 || tens == 4)
		f[9] = bit(tens == 2 || tens == 5)
	default:
		f.put(4, 4, int(ub.Field(1)))
		f.put(8, 2, tens)
	}
}

// unpackTens is the inverse of packTens. The returned field1 is zero
// for the 60 fps layout.
func (p Profile) unpackTens(f *Frame) (tens int, field1 uint8) {
	switch p.Variant {
	case SixtyFPS:
		switch {
		case f[8] == 1:
			tens = 1
		case f[9] == 1:
			tens = 2
		}
		if f[4] == 1 {
			tens += 3
		}
		return tens, 0
	default:
		return f.get(8, 2), uint8(f.get(4, 4))
	}
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
