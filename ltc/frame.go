package ltc

import (
	"fmt"
	"strings"
)

const (
	// FrameBits is the number of bits in one LTC frame
	FrameBits = 80

	// SyncWord is the fixed pattern in bits 64-79, in transmission order
	SyncWord = "0011111111111101"

	syncPos   = 64
	parityPos = 27
)

// Frame is one 80-bit LTC frame, one bit per element in transmission
// order. Each element is 0 or 1.
type Frame [FrameBits]uint8

// bit positions of the BCD and flag fields (SMPTE 12M)
const (
	posFrameUnits   = 0
	posDropFrame    = 10
	posColorFrame   = 11
	posField2       = 12
	posSecondUnits  = 16
	posField3       = 20
	posSecondTens   = 24
	posField4       = 28
	posMinuteUnits  = 32
	posField5       = 36
	posMinuteTens   = 40
	posBinaryGroup0 = 43
	posField6       = 44
	posHourUnits    = 48
	posField7       = 52
	posHourTens     = 56
	posClock        = 58
	posBinaryGroup1 = 59
	posField8       = 60
)

var fieldPos = [userBitsFields]int{-1, posField2, posField3, posField4, posField5, posField6, posField7, posField8}

// Encode packs tc and ub into an LTC frame using the layout selected by
// p. The drop-frame, clock and binary group flags are clear and the
// color frame flag is set. Bit 27 is set when needed to make the number
// of ones in the frame even.
func Encode(tc Timecode, ub UserBits, p Profile) (Frame, error) {
	var f Frame
	if tc.Frame < 0 || tc.Frame >= p.FPS {
		return f, fmt.Errorf("%w: frame %d, fps %d", ErrFrameOutOfRange, tc.Frame, p.FPS)
	}

	f.put(posFrameUnits, 4, tc.Frame%10)
	p.packTens(&f, tc.Frame, ub)
	f[posDropFrame] = 0
	f[posColorFrame] = 1

	f.put(posSecondUnits, 4, tc.Seconds%10)
	f.put(posSecondTens, 3, tc.Seconds/10)
	f.put(posMinuteUnits, 4, tc.Minutes%10)
	f.put(posMinuteTens, 3, tc.Minutes/10)
	f[posBinaryGroup0] = 0
	f.put(posHourUnits, 4, tc.Hours%10)
	f.put(posHourTens, 2, tc.Hours/10)
	f[posClock] = 0
	f[posBinaryGroup1] = 0

	for i := 2; i <= userBitsFields; i++ {
		f.put(fieldPos[i-1], 4, int(ub.Field(i)))
	}
	for i, c := range SyncWord {
		f[syncPos+i] = uint8(c - '0')
	}

	if f.Ones()%2 == 1 {
		f[parityPos] = 1
	}
	return f, nil
}

// Decode unpacks the timecode and user bits from f. With the 60 fps
// layout field1 is not transmitted and decodes as zero.
func (f Frame) Decode(p Profile) (Timecode, UserBits, error) {
	var (
		tc Timecode
		ub UserBits
	)
	if f.syncWord() != SyncWord {
		return tc, ub, fmt.Errorf("%w: %s", ErrSyncWord, f.syncWord())
	}

	tens, field1 := p.unpackTens(&f)
	digits := []struct {
		dst         *int
		units, tens int
	}{
		{&tc.Frame, f.get(posFrameUnits, 4), tens},
		{&tc.Seconds, f.get(posSecondUnits, 4), f.get(posSecondTens, 3)},
		{&tc.Minutes, f.get(posMinuteUnits, 4), f.get(posMinuteTens, 3)},
		{&tc.Hours, f.get(posHourUnits, 4), f.get(posHourTens, 2)},
	}
	for _, d := range digits {
		if d.units > 9 {
			return Timecode{}, ub, fmt.Errorf("%w: %d", ErrBCD, d.units)
		}
		*d.dst = d.tens*10 + d.units
	}

	ub.f[0] = field1
	for i := 2; i <= userBitsFields; i++ {
		ub.f[i-1] = uint8(f.get(fieldPos[i-1], 4))
	}
	return tc, ub, nil
}

// Ones returns the number of bits set in f
func (f Frame) Ones() (n int) {
	for _, b := range f {
		n += int(b)
	}
	return n
}

// String returns the frame as 80 characters of '0' and '1'
func (f Frame) String() string {
	var b strings.Builder
	b.Grow(FrameBits)
	for _, v := range f {
		b.WriteByte('0' + v)
	}
	return b.String()
}

func (f Frame) syncWord() string {
	return f.String()[syncPos:]
}

// put writes the low width bits of v into f starting at pos, least
// significant bit first
func (f *Frame) put(pos, width, v int) {
	for i := 0; i < width; i++ {
		f[pos+i] = uint8(v >> i & 1)
	}
}

func (f *Frame) get(pos, width int) (v int) {
	for i := 0; i < width; i++ {
		v |= int(f[pos+i]&1) << i
	}
	return v
}
