package ltc

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/cbsinteractive/pkg/timecode"
)

const (
	hoursPerDay   = 24
	minutesPerHr  = 60
	secondsPerMin = 60
)

// Timecode is a non-drop-frame time of day bound to a frame rate
// supplied by the caller. It is a value type; Advance and Add return
// new timecodes.
type Timecode struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
	Frame   int `json:"frame"`
}

// Advance returns the timecode one frame later, wrapping at 24:00:00:00.
// Every frame number is counted; no drop-frame skipping is applied.
func (t Timecode) Advance(fps int) Timecode {
	t.Frame++
	if t.Frame < fps {
		return t
	}
	t.Frame = 0
	t.Seconds++
	if t.Seconds < secondsPerMin {
		return t
	}
	t.Seconds = 0
	t.Minutes++
	if t.Minutes < minutesPerHr {
		return t
	}
	t.Minutes = 0
	t.Hours = (t.Hours + 1) % hoursPerDay
	return t
}

// Add returns the timecode n frames later. It is equivalent to calling
// Advance n times. Negative n counts backwards through midnight.
func (t Timecode) Add(n, fps int) Timecode {
	if fps <= 0 {
		return t
	}
	day := hoursPerDay * minutesPerHr * secondsPerMin * fps
	f := (t.Frames(fps) + n%day) % day
	if f < 0 {
		f += day
	}
	return fromFrames(f, fps)
}

// Frames returns the number of frames elapsed since 00:00:00:00
func (t Timecode) Frames(fps int) int {
	return ((t.Hours*minutesPerHr+t.Minutes)*secondsPerMin+t.Seconds)*fps + t.Frame
}

func fromFrames(f, fps int) Timecode {
	s := f / fps
	return Timecode{
		Hours:   s / 3600 % hoursPerDay,
		Minutes: s / 60 % minutesPerHr,
		Seconds: s % secondsPerMin,
		Frame:   f % fps,
	}
}

// Validate checks every field against its range for the given frame rate
func (t Timecode) Validate(fps int) error {
	if fps <= 0 {
		return ErrInvalidFPS
	}
	if t.Frame < 0 || t.Frame >= fps {
		return fmt.Errorf("%w: frame %d, fps %d", ErrFrameOutOfRange, t.Frame, fps)
	}
	switch {
	case t.Hours < 0 || t.Hours >= hoursPerDay:
		return fmt.Errorf("%w: hours %d", ErrTimecodeRange, t.Hours)
	case t.Minutes < 0 || t.Minutes >= minutesPerHr:
		return fmt.Errorf("%w: minutes %d", ErrTimecodeRange, t.Minutes)
	case t.Seconds < 0 || t.Seconds >= secondsPerMin:
		return fmt.Errorf("%w: seconds %d", ErrTimecodeRange, t.Seconds)
	}
	return nil
}

// String outputs the timecode in HH:MM:SS:FF format
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds, t.Frame)
}

// Range returns the interval, in seconds since midnight, covered by n
// frames starting at t
func (t Timecode) Range(n, fps int) timecode.Range {
	if fps <= 0 {
		return timecode.Range{}
	}
	start := float64(t.Frames(fps)) / float64(fps)
	return timecode.Range{start, start + float64(n)/float64(fps)}
}

var timecodePattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2}):(\d{1,2})(?:[:;](\d{1,3}))?$`)

// Parse parses an input string in HH:MM:SS:FF, HH:MM:SS;FF, or HH:MM:SS
// format. The result is validated against fps.
func Parse(s string, fps int) (Timecode, error) {
	m := timecodePattern.FindStringSubmatch(s)
	if m == nil {
		return Timecode{}, fmt.Errorf("%w: %q", ErrTimecodeSyntax, s)
	}
	var t Timecode
	for i, dst := range []*int{&t.Hours, &t.Minutes, &t.Seconds, &t.Frame} {
		if m[i+1] != "" {
			*dst, _ = strconv.Atoi(m[i+1])
		}
	}
	if err := t.Validate(fps); err != nil {
		return Timecode{}, err
	}
	return t, nil
}

// FromTime returns the timecode of the wall-clock time t, with the
// frame derived from the sub-second part of t
func FromTime(t time.Time, fps int) Timecode {
	return Timecode{
		Hours:   t.Hour(),
		Minutes: t.Minute(),
		Seconds: t.Second(),
		Frame:   int(int64(t.Nanosecond()) * int64(fps) / int64(time.Second)),
	}
}
