// Package userbits translates date, timezone, reel and camera metadata
// into the eight user bits nibbles carried by each LTC frame.
//
// The four byte groups are assigned as follows:
//
// 	group1  month, BCD
// 	group2  day of month, BCD
// 	group3  timezone: bit 7 set for UTC+, bits 0-6 hours
// 	group4  reel number 0-99 in BCD, or a one character camera id
//
// Group g occupies user bits fields 2g-1 (low nibble) and 2g (high nibble).
package userbits

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cbsinteractive/ltc-generator/ltc"
)

// Input is the metadata to encode. Empty strings and a nil Groups leave
// the corresponding user bits clear.
type Input struct {
	// Groups are raw byte groups 1-4, applied before the fields below
	Groups []int `json:"groups,omitempty"`

	Date     string `json:"date,omitempty"`     // YYYY-MM-DD
	Timezone string `json:"timezone,omitempty"` // UTC+H or UTC-HH
	Reel     string `json:"reel,omitempty"`     // 0-99
	Camera   string `json:"camera,omitempty"`   // one printable ASCII character

	// Fields override individual nibbles, keyed 1-8, after everything else
	Fields map[int]int `json:"fields,omitempty"`
}

// Empty reports whether in sets no user bits at all
func (in Input) Empty() bool {
	return len(in.Groups) == 0 && in.Date == "" && in.Timezone == "" &&
		in.Reel == "" && in.Camera == "" && len(in.Fields) == 0
}

// FormatError is returned for metadata that cannot be encoded
type FormatError struct {
	Input  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("user bits: %s %q: %s", e.Input, e.Value, e.Reason)
}

// Build encodes in as user bits
func Build(in Input) (ltc.UserBits, error) {
	var g [4]uint8
	if len(in.Groups) > len(g) {
		return ltc.UserBits{}, &FormatError{"groups", fmt.Sprint(in.Groups), "at most 4 groups"}
	}
	for i, v := range in.Groups {
		if v < 0 || v > 0xff {
			return ltc.UserBits{}, &FormatError{fmt.Sprintf("group%d", i+1), strconv.Itoa(v), "not in 0-255"}
		}
		g[i] = uint8(v)
	}

	if in.Date != "" {
		month, day, err := Date(in.Date)
		if err != nil {
			return ltc.UserBits{}, err
		}
		g[0], g[1] = month, day
	}
	if in.Timezone != "" {
		tz, err := Timezone(in.Timezone)
		if err != nil {
			return ltc.UserBits{}, err
		}
		g[2] = tz
	}
	if in.Reel != "" && in.Camera != "" {
		return ltc.UserBits{}, &FormatError{"camera", in.Camera, "reel and camera both use group 4"}
	}
	if in.Reel != "" {
		reel, err := Reel(in.Reel)
		if err != nil {
			return ltc.UserBits{}, err
		}
		g[3] = reel
	}
	if in.Camera != "" {
		cam, err := Camera(in.Camera)
		if err != nil {
			return ltc.UserBits{}, err
		}
		g[3] = cam
	}

	ub := ltc.UserBitsFromGroups(g)
	for n, v := range in.Fields {
		var err error
		if ub, err = ub.With(n, v); err != nil {
			return ltc.UserBits{}, err
		}
	}
	return ub, nil
}

// Date returns the BCD month and day of a YYYY-MM-DD date
func Date(s string) (month, day uint8, err error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, 0, &FormatError{"date", s, "want YYYY-MM-DD"}
	}
	return bcd(int(t.Month())), bcd(t.Day()), nil
}

// Timezone encodes a UTC offset such as UTC+9 or utc-05. The sign is
// bit 7, set for a positive offset, and the hours are binary.
func Timezone(s string) (uint8, error) {
	tz := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(tz, "UTC+") && !strings.HasPrefix(tz, "UTC-") {
		return 0, &FormatError{"timezone", s, "want UTC+HH or UTC-HH"}
	}
	h, err := strconv.Atoi(tz[4:])
	if err != nil || h < 0 || h > 23 {
		return 0, &FormatError{"timezone", s, "hours not in 0-23"}
	}
	var sign uint8
	if tz[3] == '+' {
		sign = 1
	}
	return sign<<7 | uint8(h), nil
}

// Reel encodes a reel number 0-99 as BCD
func Reel(s string) (uint8, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 99 {
		return 0, &FormatError{"reel", s, "not a number in 0-99"}
	}
	return bcd(n), nil
}

// Camera encodes a single printable ASCII character
func Camera(s string) (uint8, error) {
	if len(s) != 1 || s[0] < 0x20 || s[0] > 0x7e {
		return 0, &FormatError{"camera", s, "want one printable ASCII character"}
	}
	return s[0], nil
}

func bcd(n int) uint8 {
	return uint8(n/10<<4 | n%10)
}
