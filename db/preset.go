package db

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/cbsinteractive/pkg/video"

	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/userbits"
)

const presetPrefix = "preset:"

var presetName = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// Preset is a named set of render parameters
type Preset struct {
	Name       string          `json:"name"`
	FPS        int             `json:"fps,omitempty"`
	Framerate  video.Framerate `json:"framerate,omitempty"`
	SampleRate int             `json:"sampleRate,omitempty"`
	BitDepth   int             `json:"bitDepth,omitempty"`
	UserBits   *ltc.UserBits   `json:"userBits,omitempty"`
	Semantic   userbits.Input  `json:"semantic,omitempty"`
}

// Validate checks that the preset describes a renderable configuration
func (p *Preset) Validate() error {
	if !presetName.MatchString(p.Name) {
		return fmt.Errorf("invalid preset name %q", p.Name)
	}
	if p.UserBits != nil && !p.Semantic.Empty() {
		return errors.New("userBits and semantic are mutually exclusive")
	}
	prof, err := p.Profile()
	if err != nil {
		return err
	}
	if p.SampleRate != 0 && p.SampleRate < ltc.MinSampleRate(prof.FPS) {
		return fmt.Errorf("%w: %d Hz at %d fps", ltc.ErrSampleRateTooLow, p.SampleRate, prof.FPS)
	}
	switch p.BitDepth {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", p.BitDepth)
	}
	_, err = p.Bits()
	return err
}

// Profile returns the frame rate profile of the preset
func (p *Preset) Profile() (ltc.Profile, error) {
	return ProfileOf(p.FPS, p.Framerate)
}

// ProfileOf returns the profile of an integer frame rate, or of the
// fractional rate when fps is zero
func ProfileOf(fps int, rate video.Framerate) (ltc.Profile, error) {
	if fps != 0 || rate.Empty() {
		return ltc.NewProfile(fps)
	}
	return ltc.ProfileFor(rate)
}

// Bits returns the preset's user bits
func (p *Preset) Bits() (ltc.UserBits, error) {
	if p.UserBits != nil {
		return *p.UserBits, nil
	}
	return userbits.Build(p.Semantic)
}

// Repository stores presets
type Repository interface {
	GetPreset(name string) (*Preset, error)
	PutPreset(p *Preset) error
	DeletePreset(name string) error
}

func (c *Client) GetPreset(name string) (*Preset, error) {
	var p Preset
	if err := c.Get(presetPrefix+name, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) PutPreset(p *Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return c.Put(presetPrefix+p.Name, p)
}

func (c *Client) DeletePreset(name string) error {
	return c.Delete(presetPrefix + name)
}
