// Package client is a Go client for the LTC render service.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cbsinteractive/pkg/video"

	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/userbits"
)

const (
	defaultTimeout = 30 * time.Second
	defaultBaseURL = "http://localhost:8080"
)

// RenderRequest describes one render. Zero fields take the preset's or
// the server's defaults.
type RenderRequest struct {
	Preset      string          `json:"preset,omitempty"`
	FPS         int             `json:"fps,omitempty"`
	Framerate   video.Framerate `json:"framerate,omitempty"`
	SampleRate  int             `json:"sampleRate,omitempty"`
	BitDepth    int             `json:"bitDepth,omitempty"`
	Start       string          `json:"start,omitempty"`
	CurrentTime bool            `json:"currentTime,omitempty"`
	Duration    float64         `json:"duration,omitempty"`
	UserBits    *ltc.UserBits   `json:"userBits,omitempty"`
	Semantic    userbits.Input  `json:"semantic,omitempty"`
}

// Render is a rendered WAV file and the timecode range it covers
type Render struct {
	WAV   []byte
	ETag  string
	Start string
	End   string
	FPS   int
}

// Preset is a named set of render defaults
type Preset struct {
	Name       string          `json:"name"`
	FPS        int             `json:"fps,omitempty"`
	Framerate  video.Framerate `json:"framerate,omitempty"`
	SampleRate int             `json:"sampleRate,omitempty"`
	BitDepth   int             `json:"bitDepth,omitempty"`
	UserBits   *ltc.UserBits   `json:"userBits,omitempty"`
	Semantic   userbits.Input  `json:"semantic,omitempty"`
}

// Client talks to the LTC render service at Base
type Client struct {
	Base   *url.URL
	Client *http.Client
}

// Render renders req and returns the WAV file
func (c *Client) Render(ctx context.Context, req RenderRequest) (Render, error) {
	c.ensure()

	body, hdr, err := c.raw(ctx, http.MethodPost, "/render", req)
	if err != nil {
		return Render{}, err
	}
	fps, _ := strconv.Atoi(hdr.Get("X-Timecode-Fps"))
	return Render{
		WAV:   body,
		ETag:  hdr.Get("ETag"),
		Start: hdr.Get("X-Timecode-Start"),
		End:   hdr.Get("X-Timecode-End"),
		FPS:   fps,
	}, nil
}

// GetPreset returns the named preset
func (c *Client) GetPreset(ctx context.Context, name string) (Preset, error) {
	c.ensure()

	var p Preset
	if err := c.getResource(ctx, &p, "/presets/"+url.PathEscape(name)); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// PutPreset creates or replaces a preset and returns it as stored
func (c *Client) PutPreset(ctx context.Context, p Preset) (Preset, error) {
	c.ensure()

	var stored Preset
	if err := c.postResource(ctx, p, &stored, "/presets/"+url.PathEscape(p.Name)); err != nil {
		return Preset{}, err
	}
	return stored, nil
}

// DeletePreset removes the named preset
func (c *Client) DeletePreset(ctx context.Context, name string) error {
	c.ensure()

	var resp struct {
		Deleted string `json:"deleted"`
	}
	return c.removeResource(ctx, &resp, "/presets/"+url.PathEscape(name))
}

func (c *Client) ensure() {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: defaultTimeout}
	}

	if c.Base == nil {
		c.Base = urlMust(url.Parse(defaultBaseURL))
	}
}

func urlMust(u *url.URL, _ error) *url.URL { return u }
