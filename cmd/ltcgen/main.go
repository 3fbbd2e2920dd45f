// Command ltcgen renders SMPTE linear timecode to a WAV file on local
// disk, S3 or GCS.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cbsinteractive/ltc-generator/config"
	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/storage"
	"github.com/cbsinteractive/ltc-generator/userbits"
	"github.com/cbsinteractive/ltc-generator/wav"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		log.Fatal(err)
	}
	opts, err := parseFlags(os.Args[1:], cfg.LTC)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if err := run(context.Background(), opts, logger, time.Now); err != nil {
		logger.Fatal(err)
	}
}

// options are the parsed command line
type options struct {
	config.LTC

	hours, minutes, seconds, frames int
	useClock                        bool // set when any of hours, minutes, seconds or frames was given
	currentTime                     bool
	verify                          bool

	groups [4]int // -1 leaves the group to LTC_USER_GROUPS
	field1 int    // -1 leaves field 1 alone
}

func parseFlags(args []string, defaults config.LTC) (*options, error) {
	o := &options{LTC: defaults}
	fs := flag.NewFlagSet("ltcgen", flag.ContinueOnError)
	fs.IntVar(&o.FPS, "fps", o.FPS, "frames per second")
	fs.IntVar(&o.SampleRate, "sample-rate", o.SampleRate, "sample rate in Hz")
	fs.IntVar(&o.BitDepth, "bit-depth", o.BitDepth, "WAV bit depth: 16, 24 or 32")
	fs.StringVar(&o.Start, "start", o.Start, "start timecode HH:MM:SS:FF")
	fs.IntVar(&o.hours, "hours", 0, "start hours (0-23)")
	fs.IntVar(&o.minutes, "minutes", 0, "start minutes (0-59)")
	fs.IntVar(&o.seconds, "seconds", 0, "start seconds (0-59)")
	fs.IntVar(&o.frames, "frames", 0, "start frame (0 to fps-1)")
	fs.Float64Var(&o.Duration, "duration", o.Duration, "length in seconds")
	fs.StringVar(&o.Output, "output", o.Output, "output path, s3://bucket/key or gs://bucket/key")
	fs.BoolVar(&o.currentTime, "current-time", false, "start at the current wall-clock time")
	fs.BoolVar(&o.verify, "verify", false, "demodulate the render and check every frame")

	fs.StringVar(&o.Date, "date", o.Date, "user bits date YYYY-MM-DD")
	fs.StringVar(&o.Timezone, "timezone", o.Timezone, "user bits timezone UTC+HH")
	fs.StringVar(&o.Reel, "reel", o.Reel, "user bits reel number (0-99)")
	fs.StringVar(&o.Camera, "camera", o.Camera, "user bits camera id, one character")
	for i := range o.groups {
		fs.IntVar(&o.groups[i], "user-group"+strconv.Itoa(i+1), -1, fmt.Sprintf("user bits group %d (0-255)", i+1))
	}
	fs.IntVar(&o.field1, "user-bits-field1", -1, "user bits field 1 (0-15)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hours", "minutes", "seconds", "frames":
			o.useClock = true
		}
	})
	return o, nil
}

// input returns the user bits metadata of the command line
func (o *options) input() userbits.Input {
	in := o.Semantic()
	set := false
	var groups [4]int
	copy(groups[:], in.Groups)
	for i, g := range o.groups {
		if g >= 0 {
			groups[i], set = g, true
		}
	}
	if set {
		in.Groups = groups[:]
	}
	if o.field1 >= 0 {
		in.Fields = map[int]int{1: o.field1}
	}
	return in
}

// start returns the first timecode to render
func (o *options) start(now func() time.Time) (ltc.Timecode, error) {
	switch {
	case o.currentTime:
		return ltc.FromTime(now(), o.FPS), nil
	case o.useClock:
		tc := ltc.Timecode{Hours: o.hours, Minutes: o.minutes, Seconds: o.seconds, Frame: o.frames}
		return tc, tc.Validate(o.FPS)
	}
	return o.StartTimecode()
}

func run(ctx context.Context, o *options, logger logrus.FieldLogger, now func() time.Time) error {
	ub, err := userbits.Build(o.input())
	if err != nil {
		return err
	}
	gen, err := ltc.NewGenerator(o.FPS, o.SampleRate, ub)
	if err != nil {
		return err
	}
	start, err := o.start(now)
	if err != nil {
		return err
	}

	samples, err := gen.Generate(start, o.Duration)
	if err != nil {
		return errors.Wrap(err, "generating ltc")
	}
	frames := len(samples) / gen.FrameLen()
	if o.verify {
		if err := verify(gen, samples, start); err != nil {
			return err
		}
	}

	data, err := wav.Encode(samples, o.SampleRate, o.BitDepth)
	if err != nil {
		return err
	}
	if err := storage.Put(ctx, o.Output, "audio/wav", data); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"output":   o.Output,
		"profile":  gen.Profile().String(),
		"start":    start.String(),
		"end":      start.Add(frames, o.FPS).String(),
		"frames":   frames,
		"samples":  len(samples),
		"bytes":    len(data),
		"userbits": ub.String(),
		"verified": o.verify,
	}).Info("wrote ltc")
	return nil
}

// verify demodulates samples and checks that frame i decodes to start+i.
// The generic layout only carries the two low bits of the frame tens.
func verify(gen *ltc.Generator, samples []float32, start ltc.Timecode) error {
	frames, err := ltc.Demodulate(samples, gen.HalfSamplesPerBit())
	if err != nil {
		return errors.Wrap(err, "verifying render")
	}
	p := gen.Profile()
	for i, f := range frames {
		got, _, err := f.Decode(p)
		if err != nil {
			return errors.Wrapf(err, "verifying frame %d", i)
		}
		want := start.Add(i, p.FPS)
		if p.Variant == ltc.Generic {
			want.Frame = want.Frame/10%4*10 + want.Frame%10
		}
		if got != want {
			return errors.Errorf("verifying frame %d: decoded %s, want %s", i, got, want)
		}
	}
	return nil
}
