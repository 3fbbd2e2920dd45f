// Package config loads the generator, service and storage settings from
// the environment.
package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cbsinteractive/ltc-generator/db"
	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/userbits"
)

// Config is the complete application configuration
type Config struct {
	LTC    LTC
	Server Server
	Redis  *db.Config
	Log    Log

	SentryDSN string `envconfig:"SENTRY_DSN"`
	Env       string `envconfig:"ENV" default:"dev"`
}

// LTC holds the render parameters used when a request or the command
// line leaves them unset
type LTC struct {
	FPS        int     `envconfig:"LTC_FPS" default:"60"`
	SampleRate int     `envconfig:"LTC_SAMPLE_RATE" default:"48000"`
	BitDepth   int     `envconfig:"LTC_BIT_DEPTH" default:"16"`
	Duration   float64 `envconfig:"LTC_DURATION" default:"5"`
	Start      string  `envconfig:"LTC_START" default:"00:00:00:00"`
	Output     string  `envconfig:"LTC_OUTPUT" default:"ltc_output.wav"`

	Date       string `envconfig:"LTC_DATE"`
	Timezone   string `envconfig:"LTC_TIMEZONE"`
	Reel       string `envconfig:"LTC_REEL"`
	Camera     string `envconfig:"LTC_CAMERA"`
	UserGroups []int  `envconfig:"LTC_USER_GROUPS"`
}

// Server configures the HTTP render service
type Server struct {
	Addr             string  `envconfig:"HTTP_ADDR" default:":8080"`
	MaxRenderSeconds float64 `envconfig:"MAX_RENDER_SECONDS" default:"600"`
	MaxRenderSamples int     `envconfig:"MAX_RENDER_SAMPLES" default:"60000000"`
}

// Log configures the logrus logger
type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// LoadConfig loads the configuration from environment variables, it
// panics on malformed values
func LoadConfig() *Config {
	var cfg Config
	envconfig.MustProcess("", &cfg)
	return &cfg
}

// Load is LoadConfig returning the error instead of panicking
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "loading config from environment")
	}
	return &cfg, nil
}

// Logger returns a logger writing to stderr at the configured level
func (l Log) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing log level %q", l.Level)
	}
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Level = level
	switch l.Format {
	case "json", "":
		logger.Formatter = &logrus.JSONFormatter{}
	case "text":
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return nil, errors.Errorf("unknown log format %q", l.Format)
	}
	return logger, nil
}

// Semantic returns the user bits metadata configured for l
func (l LTC) Semantic() userbits.Input {
	return userbits.Input{
		Groups:   l.UserGroups,
		Date:     l.Date,
		Timezone: l.Timezone,
		Reel:     l.Reel,
		Camera:   l.Camera,
	}
}

// UserBits validates and encodes the configured user bits
func (l LTC) UserBits() (ltc.UserBits, error) {
	return userbits.Build(l.Semantic())
}

// Generator validates the frame rate, sample rate and user bits and
// returns a generator for them
func (l LTC) Generator() (*ltc.Generator, error) {
	ub, err := l.UserBits()
	if err != nil {
		return nil, err
	}
	return ltc.NewGenerator(l.FPS, l.SampleRate, ub)
}

// StartTimecode parses Start at the configured frame rate
func (l LTC) StartTimecode() (ltc.Timecode, error) {
	return ltc.Parse(l.Start, l.FPS)
}
