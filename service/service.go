package service

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cbsinteractive/pkg/video"
	"github.com/mitchellh/hashstructure"
	"github.com/sirupsen/logrus"

	"github.com/cbsinteractive/ltc-generator/config"
	"github.com/cbsinteractive/ltc-generator/db"
	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/service/exceptions"
	"github.com/cbsinteractive/ltc-generator/userbits"
	"github.com/cbsinteractive/ltc-generator/wav"
)

var (
	ErrDurationLimit = errors.New("duration exceeds the render limit")
	ErrSampleLimit   = errors.New("render exceeds the sample limit")
	ErrStorage       = errors.New("storage error")
)

// RenderRequest describes one LTC render. Unset fields are taken from
// the named preset and then from the server configuration.
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

// resolved is a fully resolved and validated RenderRequest
type resolved struct {
	gen      *ltc.Generator
	start    ltc.Timecode
	frames   int
	bitDepth int
}

// etag identifies the rendered output; equal tags mean identical audio
func (r resolved) etag() (string, error) {
	h, err := hashstructure.Hash(struct {
		FPS, SampleRate, BitDepth, Frames int
		Start                             string
		UserBits                          uint32
	}{
		r.gen.Profile().FPS, r.gen.SampleRate(), r.bitDepth, r.frames,
		r.start.String(),
		r.gen.UserBits().Uint32(),
	}, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`"%016x"`, h), nil
}

type Server struct {
	Config      *config.Config
	DB          db.Repository
	logger      *logrus.Logger
	errReporter exceptions.Reporter
	metrics     *Metrics
	now         func() time.Time

	request
}

// New returns a Server rendering with the defaults in cfg and storing
// presets in repo
func New(cfg *config.Config, repo db.Repository, logger *logrus.Logger, reporter exceptions.Reporter, m *Metrics) *Server {
	if reporter == nil {
		reporter = &exceptions.NoopReporter{}
	}
	if m == nil {
		m = NewMetrics()
	}
	return &Server{
		Config:      cfg,
		DB:          repo,
		logger:      logger,
		errReporter: reporter,
		metrics:     m,
		now:         time.Now,
	}
}

func (s Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.request = newRequest(rw, r, s.logger)
	defer s.request.finalize()
	route := s.serve()
	s.metrics.Requests.WithLabelValues(route, strconv.Itoa(s.code)).Inc()
}

// serve dispatches the request and returns the route name for metrics
func (s *Server) serve() string {
	switch route := s.chop(); route {
	case "render":
		if s.method() != http.MethodPost {
			s.writeerror("method not allowed", http.StatusMethodNotAllowed, nil)
			return route
		}
		s.render()
		return route
	case "presets":
		name := s.chop()
		if name == "" {
			s.writeerror("missing preset name", http.StatusBadRequest, nil)
			return route
		}
		switch s.method() {
		case http.MethodGet:
			s.getPreset(name)
		case http.MethodPost, http.MethodPut:
			s.putPreset(name)
		case http.MethodDelete:
			s.deletePreset(name)
		default:
			s.writeerror("method not allowed", http.StatusMethodNotAllowed, nil)
		}
		return route
	case "healthcheck":
		s.healthcheck()
		return route
	default:
		s.writeerror("bad request path", http.StatusNotFound, nil)
		return "unknown"
	}
}

func (s *Server) method() string {
	return s.request.r.Method
}

func (s *Server) render() {
	var req RenderRequest
	if !s.request.UnmarshalJSON(&req) {
		s.metrics.RenderErrors.WithLabelValues("request").Inc()
		s.writeerror("bad render request", http.StatusBadRequest, s.err)
		return
	}
	rd, err := s.resolve(req)
	if err != nil {
		code := statusOf(err)
		s.metrics.RenderErrors.WithLabelValues(http.StatusText(code)).Inc()
		if code >= 500 {
			s.errReporter.ReportException(err)
		}
		s.writeerror("render failed", code, err)
		return
	}

	tag, err := rd.etag()
	if err != nil {
		s.errReporter.ReportException(err)
	} else {
		s.w.Header().Set("ETag", tag)
		if s.r.Header.Get("If-None-Match") == tag {
			s.code = http.StatusNotModified
			s.w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	began := time.Now()
	fps := rd.gen.Profile().FPS
	samples, err := rd.gen.Generate(rd.start, float64(rd.frames)/float64(fps))
	var data []byte
	if err == nil {
		data, err = wav.Encode(samples, rd.gen.SampleRate(), rd.bitDepth)
	}
	if err != nil {
		s.metrics.RenderErrors.WithLabelValues("internal").Inc()
		s.errReporter.ReportException(err)
		s.writeerror("render failed", http.StatusInternalServerError, err)
		return
	}
	s.metrics.RenderDuration.Observe(time.Since(began).Seconds())
	s.metrics.Renders.WithLabelValues(rd.gen.Profile().Variant.String()).Inc()
	s.metrics.FramesRendered.Add(float64(rd.frames))

	rng := rd.start.Range(rd.frames, fps)
	s.log(
		"profile", rd.gen.Profile(),
		"start", rd.start,
		"frames", rd.frames,
		"range", rng,
		"userbits", rd.gen.UserBits(),
	)
	h := s.w.Header()
	h.Set("X-Timecode-Start", rd.start.String())
	h.Set("X-Timecode-End", rd.start.Add(rd.frames, fps).String())
	h.Set("X-Timecode-Fps", strconv.Itoa(fps))
	h.Set("X-Duration", rng.Size().String())
	s.writebody(data, "audio/wav")
}

// resolve fills unset request fields from the preset and configuration
// defaults and validates the result
func (s *Server) resolve(req RenderRequest) (resolved, error) {
	if req.Preset != "" {
		p, err := s.DB.GetPreset(req.Preset)
		if err != nil {
			return resolved{}, err
		}
		req = merge(req, p)
	}
	defaults := s.Config.LTC
	if req.FPS == 0 && req.Framerate.Empty() {
		req.FPS = defaults.FPS
	}
	if req.SampleRate == 0 {
		req.SampleRate = defaults.SampleRate
	}
	if req.BitDepth == 0 {
		req.BitDepth = defaults.BitDepth
	}
	if req.Duration == 0 {
		req.Duration = defaults.Duration
	}
	if limit := s.Config.Server.MaxRenderSeconds; limit > 0 && req.Duration > limit {
		return resolved{}, fmt.Errorf("%w: %vs > %vs", ErrDurationLimit, req.Duration, limit)
	}
	if req.Duration < 0 {
		return resolved{}, fmt.Errorf("%w: %v", ltc.ErrDuration, req.Duration)
	}

	prof, err := db.ProfileOf(req.FPS, req.Framerate)
	if err != nil {
		return resolved{}, err
	}
	ub := ltc.UserBits{}
	if req.UserBits != nil {
		ub = *req.UserBits
	} else if ub, err = userbits.Build(req.Semantic); err != nil {
		return resolved{}, err
	}
	gen, err := ltc.NewGeneratorProfile(prof, req.SampleRate, ub)
	if err != nil {
		return resolved{}, err
	}

	if err := gen.CheckDuration(req.Duration); err != nil {
		return resolved{}, err
	}
	frames := gen.FrameCount(req.Duration)
	if limit := s.Config.Server.MaxRenderSamples; limit > 0 && frames*gen.FrameLen() > limit {
		return resolved{}, fmt.Errorf("%w: %d frames of %d samples > %d", ErrSampleLimit, frames, gen.FrameLen(), limit)
	}

	var start ltc.Timecode
	switch {
	case req.CurrentTime:
		start = ltc.FromTime(s.now(), prof.FPS)
	case req.Start != "":
		if start, err = ltc.Parse(req.Start, prof.FPS); err != nil {
			return resolved{}, err
		}
	}
	return resolved{
		gen:      gen,
		start:    start,
		frames:   frames,
		bitDepth: req.BitDepth,
	}, nil
}

// merge fills the fields of req left unset from p
func merge(req RenderRequest, p *db.Preset) RenderRequest {
	if req.FPS == 0 && req.Framerate.Empty() {
		req.FPS, req.Framerate = p.FPS, p.Framerate
	}
	if req.SampleRate == 0 {
		req.SampleRate = p.SampleRate
	}
	if req.BitDepth == 0 {
		req.BitDepth = p.BitDepth
	}
	if req.UserBits == nil && req.Semantic.Empty() {
		req.UserBits, req.Semantic = p.UserBits, p.Semantic
	}
	return req
}

func (s *Server) getPreset(name string) {
	p, err := s.DB.GetPreset(name)
	if err != nil {
		s.writeerror("get preset failed", statusOf(err), err)
		return
	}
	s.writebody(p)
}

func (s *Server) putPreset(name string) {
	p := &db.Preset{}
	if !s.request.UnmarshalJSON(p) {
		s.writeerror("bad preset", http.StatusBadRequest, s.err)
		return
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Name != name {
		s.writeerror("bad preset", http.StatusBadRequest, fmt.Errorf("name %q does not match path %q", p.Name, name))
		return
	}
	if err := p.Validate(); err != nil {
		s.writeerror("bad preset", http.StatusBadRequest, err)
		return
	}
	if err := s.DB.PutPreset(p); err != nil {
		err = fmt.Errorf("%w: %v", ErrStorage, err)
		s.errReporter.ReportException(err)
		s.writeerror("put preset failed", http.StatusInternalServerError, err)
		return
	}
	s.writebody(p)
}

func (s *Server) deletePreset(name string) {
	if err := s.DB.DeletePreset(name); err != nil {
		s.writeerror("delete preset failed", statusOf(err), err)
		return
	}
	s.writebody(map[string]string{"deleted": name})
}

func (s *Server) healthcheck() {
	if p, ok := s.DB.(interface{ Ping() error }); ok {
		if err := p.Ping(); err != nil {
			s.writeerror("unhealthy", http.StatusServiceUnavailable, fmt.Errorf("%w: %v", ErrStorage, err))
			return
		}
	}
	s.writebody(map[string]bool{"ok": true})
}

// statusOf maps validation errors to 400, missing presets to 404 and
// anything else to 500
func statusOf(err error) int {
	var (
		rangeErr  *ltc.UserBitsFieldRangeError
		formatErr *userbits.FormatError
	)
	switch {
	case errors.Is(err, db.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.As(err, &rangeErr), errors.As(err, &formatErr):
		return http.StatusBadRequest
	}
	for _, e := range []error{
		ErrDurationLimit,
		ErrSampleLimit,
		ltc.ErrDuration,
		ltc.ErrInvalidFPS,
		ltc.ErrSampleRateTooLow,
		ltc.ErrFrameOutOfRange,
		ltc.ErrTimecodeRange,
		ltc.ErrTimecodeSyntax,
	} {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
