package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/cbsinteractive/ltc-generator/config"
	"github.com/cbsinteractive/ltc-generator/db"
	"github.com/cbsinteractive/ltc-generator/ltc"
	"github.com/cbsinteractive/ltc-generator/test"
	"github.com/cbsinteractive/ltc-generator/userbits"
	"github.com/cbsinteractive/ltc-generator/wav"
)

type recordingReporter struct{ errs []error }

func (r *recordingReporter) ReportException(err error) { r.errs = append(r.errs, err) }

func newTestServer(repo db.Repository) (*Server, *recordingReporter) {
	logger := logrus.New()
	logger.Out = io.Discard
	cfg := &config.Config{
		LTC:    config.LTC{FPS: 25, SampleRate: 48000, BitDepth: 16, Duration: 1},
		Server: config.Server{MaxRenderSeconds: 10, MaxRenderSamples: 1000000},
	}
	rep := &recordingReporter{}
	srv := New(cfg, repo, logger, rep, NewMetrics())
	srv.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 15, int(time.Second/5), time.UTC) }
	return srv, rep
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, hdr ...string) *http.Response {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

func decodeRender(t *testing.T, data []byte, fps int) []ltc.Timecode {
	t.Helper()
	samples, rate, err := wav.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	frames, err := ltc.Demodulate(samples, ltc.SamplesPerBit(fps, rate)/2)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := ltc.NewProfile(fps)
	var tcs []ltc.Timecode
	for _, f := range frames {
		tc, _, err := f.Decode(p)
		if err != nil {
			t.Fatal(err)
		}
		tcs = append(tcs, tc)
	}
	return tcs
}

func TestRender(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	resp := do(t, srv, "POST", "/render", RenderRequest{FPS: 30, Start: "01:00:00:28", Duration: 0.1})
	body := test.AssertStatus(resp, http.StatusOK, "POST /render", t)

	if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("X-Timecode-Start"); got != "01:00:00:28" {
		t.Errorf("X-Timecode-Start = %q", got)
	}
	if got := resp.Header.Get("X-Timecode-End"); got != "01:00:01:01" {
		t.Errorf("X-Timecode-End = %q", got)
	}
	want := []ltc.Timecode{{Hours: 1, Minutes: 0, Seconds: 0, Frame: 28}, {Hours: 1, Minutes: 0, Seconds: 0, Frame: 29}, {Hours: 1, Minutes: 0, Seconds: 1, Frame: 0}}
	if diff := cmp.Diff(want, decodeRender(t, body, 30)); diff != "" {
		t.Errorf("decoded timecodes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDefaults(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	resp := do(t, srv, "POST", "/render", "{}")
	body := test.AssertStatus(resp, http.StatusOK, "POST /render", t)
	if tcs := decodeRender(t, body, 25); len(tcs) != 25 || tcs[24] != (ltc.Timecode{Frame: 24}) {
		t.Errorf("default render decoded to %d frames ending %v", len(tcs), tcs[len(tcs)-1])
	}
}

func TestRenderCurrentTime(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	resp := do(t, srv, "POST", "/render", RenderRequest{CurrentTime: true, Duration: 0.04})
	test.AssertStatus(resp, http.StatusOK, "POST /render", t)
	if got := resp.Header.Get("X-Timecode-Start"); got != "09:30:15:05" {
		t.Errorf("X-Timecode-Start = %q", got)
	}
}

func TestRenderPreset(t *testing.T) {
	ub, _ := ltc.NewUserBits(0, 0, 0, 0, 0, 0, 0, 7)
	repo := newFakeRepo(db.Preset{Name: "sixty", FPS: 60, SampleRate: 96000, BitDepth: 24, UserBits: &ub})
	srv, _ := newTestServer(repo)
	resp := do(t, srv, "POST", "/render", RenderRequest{Preset: "sixty", Start: "00:00:00:29", Duration: 2.0 / 60})
	body := test.AssertStatus(resp, http.StatusOK, "POST /render", t)

	samples, rate, err := wav.Read(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if rate != 96000 {
		t.Errorf("sample rate = %d", rate)
	}
	frames, err := ltc.Demodulate(samples, ltc.SamplesPerBit(60, 96000)/2)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[0][4] != 0 || frames[1][4] != 1 {
		t.Fatalf("want frames 29 and 30 with bit 4 = 0, 1; got %v", frames)
	}
	p, _ := ltc.NewProfile(60)
	if _, gotUB, _ := frames[1].Decode(p); gotUB.Field(8) != 7 {
		t.Errorf("field8 = %d, want 7", gotUB.Field(8))
	}
}

func TestRenderETag(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	req := RenderRequest{Start: "00:00:01:00", Duration: 0.2}
	first := do(t, srv, "POST", "/render", req)
	test.AssertStatus(first, http.StatusOK, "first render", t)
	tag := first.Header.Get("ETag")
	if tag == "" {
		t.Fatal("missing ETag")
	}

	again := do(t, srv, "POST", "/render", req, "If-None-Match", tag)
	test.AssertStatus(again, http.StatusNotModified, "conditional render", t)

	req.Semantic.Reel = "12"
	other := do(t, srv, "POST", "/render", req, "If-None-Match", tag)
	test.AssertStatus(other, http.StatusOK, "changed render", t)
	if other.Header.Get("ETag") == tag {
		t.Error("different user bits produced the same ETag")
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"malformedJSON", "{", http.StatusBadRequest},
		{"frameOutOfRange", RenderRequest{FPS: 25, Start: "00:00:00:25"}, http.StatusBadRequest},
		{"badStart", RenderRequest{Start: "soon"}, http.StatusBadRequest},
		{"sampleRate", RenderRequest{FPS: 30, SampleRate: 4000}, http.StatusBadRequest},
		{"tooLong", RenderRequest{Duration: 11}, http.StatusBadRequest},
		{"negative", RenderRequest{Duration: -1}, http.StatusBadRequest},
		{"sampleLimit", RenderRequest{FPS: 25, SampleRate: 100000000, Duration: 1}, http.StatusBadRequest},
		{"semantic", RenderRequest{Semantic: userbits.Input{Timezone: "UTC+99"}}, http.StatusBadRequest},
		{"missingPreset", RenderRequest{Preset: "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rep := newTestServer(newFakeRepo())
			resp := do(t, srv, "POST", "/render", tt.body)
			body := test.AssertStatus(resp, tt.code, "POST /render", t)
			var perr PlatformError
			if err := json.Unmarshal(body, &perr); err != nil || perr.Ok || perr.Status != tt.code {
				t.Errorf("body = %s", body)
			}
			if len(rep.errs) != 0 {
				t.Errorf("client error reported as exception: %v", rep.errs)
			}
		})
	}
}

func TestRenderSampleLimit(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	srv.Config.Server.MaxRenderSeconds = 0

	resp := do(t, srv, "POST", "/render", RenderRequest{FPS: 25, SampleRate: 100000000, Duration: 600})
	body := test.AssertStatus(resp, http.StatusBadRequest, "POST /render", t)
	if !bytes.Contains(body, []byte(ErrSampleLimit.Error())) {
		t.Errorf("body = %s, want the sample limit error", body)
	}

	resp = do(t, srv, "POST", "/render", RenderRequest{Duration: 1e300})
	body = test.AssertStatus(resp, http.StatusBadRequest, "POST /render", t)
	if !bytes.Contains(body, []byte(ltc.ErrDuration.Error())) {
		t.Errorf("body = %s, want the duration error", body)
	}
}

func TestRenderMethod(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	test.AssertStatus(do(t, srv, "GET", "/render", nil), http.StatusMethodNotAllowed, "GET /render", t)
	test.AssertStatus(do(t, srv, "GET", "/nowhere", nil), http.StatusNotFound, "GET /nowhere", t)
}

func TestPresets(t *testing.T) {
	repo := newFakeRepo()
	srv, rep := newTestServer(repo)

	preset := db.Preset{FPS: 24, SampleRate: 48000}
	test.AssertStatus(do(t, srv, "POST", "/presets/film", preset), http.StatusOK, "create", t)

	body := test.AssertStatus(do(t, srv, "GET", "/presets/film", nil), http.StatusOK, "get", t)
	var got db.Preset
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	preset.Name = "film"
	if diff := cmp.Diff(preset, got, cmp.AllowUnexported(ltc.UserBits{})); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}

	test.AssertStatus(do(t, srv, "POST", "/presets/bad", db.Preset{FPS: 0}), http.StatusBadRequest, "invalid", t)
	test.AssertStatus(do(t, srv, "POST", "/presets/a", db.Preset{Name: "b", FPS: 25}), http.StatusBadRequest, "name mismatch", t)
	test.AssertStatus(do(t, srv, "DELETE", "/presets/film", nil), http.StatusOK, "delete", t)
	test.AssertStatus(do(t, srv, "GET", "/presets/film", nil), http.StatusNotFound, "get deleted", t)
	test.AssertStatus(do(t, srv, "DELETE", "/presets/film", nil), http.StatusNotFound, "delete twice", t)
	test.AssertStatus(do(t, srv, "GET", "/presets/", nil), http.StatusBadRequest, "no name", t)

	repo.putErr = errFakeStorage
	test.AssertStatus(do(t, srv, "PUT", "/presets/film", preset), http.StatusInternalServerError, "storage down", t)
	if len(rep.errs) != 1 {
		t.Errorf("reported %d exceptions, want 1", len(rep.errs))
	}
}

func TestHealthcheck(t *testing.T) {
	repo := newFakeRepo()
	srv, _ := newTestServer(repo)
	test.AssertStatus(do(t, srv, "GET", "/healthcheck", nil), http.StatusOK, "healthy", t)
	repo.pingErr = errFakeStorage
	test.AssertStatus(do(t, srv, "GET", "/healthcheck", nil), http.StatusServiceUnavailable, "unhealthy", t)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(newFakeRepo())
	do(t, srv, "POST", "/render", RenderRequest{Duration: 0.2})
	body := test.AssertStatus(do(t, srv.metrics.Handler(), "GET", "/metrics", nil), http.StatusOK, "metrics", t)
	for _, want := range []string{
		`ltc_frames_rendered_total 5`,
		`ltc_renders_total{variant="generic"} 1`,
		`ltc_http_requests_total{code="200",route="render"} 1`,
	} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestChop(t *testing.T) {
	for _, tt := range []struct{ in, file, next string }{
		{"/render", "render", "/"},
		{"/presets/a", "presets", "/a"},
		{"/", "", "/"},
		{"//presets//a/", "presets", "/a"},
	} {
		file, next := chop(tt.in)
		if file != tt.file || next != tt.next {
			t.Errorf("chop(%q) = %q, %q, want %q, %q", tt.in, file, next, tt.file, tt.next)
		}
	}
}
