package service

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultMaxBodyLen = 1024 * 1024

// request is always scoped to a single http request handled by the server
type request struct {
	file, path string

	w      http.ResponseWriter
	r      *http.Request
	logger logrus.FieldLogger

	body []byte

	start       time.Time
	rid         uint64 // random request id
	read, wrote int
	code        int
	ip, port    string
	err, logerr error
}

// newRequest initializes request scoped structures and counters
func newRequest(w http.ResponseWriter, rq *http.Request, logger logrus.FieldLogger) request {
	r := request{
		path:   rq.URL.Path,
		r:      rq,
		w:      w,
		logger: logger,
		start:  time.Now(),
		rid:    rand.Uint64(),
		code:   http.StatusOK,
	}
	r.rid |= 1 << 63 // sacrifice one bit of entropy so they always have the same # digits
	r.ip = r.r.Header.Get("X-Forwarded-For")
	r.port = r.r.Header.Get("X-Forwarded-Port")
	if r.ip == "" {
		r.ip, r.port, _ = net.SplitHostPort(r.r.RemoteAddr)
	}
	r.log(
		"ip", r.ip,
		"port", r.port,
		"method", r.r.Method,
		"path", r.r.URL.Path,
		"ua", r.r.UserAgent(),
	)
	return r
}

func (r *request) finalize() {
	if r.logerr == nil {
		r.logerr = r.err
	}
	r.log(
		"code", r.code,
		"rx", r.read,
		"tx", r.wrote,
		"dur", time.Since(r.start).String(),
		"err", r.logerr,
	)
}

func (s *request) ok() bool {
	return s.err == nil
}

// Body reads the request body at most once and
// returns it.
func (s *request) Body() []byte {
	if !s.ok() {
		return nil
	}
	if s.body != nil {
		return s.body
	}
	s.body, s.err = io.ReadAll(io.LimitReader(s.r.Body, defaultMaxBodyLen))
	s.read = len(s.body)
	return s.body
}

func (s *request) writeerror(msg string, code int, err error) bool {
	s.code = code
	s.logerr = err
	s.log(
		"msg", msg,
		"code", code,
		"err", err,
	)
	if err != nil && code < 500 {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(code)
	fmt.Fprintln(s.w, PlatformError{
		Ok:     false,
		Status: code,
		Rid:    s.rid,
		Msg:    msg,
	}.String())
	return false
}

func (s *request) log(kv ...interface{}) {
	fields := logrus.Fields{"rid": s.rid}
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		switch t := v.(type) {
		case nil:
			v = ""
		case error:
			v = t.Error()
		case fmt.Stringer:
			v = t.String()
		}
		fields[fmt.Sprint(kv[i])] = v
	}
	s.logger.WithFields(fields).Info()
}

func (s *request) writebody(data interface{}, mimeType ...string) bool {
	if len(mimeType) != 0 {
		s.w.Header().Set("Content-Type", mimeType[0])
	}
	switch t := data.(type) {
	case io.WriterTo:
		n, err := t.WriteTo(s.w)
		s.wrote, s.err = int(n), err
	case []byte:
		s.wrote, s.err = s.w.Write(t)
	case string:
		s.wrote, s.err = s.w.Write([]byte(t))
	case interface{}:
		s.w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(t)
		s.wrote, s.err = s.w.Write(data)
	}
	return s.ok()
}

func (s *request) UnmarshalJSON(body interface{}) (ok bool) {
	data := s.Body()
	if !s.ok() {
		return false
	}
	if s.err = json.Unmarshal(data, body); s.err != nil {
		return false
	}
	return s.ok()
}

func (s *request) chop() string {
	s.file, s.path = chop(s.path)
	return s.file
}

func chop(p string) (file, next string) {
	p = path.Clean(p)[1:]
	if n := strings.Index(p, "/"); n >= 0 {
		return p[:n], p[n:]
	}
	return p, "/"
}

// PlatformError implements a well-known error response for http clients
// encountering an error when using the service.
type PlatformError struct {
	Ok     bool   `json:"ok"`
	Status int    `json:"status"`
	Rid    uint64 `json:"rid"`
	Msg    string `json:"msg,omitempty"`
}

// String returns the json-formatted platform response
func (p PlatformError) String() string {
	data, _ := json.Marshal(p)
	return string(data)
}
