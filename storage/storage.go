// Package storage writes rendered files to a local path or to a cloud
// bucket, chosen by the scheme of the destination URI:
//
// 	/tmp/ltc.wav, file:///tmp/ltc.wav   local file
// 	s3://bucket/key.wav                 Amazon S3
// 	gs://bucket/key.wav                 Google Cloud Storage
//
// Further schemes can be added with Register.
package storage

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrScheme     = errors.New("unsupported storage scheme")
	ErrRegistered = errors.New("storage scheme is already registered")
)

var (
	mu       sync.RWMutex
	backends = map[string]Factory{}
)

// Backend writes objects to one kind of destination
type Backend interface {
	Put(ctx context.Context, loc Location, contentType string, data []byte) error
}

// Factory creates the backend for a scheme. It is called once per Put.
type Factory func(ctx context.Context) (Backend, error)

// Register adds a backend for scheme
func Register(scheme string, f Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := backends[scheme]; ok {
		return ErrRegistered
	}
	backends[scheme] = f
	return nil
}

func factory(scheme string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := backends[scheme]
	return f, ok
}

// Schemes returns the registered schemes, alphabetically ordered
func Schemes() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Location is a parsed destination URI
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

// Parse parses a destination. A plain path is a local file; any other
// scheme must be registered and needs a bucket and a key.
func Parse(dst string) (Location, error) {
	if !strings.Contains(dst, "://") {
		return Location{Scheme: "file", Key: dst}, nil
	}
	u, err := url.Parse(dst)
	if err != nil {
		return Location{}, errors.Wrapf(err, "parsing destination %q", dst)
	}
	if u.Scheme == "file" {
		if u.Host != "" {
			return Location{}, errors.Errorf("destination %q names host %q, want file:///path", dst, u.Host)
		}
		return Location{Scheme: "file", Key: u.Path}, nil
	}
	if _, ok := factory(u.Scheme); !ok {
		return Location{}, errors.Wrapf(ErrScheme, "%q", u.Scheme)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, errors.Errorf("destination %q needs a bucket and a key", dst)
	}
	return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
}

func (l Location) String() string {
	if l.Scheme == "file" {
		return l.Key
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Put writes data to the destination dst
func Put(ctx context.Context, dst, contentType string, data []byte) error {
	loc, err := Parse(dst)
	if err != nil {
		return err
	}
	f, ok := factory(loc.Scheme)
	if !ok {
		return errors.Wrapf(ErrScheme, "%q", loc.Scheme)
	}
	b, err := f(ctx)
	if err != nil {
		return errors.Wrapf(err, "configuring %s storage", loc.Scheme)
	}
	return b.Put(ctx, loc, contentType, data)
}
