package service

import (
	"errors"
	"sync"

	"github.com/cbsinteractive/ltc-generator/db"
)

type fakeRepo struct {
	mu      sync.Mutex
	presets map[string]db.Preset
	putErr  error
	pingErr error
}

func newFakeRepo(presets ...db.Preset) *fakeRepo {
	r := &fakeRepo{presets: map[string]db.Preset{}}
	for _, p := range presets {
		r.presets[p.Name] = p
	}
	return r
}

func (r *fakeRepo) GetPreset(name string) (*db.Preset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.presets[name]
	if !ok {
		return nil, db.ErrPresetNotFound
	}
	return &p, nil
}

func (r *fakeRepo) PutPreset(p *db.Preset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.presets[p.Name] = *p
	return nil
}

func (r *fakeRepo) DeletePreset(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.presets[name]; !ok {
		return db.ErrPresetNotFound
	}
	delete(r.presets, name)
	return nil
}

func (r *fakeRepo) Ping() error { return r.pingErr }

var errFakeStorage = errors.New("fake storage down")
