package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

func init() {
	Register("file", func(context.Context) (Backend, error) { return fileBackend{}, nil })
}

type fileBackend struct{}

func (fileBackend) Put(_ context.Context, loc Location, _ string, data []byte) error {
	if dir := filepath.Dir(loc.Key); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}
	return errors.Wrap(os.WriteFile(loc.Key, data, 0644), "writing output file")
}
