package storage

import (
	"context"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

func init() {
	Register("gs", newGCS)
}

// gcsBackend uploads with application default credentials
type gcsBackend struct {
	client *gcs.Client
}

func newGCS(ctx context.Context) (Backend, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating gcs client")
	}
	return &gcsBackend{client: client}, nil
}

func (b *gcsBackend) Put(ctx context.Context, loc Location, contentType string, data []byte) error {
	defer b.client.Close()

	w := b.client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return errors.Wrapf(err, "uploading to %s", loc)
	}
	return errors.Wrapf(w.Close(), "uploading to %s", loc)
}
