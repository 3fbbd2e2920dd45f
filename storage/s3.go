package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

func init() {
	Register("s3", newS3)
}

// s3Backend uploads with the default AWS credential chain
type s3Backend struct {
	uploader *s3manager.Uploader
}

func newS3(context.Context) (Backend, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "creating aws session")
	}
	return &s3Backend{uploader: s3manager.NewUploader(sess)}, nil
}

func (b *s3Backend) Put(ctx context.Context, loc Location, contentType string, data []byte) error {
	_, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
	})
	return errors.Wrapf(err, "uploading to %s", loc)
}
