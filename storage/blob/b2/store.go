// Package b2blob provides a BlobStore backed by Backblaze B2.
package b2blob

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

type Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

var _ core.BlobStore = (*Store)(nil)

func New(ctx context.Context, conf core.BlobConfig) (*Store, error) {
	client, err := b2.NewClient(ctx, conf.B2AccountID, conf.B2AppKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}

	bucket, err := client.Bucket(ctx, conf.B2Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}

	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	obj := s.bucket.Object(path)
	w := obj.NewWriter(ctx)

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing writer")
	}
	return s.urlOf(path), nil
}

func (s *Store) URL(ctx context.Context, path string) (string, error) {
	if _, err := s.bucket.Object(path).Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return "", core.ErrBlobNotFound
		}
		return "", errors.Wrap(err, "checking object")
	}
	return s.urlOf(path), nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		if b2.IsNotExist(err) {
			return core.ErrBlobNotFound
		}
		return errors.Wrap(err, "deleting object")
	}
	return nil
}

func (s *Store) urlOf(path string) string {
	return fmt.Sprintf("%s/file/%s/%s", s.bucket.BaseURL(), s.bucket.Name(), path)
}
