package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/recipe-api/pkg/helpers"
)

// GCSStore keeps recipe images in a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSStore(client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	_, err := helpers.UploadObject(ctx, s.client, s.bucket, key, contentType, r)
	return err
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	return helpers.DeleteObject(ctx, s.client, s.bucket, key)
}

func (s *GCSStore) URL(key string) string {
	return helpers.PublicURL(s.bucket, key)
}
