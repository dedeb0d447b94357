package content

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
)

// S3Storage serves topic videos out of an object-storage bucket. Videos are
// uploaded by the admin surface; this side only signs read URLs.
type S3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(client *minio.Client, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign video url: %w", err)
	}

	return u.String(), nil
}
