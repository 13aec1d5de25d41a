// Package imagestore persists uploaded film posters in a MinIO bucket
// and hands back URLs the frontend can embed.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store wraps a MinIO client scoped to a single bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("imagestore: connect: %w", err)
	}
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("imagestore: check bucket: %w", err)
	}
	if !ok {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("imagestore: create bucket: %w", err)
		}
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Save uploads the image under a random object name and returns a URL
// built from the request's base URL so links work behind the reverse
// proxy that fronts the object store.
func (s *Store) Save(ctx context.Context, r io.Reader, size int64, contentType, baseURL string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("imagestore: put object: %w", err)
	}
	return strings.TrimRight(baseURL, "/") + "/" + s.bucket + "/" + name, nil
}
