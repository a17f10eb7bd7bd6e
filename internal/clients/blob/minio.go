// Package blob stores player photos in S3-compatible object storage.
package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"roster-pulse/internal/config"
)

// Store wraps a MinIO client scoped to one bucket.
type Store struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// Init connects to the object store and ensures the photo bucket exists.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*Store, error) {
	cli, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info("created photo bucket", "bucket", cfg.MinioBucket)
	}

	return &Store{client: cli, bucket: cfg.MinioBucket, log: log}, nil
}

func photoKey(playerID string) string {
	return "photos/" + playerID
}

// PutPhoto uploads a player's photo, replacing any previous one.
func (s *Store) PutPhoto(ctx context.Context, playerID, contentType string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, photoKey(playerID), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	return nil
}

// PhotoURL returns a presigned GET URL for the player's photo.
func (s *Store) PhotoURL(ctx context.Context, playerID string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, photoKey(playerID), expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign photo url: %w", err)
	}
	return u.String(), nil
}

// RemovePhoto deletes the player's photo. Removing an absent photo is a no-op.
func (s *Store) RemovePhoto(ctx context.Context, playerID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, photoKey(playerID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}
