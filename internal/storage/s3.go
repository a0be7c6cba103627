// Package storage wraps the S3-compatible blob store used for profile
// images and user-data exports. Objects are namespaced by user prefix
// ("users/<id>/...") so an account purge can drop everything with one
// prefix walk.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/account-dashboard/internal/config"
)

// BlobStore exposes the blob operations the lifecycle code needs. Handlers
// depend on this interface so tests can substitute a fake.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// S3Store implements BlobStore against S3 or a MinIO-style endpoint with
// static credentials.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New builds an S3Store from application config. Path-style addressing is
// enabled so custom endpoints (MinIO) resolve correctly.
func New(ctx context.Context, cfg config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "")))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

// UserPrefix returns the object prefix holding everything owned by a user.
func UserPrefix(userID string) string { return fmt.Sprintf("users/%s/", userID) }

// ExportKey returns a fresh object key for a data export file.
func ExportKey(userID, ext string) string {
	return fmt.Sprintf("users/%s/exports/%s.%s", userID, uuid.NewString(), ext)
}

// ImageKey returns a fresh object key for a profile image.
func ImageKey(userID, ext string) string {
	return fmt.Sprintf("users/%s/images/%s.%s", userID, uuid.NewString(), ext)
}

// Upload stores body under key with the given content type.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return err
}

// SignedURL returns a presigned GET URL for key, valid for expiry.
func (s *S3Store) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// ListPrefix returns every object key under prefix.
func (s *S3Store) ListPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return keys, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Delete removes a single object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeletePrefix removes every object under prefix one by one and returns how
// many were deleted. A failed delete aborts the walk; the purge treats the
// error as non-fatal and moves on to the next store.
func (s *S3Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.ListPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
