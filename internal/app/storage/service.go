/*
Package storage keeps user and room avatars in S3-compatible object storage.

The SDK never proxies image bytes to the message provider: an avatar is uploaded to the bucket
(directly by the CLI, or by a browser through a presigned URL) and the resulting URL is stored
on the user or room.
*/
package storage

import (
	"context"
	"io"
	"time"

	"anychat/internal/configs"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL, when set, serves objects without signing (e.g. a CDN in front of the bucket).
	S3PublicBaseURL string
}

// ConfigFrom extracts the storage settings of cfg.
func ConfigFrom(cfg *configs.AppConfig) ServiceConfig {
	return ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3PublicBaseURL:   cfg.S3PublicBaseURL,
	}
}

// StorageService defines the object operations avatars need.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Upload stores body under key.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) error

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// GetObjectMetadata retrieves the object's Content-Type and Content-Length.
	GetObjectMetadata(ctx context.Context, key string) (map[string]string, error)
}

// NewStorageService returns the S3-compatible implementation of StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}
