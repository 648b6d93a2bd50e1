package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/bpadilla17/radladder-game/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Client stores question images in a single bucket.
type S3Client struct {
	client *minio.Client
	config *config.S3Config
}

func NewS3Client(cfg *config.S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &S3Client{
		client: client,
		config: cfg,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadQuestionImage stores an image for questionID and returns its object
// name, which is what gets saved as the question's image ref.
func (c *S3Client) UploadQuestionImage(ctx context.Context, questionID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := ImageObjectName(questionID, filename)

	_, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return objectName, nil
}

// PresignedURL returns a time-limited download URL for objectName.
func (c *S3Client) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, c.config.URLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

func (c *S3Client) DeleteFile(ctx context.Context, objectName string) error {
	err := c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// ImageObjectName builds "questions/<id>/<uuid><ext>" so uploads never
// overwrite each other.
func ImageObjectName(questionID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("questions", questionID, uuid.NewString()+ext)
}

// IsObjectRef reports whether ref points into the bucket rather than at an
// external URL.
func IsObjectRef(ref string) bool {
	return !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}
