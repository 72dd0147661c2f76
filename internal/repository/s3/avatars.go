package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/infra/config"
)

// AvatarStore keeps avatar blobs in an S3-compatible bucket (AWS, MinIO, or
// Supabase storage via its S3 endpoint).
type AvatarStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewAvatarStore builds the store from static credentials, honoring an
// optional endpoint override for non-AWS backends.
func NewAvatarStore(ctx context.Context, cfg config.StorageSettings) (*AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &AvatarStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: baseURL,
	}, nil
}

// Put uploads the object and returns its public URL.
func (s *AvatarStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar object: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}

// Delete removes the object.
func (s *AvatarStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete avatar object: %w", err)
	}
	return nil
}

// KeyFromURL recovers the object key from a public URL this store produced.
func (s *AvatarStore) KeyFromURL(url string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

var _ port.AvatarStore = (*AvatarStore)(nil)
