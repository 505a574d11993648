package export

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore wraps the S3 client used for inventory snapshots. It
// works against AWS as well as S3-compatible stores (R2, MinIO) via a
// custom endpoint.
type ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewObjectStoreFromEnv builds the store from environment variables:
// S3_BUCKET, S3_REGION, S3_ENDPOINT (optional, for R2/MinIO),
// S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY. Returns nil when no
// bucket is configured so callers can run without export support.
func NewObjectStoreFromEnv(ctx context.Context) (*ObjectStore, error) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if key := os.Getenv("S3_ACCESS_KEY_ID"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, os.Getenv("S3_SECRET_ACCESS_KEY"), ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{client: client, bucket: bucket}, nil
}

// Bucket returns the configured bucket name.
func (o *ObjectStore) Bucket() string {
	return o.bucket
}

// Put uploads one object.
func (o *ObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
