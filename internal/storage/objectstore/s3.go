// Package objectstore archives exported documents in S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/GoSim-25-26J-441/research-doc-backend/config"
)

const keyPrefix = "exports"

// S3Archive stores one object per exported file.
type S3Archive struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewS3Archive builds a client from cfg. A custom endpoint (MinIO,
// LocalStack) switches to path-style addressing. Static keys are used when
// both are set, otherwise the default AWS credential chain applies.
func NewS3Archive(ctx context.Context, cfg config.ExportConfig) (*S3Archive, error) {
	if cfg.ArchiveBucket == "" {
		return nil, fmt.Errorf("export archive bucket not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Archive{client: client, bucket: cfg.ArchiveBucket, now: time.Now}, nil
}

// Key returns the object key for an export of projectID.
func (a *S3Archive) Key(ownerID, projectID, filename string) string {
	stamp := a.now().UTC().Format("20060102T150405Z")
	return path.Join(keyPrefix, ownerID, projectID, stamp+"-"+filename)
}

// Put uploads body and returns the key it was stored under.
func (a *S3Archive) Put(ctx context.Context, ownerID, projectID, filename, contentType string, body []byte) (string, error) {
	key := a.Key(ownerID, projectID, filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
