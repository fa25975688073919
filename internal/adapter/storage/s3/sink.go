// Package s3 publishes rendered exports to an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// PutObjectAPI is the subset of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink implements domain.ExportSink on S3.
type Sink struct {
	client PutObjectAPI
	bucket string
}

var _ domain.ExportSink = (*Sink)(nil)

// NewSink wraps an S3 client for bucket.
func NewSink(client PutObjectAPI, bucket string) *Sink {
	return &Sink{client: client, bucket: bucket}
}

// NewFromEnv builds a sink from the default AWS credential chain. It
// returns nil, nil when bucket is empty so callers can treat publishing as
// disabled.
func NewFromEnv(ctx context.Context, bucket, region string) (*Sink, error) {
	if bucket == "" {
		return nil, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSink(s3.NewFromConfig(cfg), bucket), nil
}

// Put uploads body under key and returns its s3:// location.
func (s *Sink) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
