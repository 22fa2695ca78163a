package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"profile-service/internal/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API is the part of *s3.Client the backend calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures an S3-compatible bucket (AWS, MinIO, R2).
type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	KeyPrefix     string
}

// S3Storage stores photos as objects; URLs are PublicBaseURL + "/" + key.
type S3Storage struct {
	client    S3API
	bucket    string
	baseURL   string
	keyPrefix string
}

// NewS3Client builds a client with static credentials and an optional custom endpoint.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimSuffix(opts.Endpoint, "/"))
			o.UsePathStyle = true
		}
	}), nil
}

func NewS3Storage(client S3API, opts S3Options) *S3Storage {
	prefix := strings.Trim(opts.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Storage{
		client:    client,
		bucket:    opts.Bucket,
		baseURL:   strings.TrimSuffix(opts.PublicBaseURL, "/"),
		keyPrefix: prefix,
	}
}

// Save uploads with If-None-Match so an existing key is never overwritten.
func (s *S3Storage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid file name %q", core.ErrStorage, name)
	}

	key := s.keyPrefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("%w: object %s already exists", core.ErrStorage, key)
		}
		return "", fmt.Errorf("%w: put %s: %v", core.ErrStorage, key, err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("%w: url %q is outside %s", core.ErrStorage, url, s.baseURL)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", core.ErrStorage, key, err)
	}
	return nil
}
