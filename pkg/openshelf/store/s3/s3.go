// Package s3 implements the versioned store contract against S3 and
// S3-compatible services. The object ETag serves as the revision token:
// conditioned writes use If-Match, and a stale ETag surfaces as a
// PreconditionFailed error from the service.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/openshelf/openshelf/pkg/openshelf/store"
)

// Config options for the S3 backend.
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // use path-style addressing (MinIO)
}

// Backend is an S3-compatible implementation of store.Store.
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// New creates an S3 storage backend.
func New(cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

// Fetch reads the object at path and returns its content together with
// the ETag the service reported for it.
func (b *Backend) Fetch(ctx context.Context, path string) (*store.File, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, store.ErrNotFound
		}
		return nil, &store.RequestError{Backend: "s3", Path: path, Err: err}
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &store.RequestError{Backend: "s3", Path: path, Err: err}
	}

	return &store.File{Content: content, Revision: aws.ToString(out.ETag)}, nil
}

// Write stores content at path. When opts.Revision is set the put is
// conditioned on If-Match, so a concurrent writer who changed the
// object causes store.ErrRevisionConflict instead of a lost update.
func (b *Backend) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	if opts.Revision == "" {
		out, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(path),
			Body:   bytes.NewReader(content),
		})
		if err != nil {
			return "", &store.RequestError{Backend: "s3", Path: path, Err: err}
		}
		return aws.ToString(out.ETag), nil
	}

	out, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:  aws.String(b.bucket),
		Key:     aws.String(path),
		Body:    bytes.NewReader(content),
		IfMatch: aws.String(opts.Revision),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", store.ErrRevisionConflict
		}
		return "", &store.RequestError{Backend: "s3", Path: path, Err: err}
	}
	return aws.ToString(out.ETag), nil
}
