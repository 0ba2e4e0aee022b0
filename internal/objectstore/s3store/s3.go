// Package s3store implements objectstore.Store on top of the AWS SDK v2 S3 client.
package s3store

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
)

// API is the subset of *s3.Client the store calls.
type API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Config selects the bucket and how to reach it.
type Config struct {
	Bucket string
	Region string
	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint  string
	PathStyle bool
}

// Store is a bucket-scoped objectstore.Store.
type Store struct {
	api    API
	bucket string
}

// New builds a client from the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewWithAPI(client, cfg.Bucket), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

func (s *Store) List(ctx context.Context, in objectstore.ListInput) (*objectstore.ListPage, error) {
	req := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(in.Prefix),
	}
	if in.ContinuationToken != "" {
		req.ContinuationToken = aws.String(in.ContinuationToken)
	}
	if in.MaxKeys > 0 {
		req.MaxKeys = aws.Int32(int32(in.MaxKeys))
	}

	out, err := s.api.ListObjectsV2(ctx, req)
	if err != nil {
		return nil, &objectstore.TransportError{Op: "list", Key: in.Prefix, Err: err}
	}

	page := &objectstore.ListPage{
		Objects:               make([]objectstore.Object, 0, len(out.Contents)),
		NextContinuationToken: aws.ToString(out.NextContinuationToken),
		Truncated:             aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, objectstore.Object{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}
	return page, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &objectstore.TransportError{Op: "get", Key: key, Err: err}
	}
	return out.Body, nil
}

func (s *Store) DeleteObjects(ctx context.Context, keys []string) (*objectstore.DeleteResult, error) {
	if len(keys) > objectstore.MaxDeleteBatch {
		return nil, fmt.Errorf("delete batch of %d exceeds limit %d", len(keys), objectstore.MaxDeleteBatch)
	}
	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := s.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(false)},
	})
	if err != nil {
		return nil, &objectstore.TransportError{Op: "delete", Err: err}
	}

	res := &objectstore.DeleteResult{}
	for _, d := range out.Deleted {
		res.Deleted = append(res.Deleted, aws.ToString(d.Key))
	}
	for _, e := range out.Errors {
		res.Failed = append(res.Failed, objectstore.DeleteFailure{
			Key:     aws.ToString(e.Key),
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
		})
	}
	return res, nil
}
