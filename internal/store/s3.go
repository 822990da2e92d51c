package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"tagdb/internal/tagdb"
)

// S3Client is the subset of the S3 API used by the transfer manager.
type S3Client interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
}

// S3Store persists each database as one object. The object key is the
// location joined under an optional prefix.
type S3Store struct {
	codec
	bucket     string
	prefix     string
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

var _ tagdb.Store = (*S3Store)(nil)

// S3Options configures the client built by NewS3StoreFromOptions.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible service; enables path-style addressing
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3Client, bucket, prefix string, enc tagdb.Encryptor, dec tagdb.DecryptionContext) *S3Store {
	return &S3Store{
		codec:      codec{encryptor: enc, decryptor: dec},
		bucket:     bucket,
		prefix:     prefix,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}
}

// NewS3StoreFromOptions loads the AWS configuration and builds a client.
func NewS3StoreFromOptions(ctx context.Context, opts S3Options, enc tagdb.Encryptor, dec tagdb.DecryptionContext) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, opts.Bucket, opts.Prefix, enc, dec), nil
}

func (s *S3Store) key(location string) string {
	if s.prefix == "" {
		return location
	}
	return path.Join(s.prefix, location)
}

func (s *S3Store) Load(location string) (*tagdb.Database, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(context.Background(), buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(location)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key(location), tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("downloading database: %w", err)
	}
	return s.decode(buf.Bytes())
}

// Save uploads the whole database as a single object; S3 replaces objects
// atomically, so readers never observe a partial write.
func (s *S3Store) Save(db *tagdb.Database) error {
	data, err := s.encode(db)
	if err != nil {
		return err
	}

	contentType := "application/json"
	if s.encryptor != nil {
		contentType = "application/octet-stream"
	}

	_, err = s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(db.Location())),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading database: %w", err)
	}
	return nil
}
