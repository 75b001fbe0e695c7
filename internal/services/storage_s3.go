package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type S3Options struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// s3API is the subset of the S3 client the storage backend needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3StorageService struct {
	client s3API
	bucket string
	prefix string
	policy uploadPolicy
}

// NewS3StorageService stores uploads in an S3 compatible bucket. A custom
// endpoint enables R2 or MinIO with path-style addressing.
func NewS3StorageService(ctx context.Context, opts S3Options, allowedTypes []string) (StorageService, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3StorageService(client, opts.Bucket, opts.Prefix, allowedTypes), nil
}

func newS3StorageService(client s3API, bucket, prefix string, allowedTypes []string) *s3StorageService {
	return &s3StorageService{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		policy: newUploadPolicy(allowedTypes),
	}
}

// SaveUpload implements StorageService.
func (s *s3StorageService) SaveUpload(ctx context.Context, file *multipart.FileHeader) (*models.StoredFile, error) {
	ext, mimeType, err := s.policy.check(file)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := StorageKey(file.Filename)
	objectKey := s.objectKey(key)

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(mimeType),
	}); err != nil {
		return nil, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	log.Printf("💾 File uploaded to s3://%s/%s\n", s.bucket, objectKey)

	return &models.StoredFile{
		Key:          key,
		OriginalName: file.Filename,
		Extension:    strings.ToLower(ext),
		MimeType:     mimeType,
		Size:         file.Size,
		StoredAt:     time.Now(),
	}, nil
}

// Open implements StorageService.
func (s *s3StorageService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey := s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete implements StorageService. S3 deletes are idempotent.
func (s *s3StorageService) Delete(ctx context.Context, key string) error {
	objectKey := s.objectKey(key)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

// SweepOlderThan implements StorageService.
func (s *s3StorageService) SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := s.walk(ctx, func(key string, size int64, modified time.Time) error {
		if !modified.Before(cutoff) {
			return nil
		}
		if err := s.Delete(ctx, key); err != nil {
			log.Printf("⚠️  Failed to sweep %s: %v\n", key, err)
			return nil
		}
		removed++
		return nil
	})
	return removed, err
}

// Stats implements StorageService.
func (s *s3StorageService) Stats(ctx context.Context) (*models.StorageStats, error) {
	stats := &models.StorageStats{Location: fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)}
	err := s.walk(ctx, func(key string, size int64, modified time.Time) error {
		stats.TotalFiles++
		stats.TotalBytes += size
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.HumanSize = FormatFileSize(stats.TotalBytes)
	return stats, nil
}

// walk lists every object under the prefix and calls fn with its storage key.
func (s *s3StorageService) walk(ctx context.Context, fn func(key string, size int64, modified time.Time) error) error {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return fmt.Errorf("s3 list objects bucket=%s: %w", s.bucket, err)
		}
		for _, obj := range out.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix+"/")
			if err := fn(key, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified)); err != nil {
				return err
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return nil
		}
		input.ContinuationToken = out.NextContinuationToken
	}
}

func (s *s3StorageService) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
