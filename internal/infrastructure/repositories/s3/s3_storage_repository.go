package s3

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rios0rios0/kernelforge/internal/domain/entities"
	"github.com/rios0rios0/kernelforge/internal/domain/repositories"
)

// objectPutter is the subset of the S3 client used to publish artifacts.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// StorageRepository uploads artifacts to an S3-compatible bucket.
type StorageRepository struct {
	client objectPutter
	config entities.S3Settings
}

var _ repositories.StorageRepository = (*StorageRepository)(nil)

// NewStorageRepository creates an S3 client with static credentials. A custom
// endpoint targets S3-compatible stores such as MinIO.
func NewStorageRepository(cfg entities.S3Settings) (repositories.StorageRepository, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is not configured", entities.ErrPrecondition)
	}

	awsCfg := aws.Config{Region: cfg.Region}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &StorageRepository{client: client, config: cfg}, nil
}

// Name identifies the backend in logs.
func (r *StorageRepository) Name() string {
	return "s3://" + r.config.Bucket
}

// Upload stores the file at path under key.
func (r *StorageRepository) Upload(ctx context.Context, key, path, contentType string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.config.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err = r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", r.config.Bucket, key), nil
}
