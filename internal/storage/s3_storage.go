package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ylvish/torque/internal/config"
)

// UploadResult describes a single stored object.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadProgress is called after each file in a batch finishes (or fails).
type UploadProgress func(uploaded, total int)

// FileInput pairs a filename with its content for batch uploads.
type FileInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*UploadResult, error)
	UploadBatch(ctx context.Context, folder string, files []FileInput, progress UploadProgress) ([]UploadResult, error)
	GeneratePresignedPutURL(ctx context.Context, folder, filename, contentType string) (string, string, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Use static credentials from config for simplicity
		// For production, prefer IAM roles or other secure credential methods
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	presignClient := s3.NewPresignClient(s3Client)

	return &s3Storage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: presignClient,
	}, nil
}

// objectKey builds a collision-free key under folder. Filenames are sanitized
// to their base name so "../" segments cannot escape the folder.
func objectKey(folder, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s/%s_%s", strings.Trim(folder, "/"), uuid.NewString(), base)
}

// publicURL maps an object key to its public URL.
func (s *s3Storage) publicURL(key string) string {
	if s.cfg.ImageBaseS3URL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ImageBaseS3URL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AwsS3Bucket, s.cfg.AwsRegion, key)
}

// Upload stores a single object and returns its public URL and key.
func (s *s3Storage) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*UploadResult, error) {
	key := objectKey(folder, filename)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return &UploadResult{URL: s.publicURL(key), Key: key}, nil
}

// UploadBatch stores files one at a time, invoking progress after each
// completed file. Uploads are deliberately sequential so the progress counter
// is meaningful to the caller; a failure aborts the batch and returns the
// results accumulated so far alongside the error.
func (s *s3Storage) UploadBatch(ctx context.Context, folder string, files []FileInput, progress UploadProgress) ([]UploadResult, error) {
	results := make([]UploadResult, 0, len(files))
	total := len(files)

	for i, f := range files {
		res, err := s.Upload(ctx, folder, f.Filename, f.ContentType, f.Body)
		if err != nil {
			return results, fmt.Errorf("batch upload failed at file %d of %d (%s): %w", i+1, total, f.Filename, err)
		}
		results = append(results, *res)
		if progress != nil {
			progress(i+1, total)
		}
	}
	return results, nil
}

// GeneratePresignedPutURL creates a pre-signed URL for uploading an object
// directly from a client. It returns the URL and the generated S3 object key.
func (s *s3Storage) GeneratePresignedPutURL(ctx context.Context, folder, filename, contentType string) (string, string, error) {
	key := objectKey(folder, filename)
	expiration := 15 * time.Minute

	presignParams := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, presignParams, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", key, err)
	}

	log.Printf("Generated presigned URL for key: %s", key)
	return presignedReq.URL, key, nil
}

// GetObject fetches a stored object. The caller must close the returned body.
func (s *s3Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", key, err)
	}
	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// PutObject writes an object under an exact key, used when replacing an
// existing object in place (e.g. after image processing).
func (s *s3Storage) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}
