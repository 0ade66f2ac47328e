package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"aqdaily/internal/config"
	apperrors "aqdaily/internal/errors"
)

// S3Uploader writes files to <bucket>/<prefix>/<category>/<name>.
type S3Uploader struct {
	api    s3manageriface.UploaderAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Uploader opens an AWS session from the environment's credential
// chain. A custom endpoint switches to path-style addressing.
func NewS3Uploader(cfg config.S3Config, logger *slog.Logger) (*S3Uploader, error) {
	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, apperrors.NewConfigError("creating aws session", err)
	}
	return newS3Uploader(s3manager.NewUploader(sess), cfg, logger), nil
}

func newS3Uploader(api s3manageriface.UploaderAPI, cfg config.S3Config, logger *slog.Logger) *S3Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Uploader{api: api, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}
}

func (u *S3Uploader) Name() string { return "s3" }

// Key returns the object key for a local file.
func (u *S3Uploader) Key(category Category, file string) string {
	return path.Join(u.prefix, string(category), filepath.Base(file))
}

func (u *S3Uploader) Upload(ctx context.Context, category Category, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to open %s", file), err)
	}
	defer f.Close()

	key := u.Key(category, file)
	out, err := u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(file)),
	})
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("uploading s3://%s/%s", u.bucket, key), err)
	}

	u.logger.InfoContext(ctx, "Uploaded file",
		slog.String("provider", u.Name()),
		slog.String("location", out.Location))
	return nil
}
