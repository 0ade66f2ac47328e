// Package storage copies pipeline outputs to long-term storage.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"

	"aqdaily/internal/config"
	apperrors "aqdaily/internal/errors"
)

// Category groups output files; each maps to its own prefix or folder.
type Category string

const (
	CategoryRaw      Category = "raw"
	CategoryClean    Category = "clean"
	CategoryAnalysis Category = "analysis"
	CategoryReport   Category = "report"
)

// Uploader copies one local file to remote storage.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, category Category, path string) error
}

// New returns the uploader selected by cfg.Provider.
func New(ctx context.Context, cfg config.UploadConfig, logger *slog.Logger) (Uploader, error) {
	switch cfg.Provider {
	case "", "none":
		return NoopUploader{}, nil
	case "s3":
		return NewS3Uploader(cfg.S3, logger)
	case "drive":
		return NewDriveUploader(ctx, cfg.Drive, logger)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown upload provider %q", cfg.Provider), nil)
	}
}

// NoopUploader discards uploads.
type NoopUploader struct{}

func (NoopUploader) Name() string { return "none" }

func (NoopUploader) Upload(context.Context, Category, string) error { return nil }

// ContentType guesses the MIME type from the file extension.
func ContentType(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
