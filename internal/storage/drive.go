package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"aqdaily/internal/config"
	apperrors "aqdaily/internal/errors"
)

// DriveUploader creates files in Google Drive folders, one folder per
// category. Categories without a folder are skipped.
type DriveUploader struct {
	svc     *drive.Service
	folders map[Category]string
	logger  *slog.Logger
}

// NewDriveUploader authenticates with a service-account credentials file.
func NewDriveUploader(ctx context.Context, cfg config.DriveConfig, logger *slog.Logger) (*DriveUploader, error) {
	return NewDriveUploaderWithOptions(ctx, cfg, logger, option.WithCredentialsFile(cfg.CredentialsFile))
}

// NewDriveUploaderWithOptions builds the Drive client from explicit options.
func NewDriveUploaderWithOptions(ctx context.Context, cfg config.DriveConfig, logger *slog.Logger, opts ...option.ClientOption) (*DriveUploader, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigError("creating drive service", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DriveUploader{
		svc: svc,
		folders: map[Category]string{
			CategoryRaw:      cfg.RawFolderID,
			CategoryClean:    cfg.CleanFolderID,
			CategoryAnalysis: cfg.AnalysisFolderID,
			CategoryReport:   cfg.ReportFolderID,
		},
		logger: logger,
	}, nil
}

func (u *DriveUploader) Name() string { return "drive" }

func (u *DriveUploader) Upload(ctx context.Context, category Category, path string) error {
	folder := u.folders[category]
	if folder == "" {
		u.logger.DebugContext(ctx, "No drive folder for category, skipping upload",
			slog.String("category", string(category)),
			slog.String("path", path))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	meta := &drive.File{Name: filepath.Base(path), Parents: []string{folder}}
	created, err := u.svc.Files.Create(meta).
		Media(f, googleapi.ContentType(ContentType(path))).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("uploading %s to drive", filepath.Base(path)), err)
	}

	u.logger.InfoContext(ctx, "Uploaded file",
		slog.String("provider", u.Name()),
		slog.String("file_id", created.Id),
		slog.String("name", meta.Name))
	return nil
}
