package operations

import (
	"context"
	"log/slog"
	"time"

	"aqdaily/internal/config"
	"aqdaily/internal/exporter"
	"aqdaily/internal/files"
	"aqdaily/internal/infrastructure"
	"aqdaily/internal/storage"
	"aqdaily/internal/vendor"
)

// Dependencies are the collaborators shared by every step.
type Dependencies struct {
	Config   *config.Config
	Files    *files.Manager
	Uploader storage.Uploader
	Metrics  *infrastructure.Metrics
	Logger   *slog.Logger

	// NewAdapter builds the vendor adapter of a manufacturer.
	NewAdapter func(config.Manufacturer) (vendor.Adapter, error)
	// Now is the report clock.
	Now func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = infrastructure.GetLogger()
	}
	if d.Files == nil {
		d.Files = files.NewManager(d.Config.Paths, d.Logger)
	}
	if d.Uploader == nil {
		d.Uploader = storage.NoopUploader{}
	}
	if d.NewAdapter == nil {
		d.NewAdapter = vendor.New
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Dependencies) csv() *exporter.CSVWriter {
	return exporter.NewCSVWriter(d.Logger)
}

// upload copies path to remote storage. Failures are logged and counted but
// never fail the step.
func (d Dependencies) upload(ctx context.Context, manufacturer string, category storage.Category, path string) {
	if err := d.Uploader.Upload(ctx, category, path); err != nil {
		d.Metrics.DeviceFailed(manufacturer, FailureUpload)
		d.Logger.WarnContext(ctx, "Upload failed",
			slog.String("provider", d.Uploader.Name()),
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
