package operations

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"aqdaily/internal/config"
	"aqdaily/internal/dataprocessing"
	apperrors "aqdaily/internal/errors"
	"aqdaily/internal/exporter"
	"aqdaily/internal/files"
	"aqdaily/internal/infrastructure"
	"aqdaily/internal/storage"
	"aqdaily/pkg/contracts/domain"
)

// ProcessStep turns each manufacturer's clean files into one wide table,
// resamples it onto the configured resolution and exports it. When
// resampling fails the unresampled table is exported instead.
type ProcessStep struct {
	BaseStep
	deps Dependencies
}

// NewProcessStep creates the process step.
func NewProcessStep(deps Dependencies) *ProcessStep {
	return &ProcessStep{
		BaseStep: NewBaseStep(StepIDProcess, StepNameProcess),
		deps:     deps.withDefaults(),
	}
}

// Execute processes manufacturers concurrently. A manufacturer that cannot be
// assembled is logged and skipped.
func (s *ProcessStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := s.deps.Config
	sheets := make([]*exporter.Sheet, len(cfg.Manufacturers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Run.ManufacturerConcurrency)
	for i, m := range cfg.Manufacturers {
		g.Go(func() error {
			sheets[i] = s.processManufacturer(gctx, m, state)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	var workbook []exporter.Sheet
	for _, sh := range sheets {
		if sh != nil {
			workbook = append(workbook, *sh)
		}
	}
	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata("analysed", len(workbook))
	}

	if cfg.Analysis.ExportXLSX && len(workbook) > 0 {
		path := s.deps.Files.WorkbookPath(state.Window.Start, state.Window.End)
		if err := exporter.NewXLSXWriter(s.deps.Logger).WriteWorkbook(path, workbook); err != nil {
			return err
		}
		state.AddOutput(path)
		s.deps.upload(ctx, "", storage.CategoryAnalysis, path)
	}
	return nil
}

// processManufacturer returns the exported table, or nil on failure.
func (s *ProcessStep) processManufacturer(ctx context.Context, m config.Manufacturer, state *OperationState) *exporter.Sheet {
	logger := s.deps.Logger.With(slog.String("manufacturer", m.Name))
	ctx, span := infrastructure.StartSpan(ctx, "process.manufacturer", attribute.String("manufacturer", m.Name))
	defer span.End()

	win := state.Window
	found, err := files.NewDiscovery(s.deps.Files).CleanFiles(m.Name, m.DeviceIDs(), win.Start, win.End)
	if err != nil {
		logger.ErrorContext(ctx, "Cannot list clean files", slog.String("error", err.Error()))
		infrastructure.RecordError(ctx, err)
		return nil
	}

	tables := make([]domain.CanonicalLongTable, 0, len(found))
	for _, f := range found {
		t, err := files.ReadLongCSV(f.Path, f.DeviceID)
		if err != nil {
			s.deps.Metrics.DeviceFailed(m.Name, FailureLoad)
			logger.WarnContext(ctx, "Skipping unreadable clean file",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
			continue
		}
		tables = append(tables, t)
	}

	wide, err := dataprocessing.Assemble(tables, m.AnalysisMeasurands(), m.DeviceIDs())
	if err != nil {
		s.deps.Metrics.DeviceFailed(m.Name, FailureAssemble)
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "Cannot assemble wide table", slog.String("error", err.Error()))
		return nil
	}

	out := wide
	resolution := s.deps.Config.Analysis.TimeResolution
	resampled, err := dataprocessing.Resample(wide, resolution)
	switch {
	case err == nil:
		out = resampled.WideTable
	case apperrors.IsResampling(err):
		s.deps.Metrics.FallbackResample()
		logger.WarnContext(ctx, "Resampling failed, exporting unresampled table",
			slog.String("resolution", resolution),
			slog.String("error", err.Error()))
	default:
		logger.ErrorContext(ctx, "Resampling failed", slog.String("error", err.Error()))
		return nil
	}

	path := s.deps.Files.AnalysisPath(m.Name, win.Start, win.End, files.ExtCSV)
	if err := s.deps.csv().WriteWideTable(path, out); err != nil {
		logger.ErrorContext(ctx, "Cannot write analysis", slog.String("error", err.Error()))
		return nil
	}
	state.AddOutput(path)
	s.deps.upload(ctx, m.Name, storage.CategoryAnalysis, path)

	logger.InfoContext(ctx, "Analysis written",
		slog.String("path", path),
		slog.Int("rows", out.Len()),
		slog.Int("columns", len(out.Columns)))
	return &exporter.Sheet{Name: m.Name, Table: out}
}
