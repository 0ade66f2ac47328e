package operations

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"aqdaily/internal/availability"
	"aqdaily/internal/config"
	"aqdaily/internal/dataprocessing"
	"aqdaily/internal/infrastructure"
	"aqdaily/internal/storage"
	"aqdaily/internal/vendor"
	"aqdaily/pkg/contracts/domain"
)

// ScrapeStep downloads every device's raw table, canonicalizes it, saves the
// raw and clean files and records availability. A device that fails at any
// point is recorded with zero counts; it never stops the others.
type ScrapeStep struct {
	BaseStep
	deps Dependencies
}

// NewScrapeStep creates the scrape step.
func NewScrapeStep(deps Dependencies) *ScrapeStep {
	return &ScrapeStep{
		BaseStep: NewBaseStep(StepIDScrape, StepNameScrape),
		deps:     deps.withDefaults(),
	}
}

// Execute scrapes all manufacturers concurrently and stores the merged
// ledger on state. Ledger order follows the configuration.
func (s *ScrapeStep) Execute(ctx context.Context, state *OperationState) error {
	cfg := s.deps.Config
	ledgers := make([]*availability.Ledger, len(cfg.Manufacturers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Run.ManufacturerConcurrency)
	for i, m := range cfg.Manufacturers {
		g.Go(func() error {
			ledgers[i] = s.scrapeManufacturer(gctx, m, state)
			return nil
		})
	}
	_ = g.Wait()

	ledger := availability.NewLedger()
	for _, l := range ledgers {
		ledger.Merge(l)
	}
	state.SetLedger(ledger)

	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata("manufacturers", len(cfg.Manufacturers))
	}
	return ctx.Err()
}

func (s *ScrapeStep) scrapeManufacturer(ctx context.Context, m config.Manufacturer, state *OperationState) *availability.Ledger {
	logger := s.deps.Logger.With(slog.String("manufacturer", m.Name))
	ctx, span := infrastructure.StartSpan(ctx, "scrape.manufacturer", attribute.String("manufacturer", m.Name))
	defer span.End()

	ledger := availability.NewLedger()
	if expected := m.ExpectedPerDay(); expected != nil {
		ledger.SetExpectedPerDay(m.Name, *expected)
	}

	vcfg := m.ValidationConfig()
	results := make([]availability.DeviceSummary, len(m.Devices))
	for i, d := range m.Devices {
		results[i] = availability.FailedDevice(d.ID, d.Location)
	}

	adapter, err := s.deps.NewAdapter(m)
	if err == nil {
		err = adapter.Connect(ctx)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Cannot connect to manufacturer", slog.String("error", err.Error()))
		infrastructure.RecordError(ctx, err)
		for range m.Devices {
			s.deps.Metrics.DeviceFailed(m.Name, FailureConnect)
		}
		for _, r := range results {
			ledger.Record(m.Name, r)
		}
		return ledger
	}
	vcfg = adapter.ValidationConfig()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.Config.Run.DeviceConcurrency)
	for i, d := range m.Devices {
		g.Go(func() error {
			if summary, ok := s.scrapeDevice(gctx, m, d, vcfg, adapter, state, logger); ok {
				results[i] = summary
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		ledger.Record(m.Name, r)
	}
	return ledger
}

// scrapeDevice returns false when the device must be recorded as failed.
func (s *ScrapeStep) scrapeDevice(
	ctx context.Context,
	m config.Manufacturer,
	d config.Device,
	vcfg domain.ValidationConfig,
	adapter vendor.Adapter,
	state *OperationState,
	logger *slog.Logger,
) (availability.DeviceSummary, bool) {
	logger = logger.With(slog.String("device", d.ID))
	ctx, span := infrastructure.StartSpan(ctx, "scrape.device",
		attribute.String("manufacturer", m.Name),
		attribute.String("device", d.ID))
	defer span.End()

	fail := func(stage string, err error) (availability.DeviceSummary, bool) {
		s.deps.Metrics.DeviceFailed(m.Name, stage)
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "Device failed",
			slog.String("stage", stage),
			slog.String("error", err.Error()))
		return availability.DeviceSummary{}, false
	}

	win := state.Window
	fetchCtx, cancel := context.WithTimeout(ctx, s.deps.Config.Run.FetchTimeout)
	raw, err := adapter.FetchRaw(fetchCtx, d, win.Start, win.End)
	cancel()
	if err != nil {
		return fail(FailureFetch, err)
	}

	if s.deps.Config.Run.SaveRaw {
		path := s.deps.Files.RawPath(m.Name, d.ID, win.Start, win.End)
		if err := s.deps.csv().WriteRawTable(path, raw); err != nil {
			logger.WarnContext(ctx, "Failed to save raw table", slog.String("error", err.Error()))
		} else {
			state.AddOutput(path)
			s.deps.upload(ctx, m.Name, storage.CategoryRaw, path)
		}
	}

	long, summary, err := dataprocessing.Canonicalize(raw, vcfg)
	if err != nil {
		return fail(FailureValidate, err)
	}
	long.DeviceID = d.ID
	s.deps.Metrics.ObserveSummary(m.Name, summary)

	path := s.deps.Files.CleanPath(m.Name, d.ID, win.Start, win.End)
	if err := s.deps.csv().WriteLongTable(path, long); err != nil {
		return fail(FailureSave, err)
	}
	state.AddOutput(path)
	s.deps.upload(ctx, m.Name, storage.CategoryClean, path)

	logger.InfoContext(ctx, "Device scraped",
		slog.Int("rows", summary.Rows),
		slog.Int("timestamps", summary.Counts[domain.TimestampKey]),
		slog.Int("records", len(long.Records)))

	return availability.DeviceSummary{DeviceID: d.ID, Location: d.Location, Summary: summary}, true
}
