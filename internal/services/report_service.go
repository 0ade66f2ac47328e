package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	apperrors "aqdaily/internal/errors"
	"aqdaily/internal/files"
	"aqdaily/pkg/contracts/domain"
)

// ReportService reads persisted availability reports.
type ReportService struct {
	files     *files.Manager
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewReportService creates a report service over the reports directory.
func NewReportService(fm *files.Manager, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		files:     fm,
		discovery: files.NewDiscovery(fm),
		logger:    logger.With(slog.String("service", "reports")),
	}
}

// Days lists the days with a report, newest first. No reports is an empty
// list, not an error.
func (s *ReportService) Days(ctx context.Context) ([]string, error) {
	days, err := s.discovery.ReportDays()
	if err != nil {
		return nil, apperrors.NewStorageError("list reports", err)
	}
	if days == nil {
		days = []string{}
	}
	s.logger.DebugContext(ctx, "Listed reports", slog.Int("count", len(days)))
	return days, nil
}

// Report loads the JSON report of day (YYYY-MM-DD).
func (s *ReportService) Report(ctx context.Context, day string) (*domain.AvailabilityReport, error) {
	data, err := s.read(day, files.ExtJSON)
	if err != nil {
		return nil, err
	}
	var report domain.AvailabilityReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("report %s", day), err)
	}
	return &report, nil
}

// ReportHTML returns the rendered HTML report of day.
func (s *ReportService) ReportHTML(ctx context.Context, day string) ([]byte, error) {
	return s.read(day, files.ExtHTML)
}

func (s *ReportService) read(day, ext string) ([]byte, error) {
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return nil, apperrors.NewValidationError("invalid day %q, want YYYY-MM-DD", day)
	}
	data, err := os.ReadFile(s.files.ReportPath(day, ext))
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("report for %s", day))
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("read report %s", day), err)
	}
	return data, nil
}
