package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"aqdaily/internal/config"
	"aqdaily/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	paths     config.PathsConfig
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	Uptime    string                `json:"uptime"`
	Version   contracts.VersionInfo `json:"version"`
	Checks    map[string]string     `json:"checks"`
}

// NewHealthService creates a health service checking the output directories.
func NewHealthService(paths config.PathsConfig, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports "healthy" when every output directory is present,
// "degraded" otherwise.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	checks := map[string]string{
		"data_dir":     dirCheck(s.paths.DataDir),
		"clean_dir":    dirCheck(s.paths.CleanDir),
		"analysis_dir": dirCheck(s.paths.AnalysisDir),
		"reports_dir":  dirCheck(s.paths.ReportsDir),
	}
	status := "healthy"
	for name, c := range checks {
		if c != "ok" {
			status = "degraded"
			s.logger.WarnContext(ctx, "Health check failed",
				slog.String("check", name),
				slog.String("result", c))
		}
	}
	return HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Version:   contracts.GetVersionInfo(),
		Checks:    checks,
	}
}

func dirCheck(dir string) string {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return "missing"
	case !info.IsDir():
		return "not a directory"
	default:
		return "ok"
	}
}
