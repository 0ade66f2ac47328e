package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// resolve fills unset subdirectories from DataDir.
func (p *PathsConfig) resolve() {
	def := func(dir *string, sub string) {
		if *dir == "" {
			*dir = filepath.Join(p.DataDir, sub)
		}
	}
	def(&p.RawDir, RawSubdir)
	def(&p.CleanDir, CleanSubdir)
	def(&p.AnalysisDir, AnalysisSubdir)
	def(&p.ReportsDir, ReportsSubdir)
	def(&p.LogsDir, LogsSubdir)
}

// Directories returns every output directory.
func (p PathsConfig) Directories() []string {
	return []string{p.DataDir, p.RawDir, p.CleanDir, p.AnalysisDir, p.ReportsDir, p.LogsDir}
}

// EnsureDirectories creates all required directories if they don't exist
func (p PathsConfig) EnsureDirectories(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range p.Directories() {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
