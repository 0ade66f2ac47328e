package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aqdaily/internal/config"
)

// File name date layout.
const dateLayout = "2006-01-02"

// Report file extensions.
const (
	ExtJSON = ".json"
	ExtHTML = ".html"
	ExtText = ".txt"
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// Manager knows where every pipeline output lives and writes files safely.
type Manager struct {
	paths  config.PathsConfig
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths config.PathsConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// Paths returns the configured directories.
func (m *Manager) Paths() config.PathsConfig { return m.paths }

// RawPath is <raw>/<manufacturer>_<device>_<start>_<end>.csv.
func (m *Manager) RawPath(manufacturer, device string, start, end time.Time) string {
	return filepath.Join(m.paths.RawDir, deviceFileName(manufacturer, device, start, end))
}

// CleanPath is <clean>/<manufacturer>_<device>_<start>_<end>.csv.
func (m *Manager) CleanPath(manufacturer, device string, start, end time.Time) string {
	return filepath.Join(m.paths.CleanDir, deviceFileName(manufacturer, device, start, end))
}

// AnalysisPath is <analysis>/<manufacturer>_<start>_<end><ext>.
func (m *Manager) AnalysisPath(manufacturer string, start, end time.Time, ext string) string {
	name := fmt.Sprintf("%s_%s_%s%s", SafeName(manufacturer), start.Format(dateLayout), end.Format(dateLayout), ext)
	return filepath.Join(m.paths.AnalysisDir, name)
}

// WorkbookPath is <analysis>/analysis_<start>_<end>.xlsx.
func (m *Manager) WorkbookPath(start, end time.Time) string {
	return filepath.Join(m.paths.AnalysisDir,
		fmt.Sprintf("analysis_%s_%s%s", start.Format(dateLayout), end.Format(dateLayout), ExtXLSX))
}

// ReportPath is <reports>/availability_<day><ext>.
func (m *Manager) ReportPath(day, ext string) string {
	return filepath.Join(m.paths.ReportsDir, reportPrefix+day+ext)
}

// WriteAtomic writes through a temp file in the target directory and renames
// it into place, so readers never see a partial file.
func (m *Manager) WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}

	m.logger.Debug("Wrote file", slog.String("path", path))
	return nil
}

// WriteString is WriteAtomic for an in-memory body.
func (m *Manager) WriteString(path, body string) error {
	return m.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
}

func deviceFileName(manufacturer, device string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s%s", SafeName(manufacturer), SafeName(device),
		start.Format(dateLayout), end.Format(dateLayout), ExtCSV)
}

// SafeName replaces path separators and whitespace so a name can be used
// inside a file name.
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '-'
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
}
