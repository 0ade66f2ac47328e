package operations

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aqdaily/internal/config"
	"aqdaily/internal/exporter"
	"aqdaily/internal/files"
	"aqdaily/internal/infrastructure"
	"aqdaily/internal/storage"
	"aqdaily/internal/vendor"
	"aqdaily/pkg/contracts/domain"
)

type recordingUploader struct {
	mu    sync.Mutex
	paths map[storage.Category][]string
	fail  bool
}

func (u *recordingUploader) Name() string { return "recording" }

func (u *recordingUploader) Upload(_ context.Context, category storage.Category, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.paths == nil {
		u.paths = make(map[storage.Category][]string)
	}
	u.paths[category] = append(u.paths[category], filepath.Base(path))
	if u.fail {
		return errors.New("remote unavailable")
	}
	return nil
}

// unreachableAdapter never connects.
type unreachableAdapter struct {
	m config.Manufacturer
}

func (a unreachableAdapter) Name() string                  { return a.m.Name }
func (a unreachableAdapter) Connect(context.Context) error { return errors.New("connection refused") }
func (a unreachableAdapter) FetchRaw(context.Context, config.Device, time.Time, time.Time) (domain.RawTable, error) {
	return nil, errors.New("not connected")
}
func (a unreachableAdapter) ValidationConfig() domain.ValidationConfig { return a.m.ValidationConfig() }

type pipeline struct {
	cfg      *config.Config
	manager  *Manager
	metrics  *infrastructure.Metrics
	uploader *recordingUploader
	files    *files.Manager
}

func newPipeline(t *testing.T, resolution string) *pipeline {
	t.Helper()
	root := t.TempDir()
	drops := filepath.Join(root, "drops")
	require.NoError(t, os.MkdirAll(drops, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(drops, "AQY1_2024-03-01.csv"), []byte(
		"Time,NO2,PM2.5\n"+
			"2024-03-01 00:00,1,0.5\n"+
			"2024-03-01 00:01,3,bad\n"+
			"2024-03-01 00:30,5,1\n"), 0644))

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		DataDir:     root,
		RawDir:      filepath.Join(root, "raw"),
		CleanDir:    filepath.Join(root, "clean"),
		AnalysisDir: filepath.Join(root, "analysis"),
		ReportsDir:  filepath.Join(root, "reports"),
		LogsDir:     filepath.Join(root, "logs"),
	}
	require.NoError(t, cfg.Paths.EnsureDirectories(discardLogger()))
	cfg.Analysis = config.AnalysisConfig{TimeResolution: resolution, ExportXLSX: true}
	cfg.Metrics.TextfilePath = filepath.Join(root, "aqdaily.prom")
	cfg.Manufacturers = []config.Manufacturer{
		{
			Name:            "Aeroqual",
			TimestampColumn: "Time",
			TimestampFormat: "%Y-%m-%d %H:%M",
			Fields: []config.Field{
				{ID: "NO2", WebID: "NO2", IncludedAnalysis: true},
				{ID: "PM2.5", WebID: "PM2.5", Scale: 1000, IncludedAnalysis: true},
			},
			Devices: []config.Device{
				{ID: "AQY1", WebID: "AQY1", Location: "York"},
				{ID: "AQY2", WebID: "AQY2"},
			},
			Source: config.Source{Kind: config.SourceFile, Dir: drops},
		},
		{
			Name:            "Offline",
			TimestampColumn: "ts",
			TimestampFormat: "%Y-%m-%d %H:%M",
			Fields:          []config.Field{{ID: "CO", WebID: "CO", IncludedAnalysis: true}},
			Devices:         []config.Device{{ID: "B1", WebID: "B1"}},
		},
	}

	p := &pipeline{
		cfg:      cfg,
		metrics:  infrastructure.NewMetrics(),
		uploader: &recordingUploader{},
	}
	p.files = files.NewManager(cfg.Paths, discardLogger())
	deps := Dependencies{
		Config:   cfg,
		Files:    p.files,
		Uploader: p.uploader,
		Metrics:  p.metrics,
		Logger:   discardLogger(),
		NewAdapter: func(m config.Manufacturer) (vendor.Adapter, error) {
			if m.Name == "Offline" {
				return unreachableAdapter{m: m}, nil
			}
			return vendor.New(m)
		},
		Now: func() time.Time { return time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC) },
	}

	p.manager = NewManager(nil, p.metrics, discardLogger())
	require.NoError(t, p.manager.RegisterStep(NewScrapeStep(deps)))
	require.NoError(t, p.manager.RegisterStep(NewReportStep(deps)))
	require.NoError(t, p.manager.RegisterStep(NewProcessStep(deps)))
	return p
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestPipeline_EndToEnd(t *testing.T) {
	p := newPipeline(t, "30Min")

	resp, err := p.manager.Execute(context.Background(), OperationRequest{Window: testWindow})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	// Clean file for the device with data only.
	clean := p.files.CleanPath("Aeroqual", "AQY1", testWindow.Start, testWindow.End)
	long, err := files.ReadLongCSV(clean, "AQY1")
	require.NoError(t, err)
	assert.Len(t, long.Records, 5)
	assert.NoFileExists(t, p.files.CleanPath("Aeroqual", "AQY2", testWindow.Start, testWindow.End))
	assert.FileExists(t, p.files.RawPath("Aeroqual", "AQY1", testWindow.Start, testWindow.End))

	// Failed devices are listed apart from the availability grid.
	data, err := os.ReadFile(p.files.ReportPath("2024-03-01", files.ExtJSON))
	require.NoError(t, err)
	var report domain.AvailabilityReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "2024-03-01", report.Day)
	require.Len(t, report.Tables, 2)
	assert.Equal(t, "Aeroqual", report.Tables[0].Manufacturer)
	assert.Equal(t, [][]string{
		{"Device ID", "Location", "Timestamps", "NO2", "PM2.5"},
		{"AQY1", "York", "3", "3", "2"},
	}, report.Tables[0].Rows)
	assert.Equal(t, []string{"AQY2"}, report.Tables[0].Failed)
	assert.Empty(t, report.Tables[1].Rows)
	assert.Equal(t, []string{"B1"}, report.Tables[1].Failed)
	assert.FileExists(t, p.files.ReportPath("2024-03-01", files.ExtHTML))
	text, err := os.ReadFile(p.files.ReportPath("2024-03-01", files.ExtText))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Aeroqual")
	assert.Contains(t, string(text), "No data: AQY2")

	// Wide analysis resampled to 30 minutes.
	wide := readCSV(t, p.files.AnalysisPath("Aeroqual", testWindow.Start, testWindow.End, files.ExtCSV))
	require.Len(t, wide, 3)
	assert.Equal(t, []string{"timestamp", "NO2_AQY1", "NO2_AQY2", "PM2.5_AQY1", "PM2.5_AQY2"}, wide[0])
	assert.Equal(t, []string{"2024-03-01 00:00:00", "2", "", "500", ""}, wide[1])
	assert.Equal(t, []string{"2024-03-01 00:30:00", "5", "", "1000", ""}, wide[2])

	wb, err := excelize.OpenFile(p.files.WorkbookPath(testWindow.Start, testWindow.End))
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Aeroqual")

	// Failures are counted per stage.
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.DeviceFailures.WithLabelValues("Offline", FailureConnect)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.DeviceFailures.WithLabelValues("Aeroqual", FailureFetch)))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.metrics.ResampleFallbacks))
	assert.FileExists(t, p.cfg.Metrics.TextfilePath)

	assert.Len(t, p.uploader.paths[storage.CategoryRaw], 1)
	assert.Len(t, p.uploader.paths[storage.CategoryClean], 1)
	assert.Len(t, p.uploader.paths[storage.CategoryReport], 3)
	assert.Contains(t, p.uploader.paths[storage.CategoryAnalysis], "analysis_2024-03-01_2024-03-02.xlsx")
	assert.NotEmpty(t, resp.Steps[StepIDProcess].Metadata)
}

func TestPipeline_ResampleFallback(t *testing.T) {
	p := newPipeline(t, "1ns")

	_, err := p.manager.Execute(context.Background(), OperationRequest{Window: testWindow})
	require.NoError(t, err)

	wide := readCSV(t, p.files.AnalysisPath("Aeroqual", testWindow.Start, testWindow.End, files.ExtCSV))
	require.Len(t, wide, 4)
	assert.Equal(t, []string{"2024-03-01 00:01:00", "3", "", "", ""}, wide[2])
	assert.GreaterOrEqual(t, testutil.ToFloat64(p.metrics.ResampleFallbacks), 1.0)
}

func TestPipeline_UploadFailuresDoNotFailSteps(t *testing.T) {
	p := newPipeline(t, "1H")
	p.uploader.fail = true

	resp, err := p.manager.Execute(context.Background(), OperationRequest{Window: testWindow})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Positive(t, testutil.ToFloat64(p.metrics.DeviceFailures.WithLabelValues("Aeroqual", FailureUpload)))
}

func TestReportStep_WithoutScrape(t *testing.T) {
	p := newPipeline(t, "1H")

	resp, err := p.manager.Execute(context.Background(), OperationRequest{
		Steps:  []string{StepIDReport},
		Window: testWindow,
	})
	require.NoError(t, err)
	assert.Equal(t, StepStatusCompleted, resp.Steps[StepIDReport].GetStatus())

	days, err := files.NewDiscovery(p.files).ReportDays()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01"}, days)

	html, err := os.ReadFile(p.files.ReportPath("2024-03-01", files.ExtHTML))
	require.NoError(t, err)
	assert.Contains(t, string(html), "2024-03-01")
}

func TestProcessStep_UsesConfiguredDeviceIDs(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		DataDir:     root,
		RawDir:      filepath.Join(root, "raw"),
		CleanDir:    filepath.Join(root, "clean"),
		AnalysisDir: filepath.Join(root, "analysis"),
		ReportsDir:  filepath.Join(root, "reports"),
		LogsDir:     filepath.Join(root, "logs"),
	}
	require.NoError(t, cfg.Paths.EnsureDirectories(discardLogger()))
	cfg.Analysis = config.AnalysisConfig{TimeResolution: "1H"}
	field := []config.Field{{ID: "NO2", WebID: "NO2", IncludedAnalysis: true}}
	cfg.Manufacturers = []config.Manufacturer{
		{
			Name: "Aeroqual", TimestampColumn: "Time", TimestampFormat: "%Y-%m-%d %H:%M",
			Fields: field, Devices: []config.Device{{ID: "AQY 872", WebID: "AQY 872"}},
		},
		{
			Name: "Aeroqual_Lab", TimestampColumn: "Time", TimestampFormat: "%Y-%m-%d %H:%M",
			Fields: field, Devices: []config.Device{{ID: "dev1", WebID: "dev1"}},
		},
	}

	fm := files.NewManager(cfg.Paths, discardLogger())
	writer := exporter.NewCSVWriter(discardLogger())
	at := testWindow.Start.Add(10 * time.Minute)
	for _, c := range []struct{ manufacturer, device string }{{"Aeroqual", "AQY 872"}, {"Aeroqual_Lab", "dev1"}} {
		table := domain.CanonicalLongTable{
			DeviceID: c.device,
			Records:  []domain.CanonicalRecord{{Timestamp: at, Measurand: "NO2", Value: 4}},
		}
		require.NoError(t, writer.WriteLongTable(fm.CleanPath(c.manufacturer, c.device, testWindow.Start, testWindow.End), table))
	}

	metrics := infrastructure.NewMetrics()
	manager := NewManager(nil, metrics, discardLogger())
	require.NoError(t, manager.RegisterStep(NewProcessStep(Dependencies{
		Config:  cfg,
		Files:   fm,
		Metrics: metrics,
		Logger:  discardLogger(),
	})))

	resp, err := manager.Execute(context.Background(), OperationRequest{
		Steps:  []string{StepIDProcess},
		Window: testWindow,
	})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	tests := []struct {
		manufacturer string
		want         [][]string
	}{
		{"Aeroqual", [][]string{{"timestamp", "NO2_AQY872"}, {"2024-03-01 00:00:00", "4"}}},
		{"Aeroqual_Lab", [][]string{{"timestamp", "NO2_dev1"}, {"2024-03-01 00:00:00", "4"}}},
	}
	for _, tt := range tests {
		t.Run(tt.manufacturer, func(t *testing.T) {
			got := readCSV(t, fm.AnalysisPath(tt.manufacturer, testWindow.Start, testWindow.End, files.ExtCSV))
			assert.Equal(t, tt.want, got)
		})
	}
}
