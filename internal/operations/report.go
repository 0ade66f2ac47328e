package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"aqdaily/internal/availability"
	"aqdaily/internal/files"
	"aqdaily/internal/storage"
	"aqdaily/pkg/contracts/domain"
)

// ReportStep renders the availability ledger: ASCII lines to the log, and
// text, HTML and JSON files to the reports directory.
type ReportStep struct {
	BaseStep
	deps Dependencies
}

// NewReportStep creates the report step.
func NewReportStep(deps Dependencies) *ReportStep {
	return &ReportStep{
		BaseStep: NewBaseStep(StepIDReport, StepNameReport),
		deps:     deps.withDefaults(),
	}
}

// Execute renders an empty report when no scrape ran in this operation.
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	ledger := state.Ledger()
	if ledger == nil {
		ledger = availability.NewLedger()
	}

	report := ledger.Report(state.Window.Start, state.Window.End, s.deps.Now())
	rc := s.deps.Config.Report

	lines := availability.RenderASCII(report.Tables, rc.ColumnWidth, rc.ScreenWidth)
	for _, line := range lines {
		s.deps.Logger.InfoContext(ctx, line)
	}

	styles := availability.DefaultStyles()
	if rc.PassColour != "" {
		styles.PassColour = rc.PassColour
	}
	if rc.WarningColour != "" {
		styles.WarningColour = rc.WarningColour
	}
	if rc.FailColour != "" {
		styles.FailColour = rc.FailColour
	}
	html, err := availability.RenderHTML(report, styles)
	if err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	outputs := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{files.ExtText, func(w io.Writer) error {
			_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
			return err
		}},
		{files.ExtHTML, func(w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		}},
		{files.ExtJSON, func(w io.Writer) error { return writeReportJSON(w, report) }},
	}

	for _, out := range outputs {
		path := s.deps.Files.ReportPath(report.Day, out.ext)
		if err := s.deps.Files.WriteAtomic(path, out.write); err != nil {
			return fmt.Errorf("write report %s: %w", out.ext, err)
		}
		state.AddOutput(path)
		s.deps.upload(ctx, "", storage.CategoryReport, path)
	}

	if err := s.deps.Metrics.WriteTextfile(s.deps.Config.Metrics.TextfilePath); err != nil {
		s.deps.Logger.WarnContext(ctx, "Cannot write metrics textfile", slog.String("error", err.Error()))
	}

	s.deps.Logger.InfoContext(ctx, "Availability report written",
		slog.String("day", report.Day),
		slog.String("report_id", report.ID),
		slog.Int("manufacturers", len(report.Tables)))
	return nil
}

func writeReportJSON(w io.Writer, report domain.AvailabilityReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
