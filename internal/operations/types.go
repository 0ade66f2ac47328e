package operations

import (
	"fmt"
	"time"
)

// Step identifiers
const (
	StepIDScrape  = "scrape"
	StepIDReport  = "report"
	StepIDProcess = "process"
)

// Step names
const (
	StepNameScrape  = "Scrape and Validate"
	StepNameReport  = "Availability Report"
	StepNameProcess = "Wide Analysis"
)

// Device failure stages used in logs and metrics.
const (
	FailureConnect  = "connect"
	FailureFetch    = "fetch"
	FailureValidate = "validate"
	FailureSave     = "save"
	FailureUpload   = "upload"
	FailureLoad     = "load"
	FailureAssemble = "assemble"
)

// Window is the half-open scraping interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayWindow returns [day 00:00, next day 00:00) in day's location.
func DayWindow(day time.Time) Window {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// YesterdayWindow returns the window of the day before now.
func YesterdayWindow(now time.Time) Window {
	return DayWindow(now.AddDate(0, 0, -1))
}

// ParseDayWindow parses a YYYY-MM-DD day in UTC.
func ParseDayWindow(day string) (Window, error) {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return Window{}, fmt.Errorf("invalid day %q, want YYYY-MM-DD: %w", day, err)
	}
	return DayWindow(t), nil
}

// Day returns the window's first day as YYYY-MM-DD.
func (w Window) Day() string {
	return w.Start.Format(time.DateOnly)
}

// OperationRequest selects the steps and window of one run.
type OperationRequest struct {
	ID     string   `json:"id"`
	Steps  []string `json:"steps"`
	Window Window   `json:"window"`
}

// OperationResponse summarises a finished run.
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatus       `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
