package domain

import (
	"time"
)

// TimestampLayout is the layout every canonical timestamp is rendered with.
const TimestampLayout = "2006-01-02 15:04:05"

// TimestampKey is the ValidationSummary counter for rows whose timestamp parsed.
const TimestampKey = "timestamp"

// RawTable is a vendor download as rows of string cells.
// Row 0 is the header; every data row has the header's arity.
type RawTable [][]string

// Header returns the first row, or nil for an empty table.
func (t RawTable) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// DataRows returns every row after the header.
func (t RawTable) DataRows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// ValueColumn describes one measurand column of a vendor table.
type ValueColumn struct {
	Name  string  `json:"name" yaml:"name" validate:"required"`
	Label string  `json:"label,omitempty" yaml:"label"`
	Scale float64 `json:"scale,omitempty" yaml:"scale"`
}

// OutputLabel returns the measurand name emitted for this column.
func (c ValueColumn) OutputLabel() string {
	if c.Label == "" {
		return c.Name
	}
	return c.Label
}

// Multiplier returns the scale applied to parsed values. Zero means unset.
func (c ValueColumn) Multiplier() float64 {
	if c.Scale == 0 {
		return 1.0
	}
	return c.Scale
}

// ValidationConfig tells the canonicalizer how to read one device's table.
type ValidationConfig struct {
	TimestampColumn string        `json:"timestamp_column" validate:"required"`
	TimestampFormat string        `json:"timestamp_format" validate:"required"`
	ValueColumns    []ValueColumn `json:"value_columns" validate:"dive"`
}

// Labels returns the output label of every configured value column in order.
func (c ValidationConfig) Labels() []string {
	labels := make([]string, 0, len(c.ValueColumns))
	for _, col := range c.ValueColumns {
		labels = append(labels, col.OutputLabel())
	}
	return labels
}

// CanonicalRecord is a single validated (timestamp, measurand, value) triple.
type CanonicalRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Measurand string    `json:"measurand"`
	Value     float64   `json:"value"`
}

// CanonicalLongTable holds the validated records of one device.
type CanonicalLongTable struct {
	DeviceID string            `json:"device_id"`
	Records  []CanonicalRecord `json:"records"`
}

// ValidationSummary counts what survived canonicalization for one device.
// Counts always carries TimestampKey and every configured output label.
type ValidationSummary struct {
	Rows   int            `json:"rows"`
	Counts map[string]int `json:"counts"`
}

// NewValidationSummary returns a summary with zeroed counters for the labels.
func NewValidationSummary(labels []string) ValidationSummary {
	counts := make(map[string]int, len(labels)+1)
	counts[TimestampKey] = 0
	for _, l := range labels {
		counts[l] = 0
	}
	return ValidationSummary{Counts: counts}
}
