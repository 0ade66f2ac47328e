package config

import (
	"time"

	"aqdaily/internal/availability"
	"aqdaily/pkg/contracts/domain"
)

// Manufacturer describes one instrument vendor and its devices.
type Manufacturer struct {
	Name                      string   `yaml:"name" validate:"required"`
	RecordingFrequencyPerHour float64  `yaml:"recording_frequency_per_hour" validate:"gte=0"`
	TimestampColumn           string   `yaml:"timestamp_column" validate:"required"`
	TimestampFormat           string   `yaml:"timestamp_format" validate:"required,strptime"`
	Fields                    []Field  `yaml:"fields" validate:"required,min=1,dive"`
	Devices                   []Device `yaml:"devices" validate:"dive"`
	Source                    Source   `yaml:"source"`
}

// Field maps a vendor column onto a measurand.
type Field struct {
	ID               string  `yaml:"id" validate:"required"`
	WebID            string  `yaml:"webid"`
	Scale            float64 `yaml:"scale"`
	IncludedAnalysis bool    `yaml:"included_analysis"`
}

// Device is one physical instrument.
type Device struct {
	ID       string `yaml:"id" validate:"required"`
	WebID    string `yaml:"webid"`
	Location string `yaml:"location"`
}

// Source tells the vendor adapter where raw tables come from.
type Source struct {
	Kind              string        `yaml:"kind" validate:"oneof=file http_csv"`
	Dir               string        `yaml:"dir" validate:"required_if=Kind file"`
	URLTemplate       string        `yaml:"url_template" validate:"required_if=Kind http_csv"`
	TokenEnv          string        `yaml:"token_env"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout"`
}

func (m *Manufacturer) normalize() {
	for i := range m.Fields {
		if m.Fields[i].WebID == "" {
			m.Fields[i].WebID = m.Fields[i].ID
		}
	}
	for i := range m.Devices {
		if m.Devices[i].WebID == "" {
			m.Devices[i].WebID = m.Devices[i].ID
		}
	}
	if m.Source.Kind == "" {
		m.Source.Kind = SourceFile
	}
}

// ValidationConfig builds the canonicalization settings for this vendor.
// Vendor column names (webid) map onto measurand labels (id).
func (m Manufacturer) ValidationConfig() domain.ValidationConfig {
	cols := make([]domain.ValueColumn, 0, len(m.Fields))
	for _, f := range m.Fields {
		name := f.WebID
		if name == "" {
			name = f.ID
		}
		cols = append(cols, domain.ValueColumn{Name: name, Label: f.ID, Scale: f.Scale})
	}
	return domain.ValidationConfig{
		TimestampColumn: m.TimestampColumn,
		TimestampFormat: m.TimestampFormat,
		ValueColumns:    cols,
	}
}

// Labels returns every field's measurand label.
func (m Manufacturer) Labels() []string {
	labels := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		labels = append(labels, f.ID)
	}
	return labels
}

// AnalysisMeasurands returns the measurands kept in the wide table.
func (m Manufacturer) AnalysisMeasurands() []string {
	var out []string
	for _, f := range m.Fields {
		if f.IncludedAnalysis {
			out = append(out, f.ID)
		}
	}
	return out
}

// DeviceIDs returns every configured device ID in order.
func (m Manufacturer) DeviceIDs() []string {
	ids := make([]string, 0, len(m.Devices))
	for _, d := range m.Devices {
		ids = append(ids, d.ID)
	}
	return ids
}

// ExpectedPerDay returns the expected samples per device per day, or nil
// when no recording frequency is configured.
func (m Manufacturer) ExpectedPerDay() *int {
	if m.RecordingFrequencyPerHour <= 0 {
		return nil
	}
	n := availability.ExpectedPerDay(m.RecordingFrequencyPerHour)
	return &n
}
