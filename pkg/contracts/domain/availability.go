package domain

import (
	"time"
)

// AvailabilityTable is one manufacturer's availability grid, header first.
type AvailabilityTable struct {
	Manufacturer   string     `json:"manufacturer" validate:"required"`
	ExpectedPerDay *int       `json:"expected_per_day,omitempty"`
	Rows           [][]string `json:"rows"`
	// Failed lists devices that produced no summary.
	Failed []string `json:"failed,omitempty"`
}

// AvailabilityReport is the persisted daily availability document.
type AvailabilityReport struct {
	ID          string              `json:"id" validate:"required,uuid"`
	Day         string              `json:"day" validate:"required,datetime=2006-01-02"`
	Start       time.Time           `json:"start"`
	End         time.Time           `json:"end"`
	GeneratedAt time.Time           `json:"generated_at"`
	Tables      []AvailabilityTable `json:"tables" validate:"dive"`
}
