package availability

import (
	"time"

	"github.com/google/uuid"

	"aqdaily/pkg/contracts/domain"
)

// Ledger accumulates device summaries per manufacturer over one run.
// It is a plain value owned by one goroutine; concurrent workers each build
// their own and the caller merges them.
type Ledger struct {
	order []string
	units map[string]*unit
}

type unit struct {
	devices  []DeviceSummary
	expected *int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{units: make(map[string]*unit)}
}

func (l *Ledger) unit(manufacturer string) *unit {
	u, ok := l.units[manufacturer]
	if !ok {
		u = &unit{}
		l.units[manufacturer] = u
		l.order = append(l.order, manufacturer)
	}
	return u
}

// Record appends a device summary under a manufacturer.
func (l *Ledger) Record(manufacturer string, d DeviceSummary) {
	u := l.unit(manufacturer)
	u.devices = append(u.devices, d)
}

// SetExpectedPerDay sets the per-day sample expectation used for percentages.
func (l *Ledger) SetExpectedPerDay(manufacturer string, n int) {
	v := n
	l.unit(manufacturer).expected = &v
}

// Merge appends other's manufacturers and devices after l's own.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	for _, m := range other.order {
		src := other.units[m]
		dst := l.unit(m)
		dst.devices = append(dst.devices, src.devices...)
		if src.expected != nil {
			dst.expected = src.expected
		}
	}
}

// Manufacturers lists manufacturers in first-recorded order.
func (l *Ledger) Manufacturers() []string {
	return append([]string(nil), l.order...)
}

// Devices returns the summaries recorded for a manufacturer.
func (l *Ledger) Devices(manufacturer string) []DeviceSummary {
	u, ok := l.units[manufacturer]
	if !ok {
		return nil
	}
	return append([]DeviceSummary(nil), u.devices...)
}

// Count looks up the accepted count for manufacturer, device and measurand.
func (l *Ledger) Count(manufacturer, device, measurand string) (int, bool) {
	u, ok := l.units[manufacturer]
	if !ok {
		return 0, false
	}
	for _, d := range u.devices {
		if d.DeviceID != device {
			continue
		}
		n, ok := d.Summary.Counts[measurand]
		return n, ok
	}
	return 0, false
}

// Tables renders every manufacturer's grid in recorded order. Failed devices
// are left out of the grid and named in Failed; a manufacturer whose devices
// all failed has no rows.
func (l *Ledger) Tables() []domain.AvailabilityTable {
	tables := make([]domain.AvailabilityTable, 0, len(l.order))
	for _, m := range l.order {
		u := l.units[m]
		var available []DeviceSummary
		var failed []string
		for _, d := range u.devices {
			if d.Failed {
				failed = append(failed, d.DeviceID)
				continue
			}
			available = append(available, d)
		}

		t := domain.AvailabilityTable{
			Manufacturer:   m,
			ExpectedPerDay: u.expected,
			Failed:         failed,
		}
		if len(available) > 0 {
			t.Rows = Summarize(available, u.expected)
		}
		tables = append(tables, t)
	}
	return tables
}

// Report wraps the rendered tables for the window [start, end).
func (l *Ledger) Report(start, end, now time.Time) domain.AvailabilityReport {
	return domain.AvailabilityReport{
		ID:          uuid.New().String(),
		Day:         start.Format("2006-01-02"),
		Start:       start,
		End:         end,
		GeneratedAt: now,
		Tables:      l.Tables(),
	}
}
