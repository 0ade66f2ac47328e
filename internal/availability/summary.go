package availability

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"aqdaily/pkg/contracts/domain"
)

// Column headers of the availability grid.
const (
	ColumnDeviceID   = "Device ID"
	ColumnLocation   = "Location"
	ColumnTimestamps = "Timestamps"
)

// DeviceSummary is one device's validation outcome for a reporting unit.
type DeviceSummary struct {
	DeviceID string                   `json:"device_id"`
	Location string                   `json:"location,omitempty"`
	Summary  domain.ValidationSummary `json:"summary"`
	// Failed marks a device with no summary at all because its fetch or
	// validation failed. It is listed apart from the grid.
	Failed bool `json:"failed,omitempty"`
}

// FailedDevice returns the entry recorded for a device whose fetch or
// validation failed.
func FailedDevice(deviceID, location string) DeviceSummary {
	return DeviceSummary{DeviceID: deviceID, Location: location, Failed: true}
}

// Table is a rendered availability grid, header row first.
type Table [][]string

// ExpectedPerDay converts a recording frequency into samples per day.
func ExpectedPerDay(frequencyPerHour float64) int {
	return int(math.Round(frequencyPerHour * 24))
}

// Summarize renders per-device counts as a grid. Columns are the device ID,
// the location when any device has one, the accepted timestamp count, then
// every observed measurand in lexical order. A measurand a device never
// reported renders as an empty cell.
func Summarize(devices []DeviceSummary, expectedPerDay *int) Table {
	withLocation := false
	measurandSet := make(map[string]struct{})
	for _, d := range devices {
		if d.Location != "" {
			withLocation = true
		}
		for k := range d.Summary.Counts {
			if k == domain.TimestampKey {
				continue
			}
			measurandSet[k] = struct{}{}
		}
	}
	measurands := make([]string, 0, len(measurandSet))
	for m := range measurandSet {
		measurands = append(measurands, m)
	}
	sort.Strings(measurands)

	header := []string{ColumnDeviceID}
	if withLocation {
		header = append(header, ColumnLocation)
	}
	header = append(header, ColumnTimestamps)
	header = append(header, measurands...)

	table := Table{header}
	for _, d := range devices {
		row := make([]string, 0, len(header))
		row = append(row, d.DeviceID)
		if withLocation {
			row = append(row, d.Location)
		}
		row = append(row, cell(d.Summary.Counts, domain.TimestampKey, expectedPerDay))
		for _, m := range measurands {
			row = append(row, cell(d.Summary.Counts, m, expectedPerDay))
		}
		table = append(table, row)
	}
	return table
}

func cell(counts map[string]int, key string, expected *int) string {
	n, ok := counts[key]
	if !ok {
		return ""
	}
	return FormatCount(n, expected)
}

// FormatCount renders "<n> (<pct>%)" against the expected count, or the bare
// count when no expectation is known. An expectation of zero yields 0%.
func FormatCount(n int, expected *int) string {
	if expected == nil {
		return strconv.Itoa(n)
	}
	pct := 0.0
	if *expected != 0 {
		pct = float64(n) / float64(*expected) * 100
	}
	return fmt.Sprintf("%d (%.0f%%)", n, pct)
}
