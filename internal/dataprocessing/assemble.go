package dataprocessing

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

// CompositeKey builds the wide-table column name for a measurand on a device.
func CompositeKey(measurand, device string) string {
	return stripSpace(measurand + "_" + device)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

type accumulator struct {
	sum   float64
	count int
}

// Assemble pivots device-tagged long tables into a wide table.
//
// Records sharing a timestamp and composite key are averaged. When expected
// measurands or devices are given, every combination becomes a column even
// if never observed; expected measurands also restrict which records are
// kept. Rows with no value in any column are not emitted.
func Assemble(tables []domain.CanonicalLongTable, expectedMeasurands, expectedDevices []string) (domain.WideTable, error) {
	keep := toSet(expectedMeasurands)

	cells := make(map[int64]map[string]*accumulator)
	stamps := make(map[int64]time.Time)
	keys := make(map[string]struct{})
	var observedMeasurands, observedDevices []string
	seenMeasurand := make(map[string]struct{})
	seenDevice := make(map[string]struct{})

	for ti, table := range tables {
		if strings.TrimSpace(table.DeviceID) == "" {
			return domain.WideTable{}, errors.NewConversionError("table %d has no device tag", ti)
		}
		for ri, rec := range table.Records {
			if err := checkRecord(rec); err != nil {
				return domain.WideTable{}, err.
					WithContext("device", table.DeviceID).
					WithContext("record", ri)
			}
			if len(keep) > 0 {
				if _, ok := keep[rec.Measurand]; !ok {
					continue
				}
			}

			if _, ok := seenMeasurand[rec.Measurand]; !ok {
				seenMeasurand[rec.Measurand] = struct{}{}
				observedMeasurands = append(observedMeasurands, rec.Measurand)
			}
			if _, ok := seenDevice[table.DeviceID]; !ok {
				seenDevice[table.DeviceID] = struct{}{}
				observedDevices = append(observedDevices, table.DeviceID)
			}

			key := CompositeKey(rec.Measurand, table.DeviceID)
			keys[key] = struct{}{}

			at := rec.Timestamp.UnixNano()
			row, ok := cells[at]
			if !ok {
				row = make(map[string]*accumulator)
				cells[at] = row
				stamps[at] = rec.Timestamp
			}
			acc, ok := row[key]
			if !ok {
				acc = &accumulator{}
				row[key] = acc
			}
			acc.sum += rec.Value
			acc.count++
		}
	}

	if len(expectedMeasurands) > 0 || len(expectedDevices) > 0 {
		measurands := expectedMeasurands
		if len(measurands) == 0 {
			measurands = observedMeasurands
		}
		devices := expectedDevices
		if len(devices) == 0 {
			devices = observedDevices
		}
		for _, m := range measurands {
			for _, d := range devices {
				keys[CompositeKey(m, d)] = struct{}{}
			}
		}
	}

	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	order := make([]int64, 0, len(cells))
	for at := range cells {
		order = append(order, at)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	wide := domain.WideTable{
		Timestamps: make([]time.Time, 0, len(order)),
		Columns:    columns,
		Cells:      make([][]domain.Cell, 0, len(order)),
	}
	for _, at := range order {
		row := cells[at]
		out := make([]domain.Cell, len(columns))
		for ci, col := range columns {
			if acc, ok := row[col]; ok {
				out[ci] = domain.Present(acc.sum / float64(acc.count))
			}
		}
		wide.Timestamps = append(wide.Timestamps, stamps[at])
		wide.Cells = append(wide.Cells, out)
	}
	return wide, nil
}

func checkRecord(rec domain.CanonicalRecord) *errors.AppError {
	switch {
	case rec.Timestamp.IsZero():
		return errors.NewConversionError("record has no timestamp")
	case strings.TrimSpace(rec.Measurand) == "":
		return errors.NewConversionError("record has no measurand")
	case math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0):
		return errors.NewConversionError("record value %v is not a finite number", rec.Value)
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
