package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

// maxWindows bounds the output grid of a single resample.
const maxWindows = 1 << 22

var offsetPattern = regexp.MustCompile(`^(\d*)\s*([A-Za-z]+)$`)

var offsetUnits = map[string]time.Duration{
	"ns":      time.Nanosecond,
	"n":       time.Nanosecond,
	"us":      time.Microsecond,
	"u":       time.Microsecond,
	"ms":      time.Millisecond,
	"l":       time.Millisecond,
	"s":       time.Second,
	"sec":     time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"t":       time.Minute,
	"min":     time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"d":       24 * time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
}

// ParseResolution parses a window width. Offset aliases such as "1Min",
// "15T", "1H" or "2D" are accepted, as are Go durations like "90s" or "1h30m".
func ParseResolution(resolution string) (time.Duration, error) {
	s := strings.TrimSpace(resolution)
	if s == "" {
		return 0, errors.NewResamplingError("resolution is empty")
	}

	var d time.Duration
	if m := offsetPattern.FindStringSubmatch(s); m != nil {
		if unit, ok := offsetUnits[strings.ToLower(m[2])]; ok {
			n := int64(1)
			if m[1] != "" {
				parsed, err := strconv.ParseInt(m[1], 10, 64)
				if err != nil {
					return 0, errors.NewResamplingError("invalid resolution %q", resolution)
				}
				n = parsed
			}
			if n > math.MaxInt64/int64(unit) {
				return 0, errors.NewResamplingError("resolution %q is out of range", resolution)
			}
			d = time.Duration(n) * unit
		}
	}
	if d == 0 {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, errors.NewResamplingError("invalid resolution %q", resolution)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, errors.NewResamplingError("resolution %q is not a positive duration", resolution)
	}
	return d, nil
}

// Resample re-bins a wide table onto fixed windows anchored at midnight of
// the first row's day. Each output cell is the mean of the valid inputs in
// its window; a window with none stays missing. The output spans the first
// through the last window that received a row.
func Resample(table domain.WideTable, resolution string) (domain.ResampledTable, error) {
	res, err := ParseResolution(resolution)
	if err != nil {
		return domain.ResampledTable{}, err
	}
	if err := checkTimeIndex(table); err != nil {
		return domain.ResampledTable{}, err
	}

	out := domain.ResampledTable{
		WideTable: domain.WideTable{
			Columns:    append([]string(nil), table.Columns...),
			Timestamps: []time.Time{},
			Cells:      [][]domain.Cell{},
		},
		Resolution: res,
	}
	if table.Len() == 0 {
		return out, nil
	}

	first := table.Timestamps[0]
	origin := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	out.Origin = origin

	bin := func(ts time.Time) int64 {
		return int64(ts.Sub(origin) / res)
	}
	firstBin := bin(first)
	lastBin := bin(table.Timestamps[table.Len()-1])
	width := len(table.Columns)
	if lastBin-firstBin >= maxWindows {
		return domain.ResampledTable{}, errors.NewResamplingError(
			"resolution %s yields more than %d windows", res, maxWindows)
	}
	n := int(lastBin - firstBin + 1)

	sums := make([][]accumulator, n)
	for i := range sums {
		sums[i] = make([]accumulator, width)
	}
	for i, ts := range table.Timestamps {
		slot := sums[bin(ts)-firstBin]
		for c, cell := range table.Cells[i] {
			if !cell.Valid {
				continue
			}
			slot[c].sum += cell.Value
			slot[c].count++
		}
	}

	out.Timestamps = make([]time.Time, 0, n)
	out.Cells = make([][]domain.Cell, 0, n)
	for i := 0; i < n; i++ {
		row := make([]domain.Cell, width)
		for c, acc := range sums[i] {
			if acc.count > 0 {
				row[c] = domain.Present(acc.sum / float64(acc.count))
			}
		}
		out.Timestamps = append(out.Timestamps, origin.Add(time.Duration(firstBin+int64(i))*res))
		out.Cells = append(out.Cells, row)
	}
	return out, nil
}

func checkTimeIndex(table domain.WideTable) error {
	if len(table.Timestamps) != len(table.Cells) {
		return errors.NewResamplingError("time index has %d entries for %d rows",
			len(table.Timestamps), len(table.Cells))
	}
	for i, ts := range table.Timestamps {
		if ts.IsZero() {
			return errors.NewResamplingError("row %d has no timestamp", i)
		}
		if i > 0 && !ts.After(table.Timestamps[i-1]) {
			return errors.NewResamplingError("time index is not strictly increasing at row %d", i)
		}
		if len(table.Cells[i]) != len(table.Columns) {
			return errors.NewResamplingError("row %d has %d cells for %d columns",
				i, len(table.Cells[i]), len(table.Columns))
		}
	}
	return nil
}
