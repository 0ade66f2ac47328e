package domain

import (
	"strconv"
	"time"
)

// Cell is a wide-table value. The zero Cell is explicit-missing.
type Cell struct {
	Value float64
	Valid bool
}

// Present returns a valid cell holding v.
func Present(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// Missing returns the explicit-missing cell.
func Missing() Cell {
	return Cell{}
}

// String renders the cell for CSV output; missing renders as "".
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// WideTable is a timestamp x composite-key matrix.
// Timestamps are strictly increasing and Columns sorted.
type WideTable struct {
	Timestamps []time.Time
	Columns    []string
	Cells      [][]Cell
}

// Len returns the number of rows.
func (w WideTable) Len() int {
	return len(w.Timestamps)
}

// Column returns the index of a column, or -1.
func (w WideTable) Column(name string) int {
	for i, c := range w.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Rows renders the table as string rows: a header of "timestamp" plus the
// columns, then one row per timestamp.
func (w WideTable) Rows() [][]string {
	rows := make([][]string, 0, len(w.Timestamps)+1)
	header := make([]string, 0, len(w.Columns)+1)
	header = append(header, TimestampKey)
	header = append(header, w.Columns...)
	rows = append(rows, header)

	for i, ts := range w.Timestamps {
		row := make([]string, 0, len(w.Columns)+1)
		row = append(row, ts.Format(TimestampLayout))
		for _, c := range w.Cells[i] {
			row = append(row, c.String())
		}
		rows = append(rows, row)
	}
	return rows
}

// ResampledTable is a WideTable re-gridded onto fixed windows.
type ResampledTable struct {
	WideTable
	Resolution time.Duration
	Origin     time.Time
}
