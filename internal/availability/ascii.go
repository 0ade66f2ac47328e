package availability

import (
	"fmt"
	"strings"

	"aqdaily/pkg/contracts/domain"
)

// Default layout of the plain-text summary.
const (
	DefaultColumnWidth = 13
	DefaultScreenWidth = 100
)

const noDataPrefix = "No data: "

// RenderASCII lays the tables out as fixed-width text lines. Grids wider
// than screenWidth are split into sub-tables that each repeat the device ID
// column.
func RenderASCII(tables []domain.AvailabilityTable, columnWidth, screenWidth int) []string {
	if columnWidth <= 0 {
		columnWidth = DefaultColumnWidth
	}
	if screenWidth <= 0 {
		screenWidth = DefaultScreenWidth
	}
	perTable := screenWidth/columnWidth - 1
	if perTable < 1 {
		perTable = 1
	}

	out := []string{
		strings.Repeat("+", 80),
		"Summary",
		strings.Repeat("-", 80),
	}

	for _, t := range tables {
		out = append(out, t.Manufacturer, strings.Repeat("~", len(t.Manufacturer)))
		if len(t.Failed) > 0 {
			out = append(out, noDataPrefix+strings.Join(t.Failed, ", "))
		}
		if len(t.Rows) == 0 {
			continue
		}

		header := t.Rows[0]
		for lo := 1; lo < len(header); lo += perTable {
			hi := lo + perTable
			if hi > len(header) {
				hi = len(header)
			}

			headerLine := asciiRow(header, lo, hi, columnWidth)
			rule := strings.Repeat("-", len(headerLine))
			out = append(out, rule, headerLine, rule)
			for _, row := range t.Rows[1:] {
				out = append(out, asciiRow(row, lo, hi, columnWidth))
			}
			out = append(out, rule)
		}
	}

	return append(out, strings.Repeat("+", 80))
}

func asciiRow(row []string, lo, hi, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "||%*s||", width, at(row, 0))
	for i := lo; i < hi; i++ {
		fmt.Fprintf(&b, "%*s|", width, at(row, i))
	}
	return b.String()
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
