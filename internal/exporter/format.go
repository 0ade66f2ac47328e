package exporter

import (
	"strconv"

	"aqdaily/pkg/contracts/domain"
)

// LongHeader is the header of every clean long file.
var LongHeader = []string{domain.TimestampKey, "measurand", "value"}

// formatFloat renders the shortest representation that round-trips.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
