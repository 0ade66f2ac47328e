package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericPattern accepts plain decimals and exponent notation only.
// Words such as inf, nan or true never match.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumeric classifies a cell. It reports ok only for well-formed finite
// reals; surrounding whitespace is ignored.
func ParseNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" || !numericPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
