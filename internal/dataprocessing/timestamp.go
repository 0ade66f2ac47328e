package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"

	"aqdaily/internal/errors"
)

// TimestampFormat is a compiled strptime-style pattern. Parsing is strict:
// the whole input must match and the resulting date must exist.
type TimestampFormat struct {
	pattern string
	layout  string
	// layouts render a parsed time back for the validity check; a %z
	// offset may have been written with or without a colon.
	layouts []string
}

// supportedDirectives are the strptime directives accepted in a pattern.
const supportedDirectives = "YymdHIMSfpbhBaAjzZTFDR%"

// CompileTimestampFormat compiles a strptime pattern. Unknown directives are
// a validation error.
func CompileTimestampFormat(pattern string) (*TimestampFormat, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, errors.NewValidationError("timestamp format is empty")
	}

	var layout, colonLayout strings.Builder
	hasOffset := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '%':
			if i+1 >= len(pattern) {
				return nil, errors.NewValidationError("timestamp format %q ends with a bare %%", pattern)
			}
			i++
			if !strings.ContainsRune(supportedDirectives, rune(pattern[i])) {
				return nil, errors.NewValidationError("timestamp format %q uses unsupported directive %%%c", pattern, pattern[i])
			}
			directive := "%" + string(pattern[i])
			layout.WriteString(directive)
			if pattern[i] == 'z' {
				hasOffset = true
				directive = "%:z"
			}
			colonLayout.WriteString(directive)
		case isSpace(c):
			// A whitespace run matches one or more whitespace characters.
			for i+1 < len(pattern) && isSpace(pattern[i+1]) {
				i++
			}
			layout.WriteString("%n")
			colonLayout.WriteString("%n")
		default:
			layout.WriteByte(c)
			colonLayout.WriteByte(c)
		}
	}

	f := &TimestampFormat{pattern: pattern, layout: layout.String()}
	f.layouts = []string{f.layout}
	if hasOffset {
		f.layouts = append(f.layouts, colonLayout.String())
	}
	return f, nil
}

// String returns the source pattern.
func (f *TimestampFormat) String() string {
	return f.pattern
}

// Parse parses value strictly. Times without a zone are UTC. The returned
// error is descriptive only; callers treat any error as "row rejected".
func (f *TimestampFormat) Parse(value string) (time.Time, error) {
	t, err := timefmt.Parse(value, f.layout)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() < 1 {
		return time.Time{}, fmt.Errorf("%q: year out of range", value)
	}
	// Out-of-range dates such as Feb 31 are rolled over by time.Date, which
	// changes the month, year or minute. Formatting the result back exposes it.
	for _, layout := range f.layouts {
		if sameNumbers(value, timefmt.Format(t, layout)) {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date for format %q", value, f.pattern)
}

// sameNumbers compares the digit runs of a and b, ignoring leading and
// trailing zeros so that padding, fraction width and zero offsets agree.
func sameNumbers(a, b string) bool {
	x, y := digitRuns(a), digitRuns(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func digitRuns(s string) []string {
	var runs []string
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if run := strings.Trim(s[i:j], "0"); run != "" {
			runs = append(runs, run)
		}
		i = j
	}
	return runs
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
