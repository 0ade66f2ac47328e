package dataprocessing

import (
	"strings"
	"time"

	"aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

// CheckValidationConfig reports configuration problems that would make every
// table of a device unreadable.
func CheckValidationConfig(cfg domain.ValidationConfig) (*TimestampFormat, error) {
	if strings.TrimSpace(cfg.TimestampColumn) == "" {
		return nil, errors.NewValidationError("timestamp column is not configured")
	}
	format, err := CompileTimestampFormat(cfg.TimestampFormat)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(cfg.ValueColumns))
	for _, col := range cfg.ValueColumns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, errors.NewValidationError("value column with empty name")
		}
		if _, dup := seen[col.Name]; dup {
			return nil, errors.NewValidationError("value column %q configured twice", col.Name)
		}
		seen[col.Name] = struct{}{}
	}
	return format, nil
}

// Canonicalize converts one device's raw table into long-format records.
//
// Rows whose timestamp does not parse are dropped whole. Value cells that are
// not finite numbers are skipped and not counted. Configured columns missing
// from the header are ignored, but a missing timestamp column is an error.
func Canonicalize(raw domain.RawTable, cfg domain.ValidationConfig) (domain.CanonicalLongTable, domain.ValidationSummary, error) {
	var out domain.CanonicalLongTable

	format, err := CheckValidationConfig(cfg)
	if err != nil {
		return out, domain.ValidationSummary{}, err
	}
	if len(raw) == 0 {
		return out, domain.ValidationSummary{}, errors.NewValidationError("raw table has no header row")
	}

	header := raw.Header()
	if !hasNamedCell(header) {
		return out, domain.ValidationSummary{}, errors.NewValidationError("raw table header is empty")
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, exists := positions[name]; !exists {
			positions[name] = i
		}
	}

	tsPos, ok := positions[cfg.TimestampColumn]
	if !ok {
		return out, domain.ValidationSummary{}, errors.NewValidationError(
			"timestamp column %q not found in header", cfg.TimestampColumn).
			WithContext("header", header)
	}

	type extract struct {
		pos   int
		label string
		scale float64
	}
	var extracts []extract
	for _, col := range cfg.ValueColumns {
		pos, present := positions[col.Name]
		if !present {
			continue
		}
		extracts = append(extracts, extract{pos: pos, label: col.OutputLabel(), scale: col.Multiplier()})
	}

	rows := raw.DataRows()
	for i, row := range rows {
		if len(row) != len(header) {
			return domain.CanonicalLongTable{}, domain.ValidationSummary{}, errors.NewValidationError(
				"row %d has %d cells, header has %d", i+1, len(row), len(header)).
				WithContext("row", i+1)
		}
	}

	summary := domain.NewValidationSummary(cfg.Labels())
	summary.Rows = len(rows)
	out.Records = make([]domain.CanonicalRecord, 0, len(rows)*len(extracts))

	for _, row := range rows {
		ts, err := format.Parse(row[tsPos])
		if err != nil {
			continue
		}
		ts = ts.Truncate(time.Second)
		summary.Counts[domain.TimestampKey]++

		for _, ex := range extracts {
			v, ok := ParseNumeric(row[ex.pos])
			if !ok {
				continue
			}
			summary.Counts[ex.label]++
			out.Records = append(out.Records, domain.CanonicalRecord{
				Timestamp: ts,
				Measurand: ex.label,
				Value:     v * ex.scale,
			})
		}
	}

	return out, summary, nil
}

func hasNamedCell(header []string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			return true
		}
	}
	return false
}
