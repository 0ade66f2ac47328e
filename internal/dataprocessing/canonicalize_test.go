package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

func minuteConfig(cols ...domain.ValueColumn) domain.ValidationConfig {
	return domain.ValidationConfig{
		TimestampColumn: "timestamp",
		TimestampFormat: "%Y-%m-%d %H:%M",
		ValueColumns:    cols,
	}
}

func TestCanonicalize_SkipsNonNumericCells(t *testing.T) {
	raw := domain.RawTable{
		{"id", "foo", "timestamp", "bar"},
		{"5", "2", "2019-03-02 15:30", "23.9"},
		{"5", "x", "2019-03-02 15:31", "5.0"},
	}
	cfg := minuteConfig(domain.ValueColumn{Name: "foo"}, domain.ValueColumn{Name: "bar"})

	long, summary, err := Canonicalize(raw, cfg)
	require.NoError(t, err)

	assert.Equal(t, []domain.CanonicalRecord{
		{Timestamp: time.Date(2019, 3, 2, 15, 30, 0, 0, time.UTC), Measurand: "foo", Value: 2.0},
		{Timestamp: time.Date(2019, 3, 2, 15, 30, 0, 0, time.UTC), Measurand: "bar", Value: 23.9},
		{Timestamp: time.Date(2019, 3, 2, 15, 31, 0, 0, time.UTC), Measurand: "bar", Value: 5.0},
	}, long.Records)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, map[string]int{"timestamp": 2, "foo": 1, "bar": 2}, summary.Counts)
}

func TestCanonicalize_BadTimestampDropsWholeRow(t *testing.T) {
	raw := domain.RawTable{
		{"timestamp", "no2", "o3"},
		{"2019-03-02 15:32:50", "1", "2"},
		{"2018-02-31 18:00", "3", "4"},
		{"", "5", "6"},
		{" ", "7", "8"},
		{"2019-03-02 15:33", "9", "10"},
	}
	cfg := minuteConfig(domain.ValueColumn{Name: "no2"}, domain.ValueColumn{Name: "o3"})

	long, summary, err := Canonicalize(raw, cfg)
	require.NoError(t, err)

	require.Len(t, long.Records, 2)
	for _, r := range long.Records {
		assert.Equal(t, time.Date(2019, 3, 2, 15, 33, 0, 0, time.UTC), r.Timestamp)
	}
	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 1, summary.Counts["timestamp"])
	assert.Equal(t, 1, summary.Counts["no2"])
	assert.Equal(t, 1, summary.Counts["o3"])
}

func TestCanonicalize_ScaleAndLabel(t *testing.T) {
	raw := domain.RawTable{
		{"date", "pm25_mg", "temp"},
		{"2019-03-02 10:00", "0.012", "nan"},
		{"2019-03-02 10:01", "0.020", "Infinity"},
	}
	cfg := domain.ValidationConfig{
		TimestampColumn: "date",
		TimestampFormat: "%Y-%m-%d %H:%M",
		ValueColumns: []domain.ValueColumn{
			{Name: "pm25_mg", Label: "PM2.5", Scale: 1000},
			{Name: "temp", Label: "Temperature"},
		},
	}

	long, summary, err := Canonicalize(raw, cfg)
	require.NoError(t, err)

	require.Len(t, long.Records, 2)
	assert.Equal(t, "PM2.5", long.Records[0].Measurand)
	assert.InDelta(t, 12.0, long.Records[0].Value, 1e-9)
	assert.InDelta(t, 20.0, long.Records[1].Value, 1e-9)
	assert.Equal(t, map[string]int{"timestamp": 2, "PM2.5": 2, "Temperature": 0}, summary.Counts)
}

func TestCanonicalize_AbsentValueColumnIsSkipped(t *testing.T) {
	raw := domain.RawTable{
		{"timestamp", "no2"},
		{"2019-03-02 10:00", "4"},
	}
	cfg := minuteConfig(domain.ValueColumn{Name: "no2"}, domain.ValueColumn{Name: "co"})

	long, summary, err := Canonicalize(raw, cfg)
	require.NoError(t, err)

	assert.Len(t, long.Records, 1)
	assert.Equal(t, 0, summary.Counts["co"])
	assert.Contains(t, summary.Counts, "co")
}

func TestCanonicalize_SecondPrecision(t *testing.T) {
	raw := domain.RawTable{
		{"ts", "v"},
		{"2019-03-02 10:00:01.900", "4"},
	}
	cfg := domain.ValidationConfig{
		TimestampColumn: "ts",
		TimestampFormat: "%Y-%m-%d %H:%M:%S.%f",
		ValueColumns:    []domain.ValueColumn{{Name: "v"}},
	}

	long, _, err := Canonicalize(raw, cfg)
	require.NoError(t, err)
	require.Len(t, long.Records, 1)
	assert.Equal(t, time.Date(2019, 3, 2, 10, 0, 1, 0, time.UTC), long.Records[0].Timestamp)
}

func TestCanonicalize_HeaderOnly(t *testing.T) {
	raw := domain.RawTable{{"timestamp", "foo"}}

	long, summary, err := Canonicalize(raw, minuteConfig(domain.ValueColumn{Name: "foo"}))
	require.NoError(t, err)

	assert.Empty(t, long.Records)
	assert.Equal(t, 0, summary.Rows)
	assert.Equal(t, map[string]int{"timestamp": 0, "foo": 0}, summary.Counts)
}

func TestCanonicalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawTable
		cfg  domain.ValidationConfig
	}{
		{
			name: "nil table",
			raw:  nil,
			cfg:  minuteConfig(),
		},
		{
			name: "empty table",
			raw:  domain.RawTable{},
			cfg:  minuteConfig(),
		},
		{
			name: "blank header",
			raw:  domain.RawTable{{"", " "}},
			cfg:  minuteConfig(),
		},
		{
			name: "no timestamp column",
			raw:  domain.RawTable{{"date", "foo"}, {"2019-03-02 10:00", "1"}},
			cfg:  minuteConfig(domain.ValueColumn{Name: "foo"}),
		},
		{
			name: "ragged row",
			raw:  domain.RawTable{{"timestamp", "foo"}, {"2019-03-02 10:00", "1", "extra"}},
			cfg:  minuteConfig(domain.ValueColumn{Name: "foo"}),
		},
		{
			name: "missing format",
			raw:  domain.RawTable{{"timestamp"}},
			cfg:  domain.ValidationConfig{TimestampColumn: "timestamp"},
		},
		{
			name: "duplicate value column",
			raw:  domain.RawTable{{"timestamp", "foo"}},
			cfg:  minuteConfig(domain.ValueColumn{Name: "foo"}, domain.ValueColumn{Name: "foo"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Canonicalize(tt.raw, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err), "got %v", err)
		})
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	raw := domain.RawTable{
		{"timestamp", "a", "b"},
		{"2019-03-02 10:00", "1", "2"},
		{"2019-03-02 10:01", "3", "x"},
	}
	cfg := minuteConfig(domain.ValueColumn{Name: "b"}, domain.ValueColumn{Name: "a"})

	first, _, err := Canonicalize(raw, cfg)
	require.NoError(t, err)
	second, _, err := Canonicalize(raw, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "b", first.Records[0].Measurand)
	assert.Equal(t, "a", first.Records[1].Measurand)
}
