package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

func at(h, m, s int) time.Time {
	return time.Date(2019, 3, 2, h, m, s, 0, time.UTC)
}

func TestAssemble_ExpectedColumnsAreMaterialized(t *testing.T) {
	tables := []domain.CanonicalLongTable{{
		DeviceID: "dev1",
		Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 34, 0), Measurand: "co2", Value: 2.3},
			{Timestamp: at(10, 34, 0), Measurand: "no2", Value: 6.2},
		},
	}}

	wide, err := Assemble(tables, []string{"co2", "no2", "o3"}, []string{"dev1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"co2_dev1", "no2_dev1", "o3_dev1"}, wide.Columns)
	require.Equal(t, 1, wide.Len())
	assert.Equal(t, at(10, 34, 0), wide.Timestamps[0])
	assert.Equal(t, []domain.Cell{domain.Present(2.3), domain.Present(6.2), domain.Missing()}, wide.Cells[0])
}

func TestAssemble_AveragesCollisions(t *testing.T) {
	tables := []domain.CanonicalLongTable{
		{DeviceID: "dev1", Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 0, 0), Measurand: "no2", Value: 1},
			{Timestamp: at(10, 0, 0), Measurand: "no2", Value: 3},
			{Timestamp: at(10, 1, 0), Measurand: "no2", Value: 5},
		}},
		{DeviceID: "dev2", Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 1, 0), Measurand: "no2", Value: 7},
		}},
	}

	wide, err := Assemble(tables, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"no2_dev1", "no2_dev2"}, wide.Columns)
	assert.Equal(t, []time.Time{at(10, 0, 0), at(10, 1, 0)}, wide.Timestamps)
	assert.Equal(t, [][]domain.Cell{
		{domain.Present(2), domain.Missing()},
		{domain.Present(5), domain.Present(7)},
	}, wide.Cells)
}

func TestAssemble_SortsRowsAndStripsWhitespace(t *testing.T) {
	tables := []domain.CanonicalLongTable{{
		DeviceID: "dev 1",
		Records: []domain.CanonicalRecord{
			{Timestamp: at(11, 0, 0), Measurand: "PM 2.5", Value: 4},
			{Timestamp: at(9, 0, 0), Measurand: "PM 2.5", Value: 2},
		},
	}}

	wide, err := Assemble(tables, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"PM2.5_dev1"}, wide.Columns)
	assert.Equal(t, []time.Time{at(9, 0, 0), at(11, 0, 0)}, wide.Timestamps)
}

func TestAssemble_ExpectedMeasurandsRestrictData(t *testing.T) {
	tables := []domain.CanonicalLongTable{{
		DeviceID: "dev1",
		Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 0, 0), Measurand: "no2", Value: 1},
			{Timestamp: at(10, 5, 0), Measurand: "temp", Value: 20},
		},
	}}

	wide, err := Assemble(tables, []string{"no2"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"no2_dev1"}, wide.Columns)
	assert.Equal(t, []time.Time{at(10, 0, 0)}, wide.Timestamps)
}

func TestAssemble_ExpectedDevicesUseObservedMeasurands(t *testing.T) {
	tables := []domain.CanonicalLongTable{{
		DeviceID: "dev1",
		Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 0, 0), Measurand: "no2", Value: 1},
		},
	}}

	wide, err := Assemble(tables, nil, []string{"dev1", "dev2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"no2_dev1", "no2_dev2"}, wide.Columns)
	assert.Equal(t, 1, wide.Len())
}

func TestAssemble_NoData(t *testing.T) {
	tests := []struct {
		name        string
		measurands  []string
		devices     []string
		wantColumns []string
	}{
		{name: "nothing expected", wantColumns: []string{}},
		{name: "only measurands", measurands: []string{"a", "b"}, wantColumns: []string{}},
		{name: "only devices", devices: []string{"d1"}, wantColumns: []string{}},
		{name: "both", measurands: []string{"a", "b"}, devices: []string{"d1", "d2"},
			wantColumns: []string{"a_d1", "a_d2", "b_d1", "b_d2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wide, err := Assemble(nil, tt.measurands, tt.devices)
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, wide.Columns)
			assert.Equal(t, 0, wide.Len())
		})
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	tables := []domain.CanonicalLongTable{
		{DeviceID: "b", Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 2, 0), Measurand: "x", Value: 1},
			{Timestamp: at(10, 1, 0), Measurand: "y", Value: 2},
		}},
		{DeviceID: "a", Records: []domain.CanonicalRecord{
			{Timestamp: at(10, 1, 0), Measurand: "x", Value: 3},
		}},
	}

	first, err := Assemble(tables, []string{"x", "y", "z"}, []string{"a", "b"})
	require.NoError(t, err)
	second, err := Assemble(tables, []string{"x", "y", "z"}, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, first.Rows(), second.Rows())
	assert.Equal(t, []string{"x_a", "x_b", "y_a", "y_b", "z_a", "z_b"}, first.Columns)
}

func TestAssemble_ConversionErrors(t *testing.T) {
	tests := []struct {
		name   string
		tables []domain.CanonicalLongTable
	}{
		{
			name:   "missing device tag",
			tables: []domain.CanonicalLongTable{{Records: []domain.CanonicalRecord{{Timestamp: at(1, 0, 0), Measurand: "a", Value: 1}}}},
		},
		{
			name:   "missing measurand",
			tables: []domain.CanonicalLongTable{{DeviceID: "d", Records: []domain.CanonicalRecord{{Timestamp: at(1, 0, 0), Value: 1}}}},
		},
		{
			name:   "missing timestamp",
			tables: []domain.CanonicalLongTable{{DeviceID: "d", Records: []domain.CanonicalRecord{{Measurand: "a", Value: 1}}}},
		},
		{
			name:   "non finite value",
			tables: []domain.CanonicalLongTable{{DeviceID: "d", Records: []domain.CanonicalRecord{{Timestamp: at(1, 0, 0), Measurand: "a", Value: math.NaN()}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.tables, nil, nil)
			require.Error(t, err)
			assert.True(t, errors.IsConversion(err), "got %v", err)
		})
	}
}

func TestCanonicalizeThenAssemble(t *testing.T) {
	cfg := minuteConfig(domain.ValueColumn{Name: "no2"})
	devices := map[string]domain.RawTable{
		"dev1": {{"timestamp", "no2"}, {"2019-03-02 10:00", "1"}, {"bad", "2"}},
		"dev2": {{"timestamp", "no2"}, {"2019-03-02 10:00", "x"}},
	}

	var tables []domain.CanonicalLongTable
	for _, id := range []string{"dev1", "dev2"} {
		long, _, err := Canonicalize(devices[id], cfg)
		require.NoError(t, err)
		long.DeviceID = id
		tables = append(tables, long)
	}

	wide, err := Assemble(tables, []string{"no2"}, []string{"dev1", "dev2"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"timestamp", "no2_dev1", "no2_dev2"},
		{"2019-03-02 10:00:00", "1", ""},
	}, wide.Rows())
}
