package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric_Accepts(t *testing.T) {
	tests := []struct {
		cell string
		want float64
	}{
		{"5.23", 5.23},
		{"2e2", 200},
		{"-1.5e5", -150000},
		{"83", 83},
		{"-232", -232},
		{"0", 0},
		{"0.0", 0},
		{"-0", 0},
		{"-0.0", 0},
		{"1e5", 100000},
		{" 12.5 ", 12.5},
		{"+4", 4},
		{".5", 0.5},
		{"5.", 5},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := ParseNumeric(tt.cell)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumeric_Rejects(t *testing.T) {
	cells := []string{
		"-1.5e5000", "20e888232",
		"Inf", "INF", "inf", "-inf", "+Inf", "INFINITY", "-Infinity", "infinity",
		"NaN", "nan", "NAN", "Nan", "-nan", "+NaN",
		"%%1", "1%", "None", "none",
		"True", "true", "False", "false", "TRUE",
		"23..8", "2str3", "  ", "",
		"0x1p-2", "1_000", "1,5", "e5", ".",
	}

	for _, cell := range cells {
		t.Run(cell, func(t *testing.T) {
			_, ok := ParseNumeric(cell)
			assert.False(t, ok)
		})
	}
}
