package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqdaily/internal/errors"
)

func TestTimestampFormat_Parse(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "minutes",
			format: "%Y-%m-%d %H:%M",
			value:  "2019-03-02 15:30",
			want:   time.Date(2019, 3, 2, 15, 30, 0, 0, time.UTC),
		},
		{
			name:    "trailing seconds rejected",
			format:  "%Y-%m-%d %H:%M",
			value:   "2019-03-02 15:32:50",
			wantErr: true,
		},
		{
			name:    "impossible date rejected",
			format:  "%Y-%m-%d %H:%M",
			value:   "2018-02-31 18:00",
			wantErr: true,
		},
		{
			name:   "leap day",
			format: "%Y-%m-%d",
			value:  "2020-02-29",
			want:   time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			format:  "%Y-%m-%d %H:%M",
			value:   "",
			wantErr: true,
		},
		{
			name:    "blank",
			format:  "%Y-%m-%d %H:%M",
			value:   " ",
			wantErr: true,
		},
		{
			name:   "iso with fraction and offset",
			format: "%Y-%m-%dT%H:%M:%S.%f%z",
			value:  "2019-03-02T15:30:12.250+0100",
			want:   time.Date(2019, 3, 2, 14, 30, 12, 250000000, time.UTC),
		},
		{
			name:   "utc designator",
			format: "%Y-%m-%dT%H:%M:%S%z",
			value:  "2019-03-02T15:30:12Z",
			want:   time.Date(2019, 3, 2, 15, 30, 12, 0, time.UTC),
		},
		{
			name:   "day month names",
			format: "%d %b %Y %I:%M %p",
			value:  "2 Mar 2019 03:15 PM",
			want:   time.Date(2019, 3, 2, 15, 15, 0, 0, time.UTC),
		},
		{
			name:   "twelve am is midnight",
			format: "%I:%M %p %d/%m/%Y",
			value:  "12:05 AM 02/03/2019",
			want:   time.Date(2019, 3, 2, 0, 5, 0, 0, time.UTC),
		},
		{
			name:   "compact digits backtrack",
			format: "%Y%m%d%H%M",
			value:  "201903021530",
			want:   time.Date(2019, 3, 2, 15, 30, 0, 0, time.UTC),
		},
		{
			name:   "single digit fields",
			format: "%d/%m/%Y %H:%M",
			value:  "2/3/2019 5:07",
			want:   time.Date(2019, 3, 2, 5, 7, 0, 0, time.UTC),
		},
		{
			name:   "whitespace run",
			format: "%Y-%m-%d %H:%M",
			value:  "2019-03-02   15:30",
			want:   time.Date(2019, 3, 2, 15, 30, 0, 0, time.UTC),
		},
		{
			name:   "expansion T",
			format: "%Y-%m-%d %T",
			value:  "2019-03-02 15:30:45",
			want:   time.Date(2019, 3, 2, 15, 30, 45, 0, time.UTC),
		},
		{
			name:   "day of year",
			format: "%Y %j",
			value:  "2019 061",
			want:   time.Date(2019, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "hour out of range",
			format:  "%H:%M",
			value:   "24:00",
			wantErr: true,
		},
		{
			name:    "year zero rejected",
			format:  "%Y-%m-%d %H:%M",
			value:   "0000-03-02 15:30",
			wantErr: true,
		},
		{
			name:   "year one",
			format: "%Y-%m-%d",
			value:  "0001-01-01",
			want:   time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "april 31 rejected",
			format:  "%d/%m/%Y",
			value:   "31/4/2019",
			wantErr: true,
		},
		{
			name:    "feb 29 outside leap year rejected",
			format:  "%Y-%m-%d",
			value:   "2019-02-29",
			wantErr: true,
		},
		{
			name:    "compact impossible date rejected",
			format:  "%Y%m%d",
			value:   "20180231",
			wantErr: true,
		},
		{
			name:    "day of year past year end rejected",
			format:  "%Y %j",
			value:   "2019 366",
			wantErr: true,
		},
		{
			name:   "day 366 of leap year",
			format: "%Y %j",
			value:  "2020 366",
			want:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "second 60 rejected",
			format:  "%Y-%m-%d %H:%M:%S",
			value:   "2019-03-02 15:30:60",
			wantErr: true,
		},
		{
			name:   "short fraction",
			format: "%H:%M:%S.%f",
			value:  "10:00:01.05",
			want:   time.Date(1900, 1, 1, 10, 0, 1, 50000000, time.UTC),
		},
		{
			name:   "offset with colon",
			format: "%Y-%m-%dT%H:%M%z",
			value:  "2019-03-02T15:30-05:30",
			want:   time.Date(2019, 3, 2, 21, 0, 0, 0, time.UTC),
		},
		{
			name:   "month name any case",
			format: "%d %B %Y",
			value:  "2 MARCH 2019",
			want:   time.Date(2019, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "leading garbage",
			format:  "%Y-%m-%d",
			value:   "x2019-03-02",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileTimestampFormat(tt.format)
			require.NoError(t, err)

			got, err := f.Parse(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCompileTimestampFormat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{name: "empty", format: ""},
		{name: "unsupported directive", format: "%Y-%m-%d %Q"},
		{name: "bare percent", format: "%Y-%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTimestampFormat(tt.format)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestCompileTimestampFormat_LiteralPercent(t *testing.T) {
	f, err := CompileTimestampFormat("%H%%%M")
	require.NoError(t, err)

	got, err := f.Parse("10%30")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
}
