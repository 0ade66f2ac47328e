package operations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindows(t *testing.T) {
	now := time.Date(2024, 3, 2, 7, 45, 0, 0, time.UTC)

	w := YesterdayWindow(now)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "2024-03-01", w.Day())

	tests := []struct {
		name    string
		day     string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", day: "2024-02-29", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "year end", day: "2023-12-31", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "bad format", day: "01/03/2024", wantErr: true},
		{name: "empty", day: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseDayWindow(tt.day)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Start)
			assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))
		})
	}
}
