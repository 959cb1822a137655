package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousMonth(t *testing.T) {
	tests := map[string]struct {
		in     string
		want   string
		wantOK bool
	}{
		"mid year":        {in: "2025-07", want: "2025-06", wantOK: true},
		"year rollover":   {in: "2025-01", want: "2024-12", wantOK: true},
		"not a month":     {in: "garbage", wantOK: false},
		"empty":           {in: "", wantOK: false},
		"date not month":  {in: "2025-07-01", wantOK: false},
		"month overflow":  {in: "2025-13", wantOK: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := PreviousMonth(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2025-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthBounds("not-a-month")
	assert.Error(t, err)
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "2025-08", FormatMonth(time.Date(2025, 8, 28, 13, 37, 0, 0, time.UTC)))
}
