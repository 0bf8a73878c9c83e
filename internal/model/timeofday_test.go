package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"00:00", 0},
		{"09:05", NewTimeOfDay(9, 5)},
		{"17:00:00", NewTimeOfDay(17, 0)},
		{"24:00", MinutesPerDay},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeOfDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "9", "25:00", "24:30", "12:61", "ab:cd"} {
		_, err := ParseTimeOfDay(in)
		assert.Error(t, err, in)
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	t.Parallel()

	start := NewTimeOfDay(12, 0)
	c := SearchCriteria{StartTime: &start}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start_time":"12:00"`)

	var back SearchCriteria
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.StartTime)
	assert.Equal(t, start, *back.StartTime)
	assert.Nil(t, back.EndTime)
}
