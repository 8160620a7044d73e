package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-06 09:30:00", time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)},
		{"2025-01-06T09:30:00", time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)},
		{"2025-01-06 09:30", time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)},
		{" 2025-01-06 ", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
		{"2025-01-06 09:30:00.5+00:00", time.Date(2025, 1, 6, 9, 30, 0, 500000000, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), tt.in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
