package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFilterOnline_StatusBoundary tests that only ONLINE drivers pass
// the index boundary filter
func TestFilterOnline_StatusBoundary(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		statuses []interface{}
		expected []string
	}{
		{
			name:     "All online",
			ids:      []string{"d1", "d2"},
			statuses: []interface{}{"ONLINE", "ONLINE"},
			expected: []string{"d1", "d2"},
		},
		{
			name:     "Offline driver filtered out",
			ids:      []string{"d1", "d2", "d3"},
			statuses: []interface{}{"ONLINE", "OFFLINE", "ONLINE"},
			expected: []string{"d1", "d3"},
		},
		{
			name:     "Driver with no recorded status treated as offline",
			ids:      []string{"d1", "d2"},
			statuses: []interface{}{nil, "ONLINE"},
			expected: []string{"d2"},
		},
		{
			name:     "No candidates",
			ids:      nil,
			statuses: nil,
			expected: []string{},
		},
		{
			name:     "All offline",
			ids:      []string{"d1", "d2"},
			statuses: []interface{}{"OFFLINE", "OFFLINE"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			online := FilterOnline(tt.ids, tt.statuses)
			assert.Equal(t, tt.expected, online)
		})
	}
}
