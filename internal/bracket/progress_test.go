package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	done := Match{Status: MatchCompleted}
	open := Match{Status: MatchPending}

	testCases := []struct {
		name     string
		matches  []Match
		expected Progress
	}{
		{"no matches", nil, Progress{}},
		{"nothing played", []Match{open, open}, Progress{TotalMatches: 2}},
		{"one of three", []Match{done, open, open}, Progress{3, 1, 33.3}},
		{"two of three", []Match{done, done, open}, Progress{3, 2, 66.7}},
		{"all played", []Match{done, done}, Progress{2, 2, 100}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeProgress(tc.matches))
		})
	}
}
