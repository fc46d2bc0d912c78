package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        map[string]int
		b        map[string]int
		expected float64
	}{
		{
			name:     "both empty",
			a:        map[string]int{},
			b:        map[string]int{},
			expected: 0.0,
		},
		{
			name:     "one empty",
			a:        map[string]int{"music": 2},
			b:        map[string]int{},
			expected: 0.0,
		},
		{
			name:     "identical maps",
			a:        map[string]int{"music": 3, "travel": 1},
			b:        map[string]int{"music": 3, "travel": 1},
			expected: 1.0,
		},
		{
			name:     "disjoint keys",
			a:        map[string]int{"music": 3},
			b:        map[string]int{"travel": 2},
			expected: 0.0,
		},
		{
			name:     "worked example",
			a:        map[string]int{"music": 3, "sports": 2},
			b:        map[string]int{"music": 1, "travel": 2},
			expected: 1.0 / 7.0, // min(3,1) over max(3,1)+2+2
		},
		{
			name:     "same keys different weights",
			a:        map[string]int{"music": 1},
			b:        map[string]int{"music": 3},
			expected: 1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeightedJaccard(tt.a, tt.b), 1e-12)
			// Symmetric by construction.
			assert.InDelta(t, WeightedJaccard(tt.a, tt.b), WeightedJaccard(tt.b, tt.a), 1e-12)
		})
	}
}

func TestTextJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{
			name:     "both empty",
			a:        nil,
			b:        nil,
			expected: 0.0,
		},
		{
			name:     "one empty",
			a:        []string{"hik"},
			b:        nil,
			expected: 0.0,
		},
		{
			name:     "identical",
			a:        []string{"hik", "mountain"},
			b:        []string{"hik", "mountain"},
			expected: 1.0,
		},
		{
			name:     "partial overlap",
			a:        []string{"hik", "mountain", "trail"},
			b:        []string{"trail", "run", "mountain"},
			expected: 0.5, // intersection=2, union=4
		},
		{
			name:     "duplicates deduplicated before comparison",
			a:        []string{"hik", "hik", "hik"},
			b:        []string{"hik"},
			expected: 1.0,
		},
		{
			name:     "disjoint",
			a:        []string{"hik"},
			b:        []string{"swim"},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TextJaccard(tt.a, tt.b), 1e-12)
			assert.InDelta(t, TextJaccard(tt.a, tt.b), TextJaccard(tt.b, tt.a), 1e-12)
		})
	}
}
