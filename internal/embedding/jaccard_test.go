package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "python sql", "python sql", 1.0},
		{"disjoint", "python sql", "rust kafka", 0.0},
		{"partial overlap", "python sql", "python java", 1.0 / 3.0},
		{"case insensitive", "Python SQL", "python sql", 1.0},
		{"duplicate tokens collapse", "go go go", "go", 1.0},
		{"empty left", "", "python", 0.0},
		{"both empty", "", "   ", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Jaccard(tt.a, tt.b), 1e-12)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	a, b := "go docker kubernetes", "docker terraform"
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}
