package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholderColor(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"Python for data science", "3776AB"},
		{"Marketing fundamentals", "10B981"},
		{"Creative writing", "8B5CF6"},
		{"Learn C++ templates", "00599C"},
		{"Go concurrency patterns", "00ADD8"},
		{"Good algorithms for cooking", defaultColor},
		{"", defaultColor},
	}
	for _, tc := range tests {
		t.Run(tc.prompt, func(t *testing.T) {
			assert.Equal(t, tc.want, placeholderColor(tc.prompt))
		})
	}
}

func TestPlaceholderURL(t *testing.T) {
	got := PlaceholderURL("An intro to Python programming")

	assert.Equal(t, "https://placehold.co/600x400/3776AB/FFFFFF?text=intro+Python+programming&font=montserrat", got)
	assert.Equal(t, got, PlaceholderURL("An intro to Python programming"), "must be deterministic")
}

func TestPlaceholderText_EmptyPrompt(t *testing.T) {
	assert.Equal(t, "Course", placeholderText("a b c"))
}
