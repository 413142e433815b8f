package queuekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain name", input: "BadWolf", expected: "badwolf"},
		{name: "spaces removed", input: "Bad Wolf", expected: "badwolf"},
		{name: "diacritics stripped", input: "José Válero", expected: "josevalero"},
		{name: "punctuation removed", input: "x_Wolf-99!", expected: "xwolf99"},
		{name: "already normalized", input: "player12", expected: "player12"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeCollision(t *testing.T) {
	// Decorated variants of the same name must collide on one key.
	assert.Equal(t, Normalize("Wolf"), Normalize("Wölf"))
	assert.Equal(t, Normalize("Wolf"), Normalize(".w o.l-f."))
}
