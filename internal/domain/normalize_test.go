package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips accents and uppercases", input: "Entrega Pelo Grupo Só Aço", expected: "ENTREGA PELO GRUPO SO ACO"},
		{name: "trims surrounding whitespace", input: "  Teresina \t", expected: "TERESINA"},
		{name: "cedilla and tilde", input: "São João", expected: "SAO JOAO"},
		{name: "already canonical", input: "TIMON", expected: "TIMON"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestManifestPlaceholder(t *testing.T) {
	assert.True(t, ManifestPlaceholder(""))
	assert.True(t, ManifestPlaceholder("   "))
	assert.True(t, ManifestPlaceholder("&nbsp;"))
	assert.False(t, ManifestPlaceholder("ROM-0042"))
}

func TestParseOrderDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{
			name:     "iso date",
			input:    "2026-09-03",
			expected: time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{
			name:     "iso datetime",
			input:    "2026-09-03T08:30:00",
			expected: time.Date(2026, 9, 3, 8, 30, 0, 0, time.Local),
			ok:       true,
		},
		{
			name:     "day month year",
			input:    "03/09/2026",
			expected: time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{
			name:     "single digit day and month",
			input:    "3/9/2026",
			expected: time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{name: "garbage", input: "amanhã", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseOrderDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.expected.Equal(parsed), "expected %s, got %s", tt.expected, parsed)
			}
		})
	}
}
