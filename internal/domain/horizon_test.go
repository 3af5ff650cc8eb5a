package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHorizon(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 42, 7, 0, time.Local)
	h := NewHorizon(now)

	assert.True(t, h.Start.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)))
	assert.True(t, h.End.Equal(time.Date(2026, 3, 23, 0, 0, 0, 0, time.Local)))
}

func TestHorizonContains(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	h := NewHorizon(now)

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{name: "today", date: now, expected: true},
		{name: "today at midnight", date: h.Start, expected: true},
		{name: "last day of window", date: h.Start.AddDate(0, 0, 13), expected: true},
		{name: "last day late evening", date: h.Start.AddDate(0, 0, 13).Add(23 * time.Hour), expected: true},
		{name: "one day past the window", date: h.Start.AddDate(0, 0, 14), expected: false},
		{name: "yesterday", date: h.Start.AddDate(0, 0, -1), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.Contains(tt.date))
		})
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	assert.False(t, got.Before(before))
}
