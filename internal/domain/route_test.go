package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRoute(id, name string, sequence int) DeliveryRoute {
	return DeliveryRoute{
		ID:       id,
		Name:     name,
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		Sequence: sequence,
	}
}

func manifestLine(notes string) OrderLine {
	line := createTestLine()
	line.ManifestCode = "ROM-0042"
	line.ManifestNotes = notes
	return line
}

func TestSynchronizeRoutes(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)

	t.Run("retained route keeps its position ahead of newcomers", func(t *testing.T) {
		registry := []DeliveryRoute{
			createTestRoute("id-a", "A", 1),
			createTestRoute("id-b", "B", 2),
		}
		lines := []OrderLine{manifestLine("B"), manifestLine("C")}

		result := SynchronizeRoutes(registry, lines, now)

		require.Len(t, result, 2)
		assert.Equal(t, "B", result[0].Name)
		assert.Equal(t, "id-b", result[0].ID, "retained route keeps its identity")
		assert.Equal(t, 1, result[0].Sequence)
		assert.Equal(t, "C", result[1].Name)
		assert.Equal(t, 2, result[1].Sequence)
		assert.True(t, result[1].Date.Equal(Midnight(now)), "new routes are dated today")
		assert.NotEmpty(t, result[1].ID)
	})

	t.Run("new routes append in first-seen order", func(t *testing.T) {
		lines := []OrderLine{
			manifestLine("ROTA PICOS"),
			manifestLine("ROTA FLORIANO"),
			manifestLine("ROTA PICOS"),
			manifestLine("ROTA CAMPO MAIOR"),
		}

		result := SynchronizeRoutes(nil, lines, now)

		require.Len(t, result, 3)
		assert.Equal(t, []string{"ROTA PICOS", "ROTA FLORIANO", "ROTA CAMPO MAIOR"},
			[]string{result[0].Name, result[1].Name, result[2].Name})
		assert.Equal(t, []int{1, 2, 3}, []int{result[0].Sequence, result[1].Sequence, result[2].Sequence})
	})

	t.Run("idempotent for an unchanged name set", func(t *testing.T) {
		lines := []OrderLine{manifestLine("ROTA PICOS"), manifestLine("ROTA FLORIANO")}
		first := SynchronizeRoutes(nil, lines, now)
		second := SynchronizeRoutes(first, lines, now.Add(48*time.Hour))

		assert.Equal(t, first, second)
	})

	t.Run("empty import clears the registry", func(t *testing.T) {
		registry := []DeliveryRoute{createTestRoute("id-a", "A", 1)}
		result := SynchronizeRoutes(registry, nil, now)
		assert.Empty(t, result)
	})

	t.Run("placeholder manifests discover no routes", func(t *testing.T) {
		lines := []OrderLine{manifestLine("&nbsp;"), manifestLine("  ")}
		assert.Empty(t, SynchronizeRoutes(nil, lines, now))
	})

	t.Run("registry order is taken from sequence not slice order", func(t *testing.T) {
		registry := []DeliveryRoute{
			createTestRoute("id-b", "B", 2),
			createTestRoute("id-a", "A", 1),
		}
		lines := []OrderLine{manifestLine("A"), manifestLine("B")}

		result := SynchronizeRoutes(registry, lines, now)

		require.Len(t, result, 2)
		assert.Equal(t, "A", result[0].Name)
		assert.Equal(t, "B", result[1].Name)
	})
}

func TestResequenceRoutes(t *testing.T) {
	registry := []DeliveryRoute{
		createTestRoute("id-a", "A", 1),
		createTestRoute("id-b", "B", 2),
		createTestRoute("id-c", "C", 3),
	}

	t.Run("applies the new order densely", func(t *testing.T) {
		result, err := ResequenceRoutes(registry, []string{"id-c", "id-a", "id-b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"},
			[]string{result[0].Name, result[1].Name, result[2].Name})
		assert.Equal(t, []int{1, 2, 3}, []int{result[0].Sequence, result[1].Sequence, result[2].Sequence})
	})

	t.Run("rejects a short list", func(t *testing.T) {
		_, err := ResequenceRoutes(registry, []string{"id-a"})
		assert.ErrorIs(t, err, ErrRouteListMismatch)
	})

	t.Run("rejects unknown ids", func(t *testing.T) {
		_, err := ResequenceRoutes(registry, []string{"id-a", "id-b", "id-x"})
		assert.ErrorIs(t, err, ErrUnknownRoute)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := ResequenceRoutes(registry, []string{"id-a", "id-a", "id-b"})
		assert.ErrorIs(t, err, ErrDuplicateRouteID)
	})
}
