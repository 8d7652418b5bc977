package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateScore(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("no engagement scores zero", func(t *testing.T) {
		assert.Zero(t, CalculateScore(now, now, 0, 0, 0))
	})

	t.Run("helpful outweighs views", func(t *testing.T) {
		helpful := CalculateScore(now, now, 10, 0, 0)
		views := CalculateScore(now, now, 0, 0, 10)
		assert.Greater(t, helpful, views)
	})

	t.Run("older posts decay", func(t *testing.T) {
		fresh := CalculateScore(now, now, 5, 20, 40)
		old := CalculateScore(now.Add(-48*time.Hour), now, 5, 20, 40)
		assert.Greater(t, fresh, old)
	})

	t.Run("future creation time is clamped", func(t *testing.T) {
		assert.Equal(t,
			CalculateScore(now, now, 3, 3, 3),
			CalculateScore(now.Add(time.Hour), now, 3, 3, 3))
	})
}
