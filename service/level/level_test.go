package level

import (
	"testing"

	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostFor(t *testing.T) {
	a := assert.New(t)

	t.Run("cost grows with level", func(t *testing.T) {
		prevGold := int64(0)
		for lvl := 1; lvl < 40; lvl++ {
			cost, err := CostFor(persist.TypeCaptain, lvl)
			require.NoError(t, err)
			a.Greater(cost.Gold, int64(0))
			a.Greater(cost.Duration.Nanoseconds(), int64(0))
			if (lvl-1)%10 != 0 { // cost resets at band boundaries
				a.Greater(cost.Gold, prevGold)
			}
			prevGold = cost.Gold
		}
	})

	t.Run("rejects the level cap", func(t *testing.T) {
		max, err := MaxLevel(persist.TypeCaptain)
		require.NoError(t, err)

		_, err = CostFor(persist.TypeCaptain, max)
		var maxErr ErrMaxLevel
		a.ErrorAs(err, &maxErr)
		a.Equal(max, maxErr.Level)

		_, err = CostFor(persist.TypeCaptain, max-1)
		a.NoError(err)
	})

	t.Run("rejects unlevelable types", func(t *testing.T) {
		_, err := CostFor(persist.TypeGenesisShip, 1)
		a.ErrorAs(err, &ErrNotLevelable{})

		_, err = MaxLevel(persist.TypeGenesisShip)
		a.Error(err)
	})

	t.Run("rejects invalid levels", func(t *testing.T) {
		_, err := CostFor(persist.TypeShip, 0)
		a.Error(err)
	})
}

func TestTotalCost(t *testing.T) {
	a := assert.New(t)

	t.Run("sums consecutive steps", func(t *testing.T) {
		single1, err := CostFor(persist.TypeCrew, 5)
		require.NoError(t, err)
		single2, err := CostFor(persist.TypeCrew, 6)
		require.NoError(t, err)

		total, err := TotalCost(persist.TypeCrew, 5, 2)
		require.NoError(t, err)
		a.Equal(single1.Gold+single2.Gold, total.Gold)
		a.Equal(single1.Duration+single2.Duration, total.Duration)
	})

	t.Run("fails when the run crosses the cap", func(t *testing.T) {
		max, err := MaxLevel(persist.TypeCrew)
		require.NoError(t, err)

		_, err = TotalCost(persist.TypeCrew, max-1, 2)
		a.ErrorAs(err, &ErrMaxLevel{})
	})

	t.Run("rejects a non-positive count", func(t *testing.T) {
		_, err := TotalCost(persist.TypeCrew, 1, 0)
		a.Error(err)
	})
}
