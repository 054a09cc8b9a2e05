// Package level holds the cost and duration tables for leveling game
// entities and the helpers the level-up flow uses to price an upgrade before
// submitting it.
package level

import (
	"fmt"
	"time"

	"github.com/reavers-game/go-reavers/service/persist"
)

// Cost is the price of a single level-up step
type Cost struct {
	Gold     int64
	Duration time.Duration
}

// ErrMaxLevel is returned when an entity is already at its level cap
type ErrMaxLevel struct {
	Type  persist.AssetType
	Level int
}

// ErrNotLevelable is returned for entity types that cannot be leveled
type ErrNotLevelable struct {
	Type persist.AssetType
}

func (e ErrMaxLevel) Error() string {
	return fmt.Sprintf("%s is already at max level %d", e.Type, e.Level)
}

func (e ErrNotLevelable) Error() string {
	return fmt.Sprintf("%s entities cannot be leveled", e.Type)
}

var maxLevels = map[persist.AssetType]int{
	persist.TypeCaptain: 100,
	persist.TypeShip:    125,
	persist.TypeCrew:    100,
	persist.TypeItem:    100,
}

// Per-band base gold cost for one level-up step. Bands cover ten levels each
// and the step cost grows within the band.
var bandBaseGold = map[persist.AssetType]int64{
	persist.TypeCaptain: 120,
	persist.TypeShip:    150,
	persist.TypeCrew:    90,
	persist.TypeItem:    80,
}

var bandBaseDuration = map[persist.AssetType]time.Duration{
	persist.TypeCaptain: 4 * time.Minute,
	persist.TypeShip:    6 * time.Minute,
	persist.TypeCrew:    3 * time.Minute,
	persist.TypeItem:    2 * time.Minute,
}

// MaxLevel returns the level cap of the entity type
func MaxLevel(t persist.AssetType) (int, error) {
	max, ok := maxLevels[t]
	if !ok {
		return 0, ErrNotLevelable{Type: t}
	}
	return max, nil
}

// CostFor returns the cost of leveling an entity from fromLevel to
// fromLevel+1
func CostFor(t persist.AssetType, fromLevel int) (Cost, error) {
	max, err := MaxLevel(t)
	if err != nil {
		return Cost{}, err
	}
	if fromLevel < 1 {
		return Cost{}, fmt.Errorf("invalid level %d", fromLevel)
	}
	if fromLevel >= max {
		return Cost{}, ErrMaxLevel{Type: t, Level: max}
	}

	band := (fromLevel - 1) / 10
	multiplier := int64(band + 1)
	withinBand := int64((fromLevel-1)%10 + 1)

	return Cost{
		Gold:     bandBaseGold[t] * multiplier * withinBand,
		Duration: bandBaseDuration[t] * time.Duration(multiplier),
	}, nil
}

// TotalCost returns the combined cost of count consecutive level-up steps
// starting at fromLevel
func TotalCost(t persist.AssetType, fromLevel, count int) (Cost, error) {
	if count < 1 {
		return Cost{}, fmt.Errorf("invalid level-up count %d", count)
	}

	var total Cost
	for i := 0; i < count; i++ {
		step, err := CostFor(t, fromLevel+i)
		if err != nil {
			return Cost{}, err
		}
		total.Gold += step.Gold
		total.Duration += step.Duration
	}
	return total, nil
}
