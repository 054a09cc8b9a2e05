package assets

import (
	"sort"

	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/util"
)

// FilterQuery is the set of active UI filters the catalog is narrowed by
type FilterQuery struct {
	Location   persist.Location
	Collection string
	MintStatus persist.MintStatus
	Type       persist.AssetType
	Rarity     persist.Rarity
}

// Filter narrows the catalog to the assets the UI displays for the query and
// sorts them by level, highest first. The mint status filter is bypassed for
// wallet assets, which are always treated as minted.
func Filter(catalog []persist.Asset, q FilterQuery) []persist.Asset {
	filtered := util.Filter(catalog, func(a persist.Asset) bool { return a.Location == q.Location }, false)

	if q.Collection != "" && q.Collection != persist.CollectionAll {
		filtered = util.Filter(filtered, func(a persist.Asset) bool { return a.Collection == q.Collection }, true)
	}

	if q.Location != persist.LocationInWallet {
		filtered = util.Filter(filtered, func(a persist.Asset) bool { return q.MintStatus.Matches(a.Minted) }, true)
	}

	filtered = util.Filter(filtered, func(a persist.Asset) bool { return a.Type == q.Type }, true)

	if q.Rarity != "" && q.Rarity != persist.RarityAll {
		filtered = util.Filter(filtered, func(a persist.Asset) bool { return a.Rarity == q.Rarity }, true)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Level > filtered[j].Level
	})

	return filtered
}

// Eligible returns the assets of a filtered list that business rules allow
// actions on
func Eligible(filtered []persist.Asset) []persist.Asset {
	return util.Filter(filtered, func(a persist.Asset) bool { return !a.ActionLimited }, false)
}

// SelectableCount returns how many of the filtered assets can be part of one
// bulk action
func SelectableCount(filtered []persist.Asset) int {
	eligible := len(Eligible(filtered))
	if eligible > persist.MaxAssetCap {
		return persist.MaxAssetCap
	}
	return eligible
}
