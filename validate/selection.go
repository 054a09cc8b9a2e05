package validate

import (
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/util"
)

// SelectionQuery carries the UI context a selection is validated against: the
// action's asset type, the active custody tab, the mint status filter and the
// bulk slider position.
type SelectionQuery struct {
	AssetType            persist.AssetType
	Location             persist.Location
	MintStatus           persist.MintStatus
	SliderValue          int
	SkipSliderValueCheck bool
}

// VerifySelection rejects a selection before any network call when it is not
// homogeneous: all assets must share one type, one location and one mint
// status, each matching the query, and the selection size must agree with the
// slider unless the check is skipped. Checks run in a fixed order and the
// first violation is returned.
func VerifySelection(selected []persist.Asset, q SelectionQuery) error {
	if len(selected) == 0 {
		return persist.ErrEmptySelection{}
	}

	types := util.Dedupe(util.Map(selected, func(a persist.Asset) persist.AssetType { return a.Type }))
	if len(types) > 1 {
		return persist.ErrMixedType{Types: types}
	}
	if types[0] != q.AssetType {
		return persist.ErrTypeMismatch{Want: q.AssetType, Got: types[0]}
	}

	locations := util.Dedupe(util.Map(selected, func(a persist.Asset) persist.Location { return a.Location }))
	if len(locations) > 1 {
		return persist.ErrMixedLocation{}
	}
	if locations[0] != q.Location {
		return persist.ErrLocationMismatch{Want: q.Location, Got: locations[0]}
	}

	minted := util.Dedupe(util.Map(selected, func(a persist.Asset) bool { return a.Minted }))
	if len(minted) > 1 {
		return persist.ErrMixedMintStatus{}
	}
	if !q.MintStatus.Matches(minted[0]) {
		return persist.ErrMintStatusMismatch{Want: q.MintStatus}
	}

	if !q.SkipSliderValueCheck && len(selected) != q.SliderValue {
		return persist.ErrCountMismatch{Selected: len(selected), Slider: q.SliderValue}
	}

	return nil
}
