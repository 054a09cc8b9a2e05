package assets

import (
	"sync"

	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/util"
)

// Selection tracks the assets chosen for a bulk action together with the
// bulk-quantity slider. Selection order is insertion order, so shrinking the
// slider always drops the most recently added assets first. All mutations
// are silent no-ops when they would exceed the cap.
type Selection struct {
	mu       sync.Mutex
	assets   []persist.Asset // filtered display order, level descending
	selected []persist.AssetID
	slider   int
	loading  bool
}

// NewSelection returns an empty selection over the given filtered asset list
func NewSelection(filtered []persist.Asset) *Selection {
	return &Selection{assets: filtered}
}

// SetAssets replaces the underlying filtered list. Selected ids that are no
// longer eligible are dropped and the slider follows the selection size.
func (s *Selection) SetAssets(filtered []persist.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = filtered
	eligible := make(map[persist.AssetID]struct{})
	for _, a := range Eligible(filtered) {
		eligible[a.ID] = struct{}{}
	}
	s.selected = util.Filter(s.selected, func(id persist.AssetID) bool {
		_, ok := eligible[id]
		return ok
	}, true)
	s.slider = len(s.selected)
}

// SetLoading toggles the loading flag. While loading, Toggle is a no-op.
func (s *Selection) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Toggle adds the id if absent and the cap allows it, removes it if present.
// The slider follows the new selection size.
func (s *Selection) Toggle(id persist.AssetID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return
	}

	if util.Contains(s.selected, id) {
		s.selected = util.Filter(s.selected, func(e persist.AssetID) bool { return e != id }, true)
		s.slider = len(s.selected)
		return
	}

	if len(s.selected) >= s.cap() {
		return
	}
	if !s.eligibleID(id) {
		return
	}
	s.selected = append(s.selected, id)
	s.slider = len(s.selected)
}

// SelectAll fills the selection with the first selectable eligible assets in
// display order
func (s *Selection) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cap := s.cap()
	s.selected = s.selected[:0]
	for _, a := range Eligible(s.assets) {
		if len(s.selected) >= cap {
			break
		}
		s.selected = append(s.selected, a.ID)
	}
	s.slider = len(s.selected)
}

// DeselectAll empties the selection and resets the slider
func (s *Selection) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.selected[:0]
	s.slider = 0
}

// SetSliderValue grows or shrinks the selection to n assets. Growing appends
// the next eligible unselected assets in display order; shrinking truncates
// to the first n entries in insertion order.
func (s *Selection) SetSliderValue(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if cap := s.cap(); n > cap {
		n = cap
	}

	if n <= len(s.selected) {
		s.selected = s.selected[:n]
		s.slider = n
		return
	}

	for _, a := range Eligible(s.assets) {
		if len(s.selected) >= n {
			break
		}
		if util.Contains(s.selected, a.ID) {
			continue
		}
		s.selected = append(s.selected, a.ID)
	}
	s.slider = len(s.selected)
}

// Selected returns the selected assets in insertion order
func (s *Selection) Selected() []persist.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[persist.AssetID]persist.Asset, len(s.assets))
	for _, a := range s.assets {
		byID[a.ID] = a
	}
	result := make([]persist.Asset, 0, len(s.selected))
	for _, id := range s.selected {
		if a, ok := byID[id]; ok {
			result = append(result, a)
		}
	}
	return result
}

// IDs returns the selected asset ids in insertion order
func (s *Selection) IDs() []persist.AssetID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]persist.AssetID(nil), s.selected...)
}

// Len returns the current selection size
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// SliderValue returns the current slider position
func (s *Selection) SliderValue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slider
}

// Cap returns min(MaxAssetCap, eligible count)
func (s *Selection) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cap()
}

func (s *Selection) cap() int {
	return SelectableCount(s.assets)
}

func (s *Selection) eligibleID(id persist.AssetID) bool {
	for _, a := range Eligible(s.assets) {
		if a.ID == id {
			return true
		}
	}
	return false
}
