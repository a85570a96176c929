package engine

import "sort"

// FilterState tracks the set of selected tag ids constraining the
// task list. The empty set means no tag filter.
type FilterState struct {
	selected map[string]struct{}
}

// NewFilterState returns an empty filter.
func NewFilterState() *FilterState {
	return &FilterState{selected: make(map[string]struct{})}
}

// Toggle adds the tag id if absent, removes it if present.
// Returns whether the id is selected afterwards.
func (f *FilterState) Toggle(tagID string) bool {
	if _, ok := f.selected[tagID]; ok {
		delete(f.selected, tagID)
		return false
	}
	f.selected[tagID] = struct{}{}
	return true
}

// Clear empties the selection unconditionally.
func (f *FilterState) Clear() {
	f.selected = make(map[string]struct{})
}

// Has reports whether the tag id is selected.
func (f *FilterState) Has(tagID string) bool {
	_, ok := f.selected[tagID]
	return ok
}

// Len returns the number of selected tags.
func (f *FilterState) Len() int {
	return len(f.selected)
}

// Selected returns the selected ids in a stable order.
func (f *FilterState) Selected() []string {
	ids := make([]string, 0, len(f.selected))
	for id := range f.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
