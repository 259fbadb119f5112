package pricesync

// Selection is an insertion ordered set of record ids.
type Selection struct {
	order []string
	set   map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{set: map[string]struct{}{}}
}

// Toggle removes id when present and adds it otherwise. It reports whether id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// ToggleAll clears the selection when every visible id is already selected,
// otherwise it replaces the selection with exactly the visible ids.
func (s *Selection) ToggleAll(visible []string) {
	if len(visible) > 0 && s.containsAll(visible) {
		s.Clear()
		return
	}
	s.Replace(visible)
}

// Replace sets the selection to ids, dropping duplicates.
func (s *Selection) Replace(ids []string) {
	s.Clear()
	for _, id := range ids {
		if _, ok := s.set[id]; ok {
			continue
		}
		s.set[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Remove drops id. It reports whether id was selected.
func (s *Selection) Remove(id string) bool {
	if _, ok := s.set[id]; !ok {
		return false
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Retain keeps only the ids for which keep returns true and reports how many were dropped.
func (s *Selection) Retain(keep func(id string) bool) int {
	kept := s.order[:0]
	dropped := 0
	for _, id := range s.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.set, id)
		dropped++
	}
	s.order = kept
	return dropped
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.order = nil
	s.set = map[string]struct{}{}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.order) }

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string{}, s.order...)
}

func (s *Selection) containsAll(ids []string) bool {
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
