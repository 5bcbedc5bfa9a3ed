package workflow

// Selection is an insertion-ordered set of identifiers. The zero value is an
// empty selection ready to use.
type Selection struct {
	order []string
	index map[string]struct{}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

// Add reports whether id was newly added.
func (s *Selection) Add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove reports whether id was present.
func (s *Selection) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Toggle flips membership and reports whether id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

// Replace swaps the whole selection in one step.
func (s *Selection) Replace(ids []string) {
	s.Clear()
	for _, id := range ids {
		s.Add(id)
	}
}

func (s *Selection) Clear() {
	s.order = nil
	s.index = nil
}

// IDs returns a copy in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
