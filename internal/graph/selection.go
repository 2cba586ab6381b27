package graph

import "shipperizer/internal/domain"

// Selection returns the current selection
func (s *Store) Selection() domain.Selection {
	return s.selection
}

// Select applies one tap on entity id to the selection:
// no first marks it first, tapping first clears, no second marks it second,
// tapping second swaps the two, anything else replaces second.
func (s *Store) Select(id string) (domain.Selection, error) {
	if !s.HasEntity(id) {
		return s.selection, domain.EntityNotFound(id)
	}

	sel := &s.selection
	switch {
	case sel.First == "":
		sel.First = id
	case id == sel.First:
		*sel = domain.Selection{}
	case sel.Second == "":
		sel.Second = id
	case id == sel.Second:
		sel.First, sel.Second = sel.Second, sel.First
	default:
		sel.Second = id
	}
	return s.selection, nil
}

// ClearSelection drops both selection markers
func (s *Store) ClearSelection() {
	s.selection = domain.Selection{}
}
