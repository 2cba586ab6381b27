package graph

import "shipperizer/internal/domain"

// Snapshot returns a deep copy of the live state without selection markers
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Entities:      s.Entities(),
		Relationships: s.Relationships(),
	}
}

// Restore replaces the entire live state with snap. Selection markers carried
// by snap are re-applied when they still name existing entities.
func (s *Store) Restore(snap domain.Snapshot) {
	snap = snap.Clone()

	s.Clear()
	for i := range snap.Entities {
		e := snap.Entities[i]
		s.entities[e.ID] = &e
		s.order = append(s.order, e.ID)
	}
	for _, r := range snap.Relationships {
		s.edges[r.ID()] = r
		s.edgeOrder = append(s.edgeOrder, r.ID())
	}

	if s.HasEntity(snap.Selection.First) {
		s.selection.First = snap.Selection.First
		if snap.Selection.Second != snap.Selection.First && s.HasEntity(snap.Selection.Second) {
			s.selection.Second = snap.Selection.Second
		}
	}
}
