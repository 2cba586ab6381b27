package domain

import "fmt"

// Selection marks up to two entities that scope the next relationship edit
type Selection struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
}

// Empty reports whether nothing is selected
func (s Selection) Empty() bool {
	return s.First == "" && s.Second == ""
}

// Complete reports whether two distinct entities are selected
func (s Selection) Complete() bool {
	return s.First != "" && s.Second != "" && s.First != s.Second
}

// Snapshot is a full, self-contained graph state
type Snapshot struct {
	Entities      []Entity
	Relationships []Relationship
	// Selection is empty for snapshots taken by the store. Imported or
	// hand-built snapshots may carry one, which restore re-applies.
	Selection Selection
}

// NewSnapshot creates an empty snapshot with initialized collections
func NewSnapshot() Snapshot {
	return Snapshot{
		Entities:      make([]Entity, 0),
		Relationships: make([]Relationship, 0),
	}
}

// Clone returns a copy that shares no backing arrays with s
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Entities:      make([]Entity, len(s.Entities)),
		Relationships: make([]Relationship, len(s.Relationships)),
		Selection:     s.Selection,
	}
	copy(out.Entities, s.Entities)
	copy(out.Relationships, s.Relationships)
	return out
}

// Validate checks that s satisfies the graph invariants: unique entity ids,
// known kinds, edges between distinct existing entities, and at most one
// representation per unordered pair.
func (s Snapshot) Validate() error {
	ids := make(map[string]struct{}, len(s.Entities))
	for _, e := range s.Entities {
		if e.ID == "" {
			return fmt.Errorf("entity with empty id")
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("duplicate entity %q", e.ID)
		}
		ids[e.ID] = struct{}{}
	}

	type pairState struct {
		merged   bool
		directed map[string]Kind // keyed by source
	}
	pairs := make(map[Pair]*pairState)

	for _, r := range s.Relationships {
		a, b := r.Endpoints()
		kind := KindOf(r)
		if !kind.Valid() {
			return fmt.Errorf("relationship %s has unknown kind %q", r.ID(), kind)
		}
		if a == b {
			return fmt.Errorf("relationship %s connects %q to itself", r.ID(), a)
		}
		for _, id := range []string{a, b} {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("relationship %s references unknown entity %q", r.ID(), id)
			}
		}

		p := NewPair(a, b)
		ps := pairs[p]
		if ps == nil {
			ps = &pairState{directed: make(map[string]Kind, 2)}
			pairs[p] = ps
		}

		switch r := r.(type) {
		case Merged:
			if r.A > r.B {
				return fmt.Errorf("merged relationship %s endpoints not in canonical order", r.ID())
			}
			if ps.merged || len(ps.directed) > 0 {
				return fmt.Errorf("pair {%s, %s} has more than one relationship representation", p.Low, p.High)
			}
			ps.merged = true
		case Directed:
			if ps.merged {
				return fmt.Errorf("pair {%s, %s} has both merged and directed relationships", p.Low, p.High)
			}
			if _, dup := ps.directed[r.Source]; dup {
				return fmt.Errorf("duplicate directed relationship %s", r.ID())
			}
			if reverse, ok := ps.directed[r.Target]; ok && reverse == r.Kind {
				return fmt.Errorf("opposing %s relationships between %q and %q must be merged", r.Kind, r.Source, r.Target)
			}
			ps.directed[r.Source] = r.Kind
		}
	}

	for _, id := range []string{s.Selection.First, s.Selection.Second} {
		if id == "" {
			continue
		}
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("selection references unknown entity %q", id)
		}
	}
	if s.Selection.First != "" && s.Selection.First == s.Selection.Second {
		return fmt.Errorf("selection lists %q twice", s.Selection.First)
	}
	return nil
}
