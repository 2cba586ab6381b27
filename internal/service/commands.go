package service

import (
	"fmt"

	"shipperizer/internal/domain"
	"shipperizer/internal/graph"
	"shipperizer/internal/layout"
)

// Mutation is a planned edit. Apply is nil when the edit would not change
// the graph, in which case no checkpoint is taken.
type Mutation struct {
	Apply func(*graph.Store) error
	// ClearSelection drops the selection once the command completes, even
	// when Apply is nil
	ClearSelection bool
}

// Noop reports whether the mutation leaves the graph unchanged
func (m Mutation) Noop() bool {
	return m.Apply == nil
}

// Command is a checkpointed edit. Plan validates the command against the
// current graph without modifying it.
type Command interface {
	Name() string
	Plan(s *graph.Store) (Mutation, error)
}

// RequestRelationship sets the relationship from the first to the second
// selected entity
type RequestRelationship struct {
	Kind domain.Kind
}

func (RequestRelationship) Name() string { return "request_relationship" }

func (c RequestRelationship) Plan(s *graph.Store) (Mutation, error) {
	if !c.Kind.Valid() {
		return Mutation{}, fmt.Errorf("unknown relationship kind %q", c.Kind)
	}
	sel := s.Selection()
	if !sel.Complete() {
		return Mutation{}, &domain.InvalidSelectionError{Reason: "two distinct entities must be selected"}
	}

	m := Mutation{ClearSelection: true}
	delta := domain.Resolve(s, sel.First, sel.Second, c.Kind)
	if !delta.Noop() {
		m.Apply = func(s *graph.Store) error { return s.ApplyDelta(delta) }
	}
	return m, nil
}

// DeleteEntity removes an entity with all its relationships
type DeleteEntity struct {
	ID string
}

func (DeleteEntity) Name() string { return "delete_entity" }

func (c DeleteEntity) Plan(s *graph.Store) (Mutation, error) {
	if !s.HasEntity(c.ID) {
		return Mutation{}, domain.EntityNotFound(c.ID)
	}
	return Mutation{
		Apply: func(s *graph.Store) error { return s.RemoveEntity(c.ID) },
	}, nil
}

// DeleteRelationship removes one relationship by id
type DeleteRelationship struct {
	ID string
}

func (DeleteRelationship) Name() string { return "delete_relationship" }

func (c DeleteRelationship) Plan(s *graph.Store) (Mutation, error) {
	if _, ok := s.Relationship(c.ID); !ok {
		return Mutation{}, domain.RelationshipNotFound(c.ID)
	}
	return Mutation{
		Apply: func(s *graph.Store) error { return s.RemoveRelationship(c.ID) },
	}, nil
}

// RequestLayout arranges all entities on a circle inside the viewport
type RequestLayout struct {
	Viewport layout.Viewport
}

func (RequestLayout) Name() string { return "request_layout" }

func (c RequestLayout) Plan(s *graph.Store) (Mutation, error) {
	if err := c.Viewport.Validate(); err != nil {
		return Mutation{}, err
	}
	moves := circularMoves(s, c.Viewport)
	if len(moves) == 0 {
		return Mutation{}, nil
	}
	return Mutation{
		Apply: func(s *graph.Store) error { return s.MoveEntities(moves) },
	}, nil
}

// ImportGraph replaces the whole graph with an imported snapshot
type ImportGraph struct {
	Snapshot domain.Snapshot
}

func (ImportGraph) Name() string { return "import_graph" }

func (c ImportGraph) Plan(s *graph.Store) (Mutation, error) {
	if err := c.Snapshot.Validate(); err != nil {
		return Mutation{}, &domain.MalformedImportError{Reason: "graph is inconsistent", Cause: err}
	}
	snap := c.Snapshot.Clone()
	return Mutation{
		Apply: func(s *graph.Store) error {
			s.Restore(snap)
			return nil
		},
		ClearSelection: true,
	}, nil
}

// ClearAll removes every entity and relationship
type ClearAll struct{}

func (ClearAll) Name() string { return "clear_all" }

func (ClearAll) Plan(s *graph.Store) (Mutation, error) {
	if entities, relationships := s.Len(); entities == 0 && relationships == 0 {
		return Mutation{ClearSelection: true}, nil
	}
	return Mutation{
		Apply: func(s *graph.Store) error {
			s.Clear()
			return nil
		},
		ClearSelection: true,
	}, nil
}

// Upload is one uploaded headshot. The entity id is the file name without
// its extension.
type Upload struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image" validate:"required"`
}

// UploadEntities adds new entities at Start and replaces the image of
// entities that already exist. When Layout is set the whole graph is
// re-laid out as part of the same edit.
type UploadEntities struct {
	Uploads []Upload
	Start   domain.Position
	Layout  *layout.Viewport
}

func (UploadEntities) Name() string { return "upload_entities" }

func (c UploadEntities) Plan(s *graph.Store) (Mutation, error) {
	if len(c.Uploads) == 0 {
		return Mutation{}, nil
	}
	entities := make([]domain.Entity, 0, len(c.Uploads))
	for _, u := range c.Uploads {
		if u.Name == "" {
			return Mutation{}, fmt.Errorf("upload without a name")
		}
		entities = append(entities, domain.Entity{ID: u.Name, Image: u.Image, Position: c.Start})
	}
	if c.Layout != nil {
		if err := c.Layout.Validate(); err != nil {
			return Mutation{}, err
		}
	}
	if !upsertChanges(s, entities) && c.Layout == nil {
		return Mutation{}, nil
	}

	vp := c.Layout
	return Mutation{
		Apply: func(s *graph.Store) error {
			if err := upsertAll(s, entities); err != nil {
				return err
			}
			if vp == nil {
				return nil
			}
			return s.MoveEntities(circularMoves(s, *vp))
		},
	}, nil
}

// MoveEntity drops an entity at a new position after a drag
type MoveEntity struct {
	ID       string
	Position domain.Position
}

func (MoveEntity) Name() string { return "move_entity" }

func (c MoveEntity) Plan(s *graph.Store) (Mutation, error) {
	e, ok := s.Entity(c.ID)
	if !ok {
		return Mutation{}, domain.EntityNotFound(c.ID)
	}
	if e.Position == c.Position {
		return Mutation{}, nil
	}
	return Mutation{
		Apply: func(s *graph.Store) error { return s.MoveEntity(c.ID, c.Position) },
	}, nil
}

// SyncRoster adds roster entities that are missing from the graph and
// refreshes the image of those already present. Nothing is removed.
type SyncRoster struct {
	Entities []domain.Entity
}

func (SyncRoster) Name() string { return "sync_roster" }

func (c SyncRoster) Plan(s *graph.Store) (Mutation, error) {
	for _, e := range c.Entities {
		if e.ID == "" {
			return Mutation{}, fmt.Errorf("roster entry without a name")
		}
	}
	if !upsertChanges(s, c.Entities) {
		return Mutation{}, nil
	}
	entities := append([]domain.Entity(nil), c.Entities...)
	return Mutation{
		Apply: func(s *graph.Store) error { return upsertAll(s, entities) },
	}, nil
}

// upsertChanges reports whether upserting entities would change the graph
func upsertChanges(s *graph.Store, entities []domain.Entity) bool {
	for _, e := range entities {
		existing, ok := s.Entity(e.ID)
		if !ok || existing.Image != e.Image {
			return true
		}
	}
	return false
}

func upsertAll(s *graph.Store, entities []domain.Entity) error {
	for _, e := range entities {
		if _, err := s.UpsertEntity(e.ID, e.Image, e.Position); err != nil {
			return err
		}
	}
	return nil
}

// circularMoves returns the positions that change under a circular layout
func circularMoves(s *graph.Store, vp layout.Viewport) map[string]domain.Position {
	entities := s.Entities()
	nodes := make([]layout.Node, 0, len(entities))
	current := make(map[string]domain.Position, len(entities))
	for _, e := range entities {
		nodes = append(nodes, layout.Node{ID: e.ID, Position: e.Position})
		current[e.ID] = e.Position
	}

	moves := make(map[string]domain.Position)
	for _, p := range layout.Circular(nodes, vp) {
		if current[p.ID] != p.Position {
			moves[p.ID] = p.Position
		}
	}
	return moves
}
