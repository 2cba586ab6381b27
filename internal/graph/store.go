// Package graph holds the authoritative entity and relationship collections.
//
// Store applies every edit as one batch: inputs are validated first and the
// collections are only touched once the whole batch is known to succeed, so
// an observer never sees a half-applied edit. Store is not safe for concurrent
// use; the owning session serializes access.
package graph

import (
	"fmt"
	"slices"

	"shipperizer/internal/domain"
)

// Store owns the live entities, relationships and selection
type Store struct {
	entities  map[string]*domain.Entity
	order     []string
	edges     map[string]domain.Relationship
	edgeOrder []string
	selection domain.Selection
}

// New creates an empty store
func New() *Store {
	return &Store{
		entities: make(map[string]*domain.Entity),
		edges:    make(map[string]domain.Relationship),
	}
}

// AddEntity adds a new entity. Existing ids must go through UpsertEntity.
func (s *Store) AddEntity(id, image string, pos domain.Position) error {
	if id == "" {
		return fmt.Errorf("entity id required")
	}
	if _, ok := s.entities[id]; ok {
		return &domain.DuplicateEntityError{ID: id}
	}
	s.entities[id] = &domain.Entity{ID: id, Image: image, Position: pos}
	s.order = append(s.order, id)
	return nil
}

// UpsertEntity adds the entity at pos, or replaces the image of an existing
// one without moving it. It reports whether a new entity was created.
func (s *Store) UpsertEntity(id, image string, pos domain.Position) (bool, error) {
	if existing, ok := s.entities[id]; ok {
		existing.Image = image
		return false, nil
	}
	if err := s.AddEntity(id, image, pos); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveEntity removes the entity and every relationship touching it
func (s *Store) RemoveEntity(id string) error {
	if _, ok := s.entities[id]; !ok {
		return domain.EntityNotFound(id)
	}

	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(edgeID string) bool {
		if domain.Touches(s.edges[edgeID], id) {
			delete(s.edges, edgeID)
			return true
		}
		return false
	})

	delete(s.entities, id)
	s.order = slices.DeleteFunc(s.order, func(other string) bool { return other == id })

	if s.selection.First == id || s.selection.Second == id {
		s.selection = domain.Selection{}
	}
	return nil
}

// MoveEntity sets the position of an existing entity
func (s *Store) MoveEntity(id string, pos domain.Position) error {
	e, ok := s.entities[id]
	if !ok {
		return domain.EntityNotFound(id)
	}
	e.Position = pos
	return nil
}

// MoveEntities sets several positions at once. Every id is checked before any
// position changes.
func (s *Store) MoveEntities(positions map[string]domain.Position) error {
	for id := range positions {
		if _, ok := s.entities[id]; !ok {
			return domain.EntityNotFound(id)
		}
	}
	for id, pos := range positions {
		s.entities[id].Position = pos
	}
	return nil
}

// Entity returns a copy of the entity with the given id
func (s *Store) Entity(id string) (domain.Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return domain.Entity{}, false
	}
	return *e, true
}

// HasEntity reports whether id exists
func (s *Store) HasEntity(id string) bool {
	_, ok := s.entities[id]
	return ok
}

// Entities returns copies of all entities in insertion order
func (s *Store) Entities() []domain.Entity {
	out := make([]domain.Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entities[id])
	}
	return out
}

// Relationships returns all relationships in insertion order
func (s *Store) Relationships() []domain.Relationship {
	out := make([]domain.Relationship, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, s.edges[id])
	}
	return out
}

// Relationship looks up a relationship by id
func (s *Store) Relationship(id string) (domain.Relationship, bool) {
	r, ok := s.edges[id]
	return r, ok
}

// DirectedEdge implements domain.EdgeView
func (s *Store) DirectedEdge(source, target string) (domain.Directed, bool) {
	d, ok := s.edges[domain.DirectedID(source, target)].(domain.Directed)
	return d, ok
}

// MergedEdge implements domain.EdgeView
func (s *Store) MergedEdge(a, b string) (domain.Merged, bool) {
	m, ok := s.edges[domain.MergedID(a, b)].(domain.Merged)
	return m, ok
}

// ApplyDelta removes and adds relationships as one batch
func (s *Store) ApplyDelta(delta domain.Delta) error {
	removing := make(map[string]struct{}, len(delta.Remove))
	for _, id := range delta.Remove {
		if _, ok := s.edges[id]; !ok {
			return domain.RelationshipNotFound(id)
		}
		removing[id] = struct{}{}
	}

	adding := make(map[string]struct{}, len(delta.Add))
	for _, r := range delta.Add {
		if err := s.checkRelationship(r); err != nil {
			return err
		}
		id := r.ID()
		_, exists := s.edges[id]
		_, removed := removing[id]
		_, twice := adding[id]
		if (exists && !removed) || twice {
			return fmt.Errorf("relationship %s already exists", id)
		}
		adding[id] = struct{}{}
	}

	if len(removing) > 0 {
		s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(id string) bool {
			_, ok := removing[id]
			return ok
		})
		for id := range removing {
			delete(s.edges, id)
		}
	}
	for _, r := range delta.Add {
		s.edges[r.ID()] = r
		s.edgeOrder = append(s.edgeOrder, r.ID())
	}
	return nil
}

// RemoveRelationship removes a single relationship by id
func (s *Store) RemoveRelationship(id string) error {
	return s.ApplyDelta(domain.Delta{Remove: []string{id}})
}

func (s *Store) checkRelationship(r domain.Relationship) error {
	kind := domain.KindOf(r)
	if !kind.Valid() {
		return fmt.Errorf("relationship %s has unknown kind %q", r.ID(), kind)
	}
	a, b := r.Endpoints()
	if a == b {
		return fmt.Errorf("relationship %s connects %q to itself", r.ID(), a)
	}
	if !s.HasEntity(a) {
		return domain.EntityNotFound(a)
	}
	if !s.HasEntity(b) {
		return domain.EntityNotFound(b)
	}
	return nil
}

// Clear removes every entity and relationship and drops the selection
func (s *Store) Clear() {
	s.entities = make(map[string]*domain.Entity)
	s.order = nil
	s.edges = make(map[string]domain.Relationship)
	s.edgeOrder = nil
	s.selection = domain.Selection{}
}

// Len returns the entity and relationship counts
func (s *Store) Len() (entities, relationships int) {
	return len(s.order), len(s.edgeOrder)
}
