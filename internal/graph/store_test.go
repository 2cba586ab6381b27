package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipperizer/internal/domain"
)

func newTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	s := New()
	for i, id := range ids {
		require.NoError(t, s.AddEntity(id, id+".png", domain.Position{X: float64(i * 10)}))
	}
	return s
}

func request(t *testing.T, s *Store, source, target string, kind domain.Kind) {
	t.Helper()
	require.NoError(t, s.ApplyDelta(domain.Resolve(s, source, target, kind)))
}

func TestStoreAddEntity(t *testing.T) {
	t.Run("adds in insertion order", func(t *testing.T) {
		s := newTestStore(t, "C", "A", "B")
		ids := make([]string, 0, 3)
		for _, e := range s.Entities() {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []string{"C", "A", "B"}, ids)
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		s := newTestStore(t, "A")
		err := s.AddEntity("A", "", domain.Position{})
		assert.True(t, domain.IsDuplicate(err))
	})

	t.Run("empty id fails", func(t *testing.T) {
		assert.Error(t, New().AddEntity("", "", domain.Position{}))
	})
}

func TestStoreUpsertEntity(t *testing.T) {
	s := newTestStore(t, "A")

	created, err := s.UpsertEntity("A", "new.png", domain.Position{X: 500})
	require.NoError(t, err)
	assert.False(t, created)

	e, _ := s.Entity("A")
	assert.Equal(t, "new.png", e.Image)
	assert.Equal(t, 0.0, e.Position.X, "existing entity keeps its position")

	created, err = s.UpsertEntity("B", "b.png", domain.Position{X: 5})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestStoreRemoveEntityCascades(t *testing.T) {
	s := newTestStore(t, "A", "B", "C", "D")
	request(t, s, "A", "B", domain.KindLove)
	request(t, s, "B", "A", domain.KindLove) // merged A-B
	request(t, s, "C", "B", domain.KindHate)
	request(t, s, "A", "C", domain.KindFriend)
	request(t, s, "C", "D", domain.KindLove)

	require.NoError(t, s.RemoveEntity("B"))

	assert.False(t, s.HasEntity("B"))
	rels := s.Relationships()
	require.Len(t, rels, 2)
	for _, r := range rels {
		assert.False(t, domain.Touches(r, "B"))
	}
	_, ok := s.DirectedEdge("A", "C")
	assert.True(t, ok)
	_, ok = s.DirectedEdge("C", "D")
	assert.True(t, ok)
}

func TestStoreRemoveEntityNotFound(t *testing.T) {
	s := newTestStore(t, "A")
	assert.True(t, domain.IsNotFound(s.RemoveEntity("Z")))
}

func TestStoreRemoveEntityClearsSelection(t *testing.T) {
	s := newTestStore(t, "A", "B", "C")
	_, _ = s.Select("A")
	_, _ = s.Select("B")

	require.NoError(t, s.RemoveEntity("B"))
	assert.True(t, s.Selection().Empty())

	_, _ = s.Select("A")
	require.NoError(t, s.RemoveEntity("C"))
	assert.Equal(t, "A", s.Selection().First, "unrelated delete keeps selection")
}

func TestStoreApplyDeltaIsAtomic(t *testing.T) {
	s := newTestStore(t, "A", "B")
	request(t, s, "A", "B", domain.KindLove)
	before := s.Snapshot()

	err := s.ApplyDelta(domain.Delta{
		Remove: []string{domain.DirectedID("A", "B")},
		Add:    []domain.Relationship{domain.NewDirected("A", "Z", domain.KindHate)},
	})
	require.Error(t, err)
	assert.Equal(t, before, s.Snapshot())

	err = s.ApplyDelta(domain.Delta{Remove: []string{"nope"}})
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestStoreApplyDeltaRejectsBadRelationships(t *testing.T) {
	s := newTestStore(t, "A", "B")

	assert.Error(t, s.ApplyDelta(domain.Delta{Add: []domain.Relationship{domain.NewDirected("A", "A", domain.KindLove)}}))
	assert.Error(t, s.ApplyDelta(domain.Delta{Add: []domain.Relationship{domain.NewDirected("A", "B", domain.Kind("rival"))}}))

	request(t, s, "A", "B", domain.KindLove)
	assert.Error(t, s.ApplyDelta(domain.Delta{Add: []domain.Relationship{domain.NewDirected("A", "B", domain.KindHate)}}),
		"adding over an existing id without removing it")
}

func TestStoreRemoveRelationship(t *testing.T) {
	s := newTestStore(t, "A", "B")
	request(t, s, "A", "B", domain.KindLove)

	require.NoError(t, s.RemoveRelationship(domain.DirectedID("A", "B")))
	_, rels := s.Len()
	assert.Equal(t, 0, rels)
	assert.True(t, domain.IsNotFound(s.RemoveRelationship(domain.DirectedID("A", "B"))))
}

func TestStoreMoveEntities(t *testing.T) {
	s := newTestStore(t, "A", "B")

	err := s.MoveEntities(map[string]domain.Position{"A": {X: 1, Y: 2}, "Z": {}})
	assert.True(t, domain.IsNotFound(err))
	a, _ := s.Entity("A")
	assert.Equal(t, domain.Position{X: 0}, a.Position)

	require.NoError(t, s.MoveEntities(map[string]domain.Position{"A": {X: 1, Y: 2}}))
	a, _ = s.Entity("A")
	assert.Equal(t, domain.Position{X: 1, Y: 2}, a.Position)

	assert.True(t, domain.IsNotFound(s.MoveEntity("Z", domain.Position{})))
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t, "A", "B")
	request(t, s, "A", "B", domain.KindLove)
	_, _ = s.Select("A")

	s.Clear()

	entities, rels := s.Len()
	assert.Zero(t, entities)
	assert.Zero(t, rels)
	assert.True(t, s.Selection().Empty())
}
