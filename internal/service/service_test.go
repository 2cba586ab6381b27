package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shipperizer/internal/codec"
	"shipperizer/internal/domain"
	"shipperizer/internal/layout"
)

func initialSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Entities: []domain.Entity{
			domain.NewEntity("A", "a.png", 0, 0),
			domain.NewEntity("B", "b.png", 100, 0),
			domain.NewEntity("C", "c.png", 0, 100),
		},
		Relationships: []domain.Relationship{},
	}
}

func newTestSession(t *testing.T, opts ...Option) (*GraphSession, *EventBus) {
	t.Helper()
	bus := NewEventBus()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	s := NewGraphSession(bus, opts...)
	require.NoError(t, s.Reset(initialSnapshot()))
	return s, bus
}

func selectPair(t *testing.T, s *GraphSession, first, second string) {
	t.Helper()
	_, err := s.Select(first)
	require.NoError(t, err)
	sel, err := s.Select(second)
	require.NoError(t, err)
	require.Equal(t, domain.Selection{First: first, Second: second}, sel)
}

func TestEditThenUndoRestoresInitialGraph(t *testing.T) {
	s, _ := newTestSession(t)
	initial := s.Snapshot()

	selectPair(t, s, "A", "B")
	changed, err := s.PerformCommand(RequestRelationship{Kind: domain.KindLove})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, []domain.Relationship{domain.NewDirected("A", "B", domain.KindLove)}, s.Snapshot().Relationships)
	assert.True(t, s.State().Selection.Empty(), "selection is cleared after a relationship edit")

	selectPair(t, s, "B", "A")
	_, err = s.PerformCommand(RequestRelationship{Kind: domain.KindLove})
	require.NoError(t, err)
	assert.Equal(t, []domain.Relationship{domain.NewMerged("A", "B", domain.KindLove)}, s.Snapshot().Relationships)

	_, err = s.PerformCommand(DeleteEntity{ID: "B"})
	require.NoError(t, err)
	after := s.Snapshot()
	assert.Len(t, after.Entities, 2)
	assert.Empty(t, after.Relationships)

	for i := 0; i < 3; i++ {
		require.True(t, s.Undo(), "undo %d", i+1)
	}
	assert.Equal(t, initial, s.Snapshot())

	state := s.State()
	assert.False(t, state.CanUndo)
	assert.True(t, state.CanRedo)
	assert.False(t, s.Undo())
}

func TestSameKindOnMergedPairIsNoop(t *testing.T) {
	s, _ := newTestSession(t)

	selectPair(t, s, "A", "B")
	_, err := s.PerformCommand(RequestRelationship{Kind: domain.KindHate})
	require.NoError(t, err)
	selectPair(t, s, "B", "A")
	_, err = s.PerformCommand(RequestRelationship{Kind: domain.KindHate})
	require.NoError(t, err)
	before := s.Snapshot()
	undoDepth, _ := s.history.Depth()

	selectPair(t, s, "A", "B")
	changed, err := s.PerformCommand(RequestRelationship{Kind: domain.KindHate})
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, before, s.Snapshot())
	depth, _ := s.history.Depth()
	assert.Equal(t, undoDepth, depth, "no checkpoint for a no-op")
	assert.True(t, s.State().Selection.Empty())
}

func TestSplitMergedPair(t *testing.T) {
	s, _ := newTestSession(t)

	selectPair(t, s, "A", "B")
	_, err := s.PerformCommand(RequestRelationship{Kind: domain.KindFriend})
	require.NoError(t, err)
	selectPair(t, s, "B", "A")
	_, err = s.PerformCommand(RequestRelationship{Kind: domain.KindFriend})
	require.NoError(t, err)

	selectPair(t, s, "A", "B")
	_, err = s.PerformCommand(RequestRelationship{Kind: domain.KindHate})
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.Relationship{
		domain.NewDirected("B", "A", domain.KindFriend),
		domain.NewDirected("A", "B", domain.KindHate),
	}, s.Snapshot().Relationships)
}

func TestRelationshipRequiresCompleteSelection(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Select("A")
	require.NoError(t, err)

	changed, err := s.PerformCommand(RequestRelationship{Kind: domain.KindLove})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidSelection(err))
	assert.False(t, changed)
	assert.False(t, s.State().CanUndo)
}

func TestUnknownKindRejected(t *testing.T) {
	s, _ := newTestSession(t)
	selectPair(t, s, "A", "B")

	_, err := s.PerformCommand(RequestRelationship{Kind: domain.Kind("rival")})
	assert.Error(t, err)
	assert.Equal(t, domain.Selection{First: "A", Second: "B"}, s.State().Selection)
}

func TestDeleteMissingTargets(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.PerformCommand(DeleteEntity{ID: "Z"})
	assert.True(t, domain.IsNotFound(err))

	_, err = s.PerformCommand(DeleteRelationship{ID: "A_B"})
	assert.True(t, domain.IsNotFound(err))

	_, err = s.PerformCommand(MoveEntity{ID: "Z"})
	assert.True(t, domain.IsNotFound(err))

	_, err = s.Select("Z")
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteRelationship(t *testing.T) {
	s, _ := newTestSession(t)
	selectPair(t, s, "C", "A")
	_, err := s.PerformCommand(RequestRelationship{Kind: domain.KindFriend})
	require.NoError(t, err)

	_, err = s.PerformCommand(DeleteRelationship{ID: domain.DirectedID("C", "A")})
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Relationships)

	require.True(t, s.Undo())
	assert.Len(t, s.Snapshot().Relationships, 1)
}

func TestNewCommandClearsRedo(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.PerformCommand(MoveEntity{ID: "A", Position: domain.Position{X: 5, Y: 5}})
	require.NoError(t, err)
	require.True(t, s.Undo())
	require.True(t, s.State().CanRedo)

	_, err = s.PerformCommand(DeleteEntity{ID: "C"})
	require.NoError(t, err)
	assert.False(t, s.State().CanRedo)
	assert.False(t, s.Redo())
}

func TestLayout(t *testing.T) {
	vp := layout.Viewport{Width: 800, Height: 600, NodeSize: 80, Padding: layout.DefaultPadding, Zoom: 1}

	t.Run("moves entities onto a circle", func(t *testing.T) {
		s, _ := newTestSession(t)
		changed, err := s.PerformCommand(RequestLayout{Viewport: vp})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, s.State().CanUndo)
	})

	t.Run("empty graph is a noop", func(t *testing.T) {
		s := NewGraphSession(NewEventBus())
		changed, err := s.PerformCommand(RequestLayout{Viewport: vp})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.False(t, s.State().CanUndo)
	})

	t.Run("invalid viewport", func(t *testing.T) {
		s, _ := newTestSession(t)
		_, err := s.PerformCommand(RequestLayout{Viewport: layout.Viewport{}})
		assert.Error(t, err)
	})
}

func TestImport(t *testing.T) {
	t.Run("replaces graph and clears selection", func(t *testing.T) {
		s, _ := newTestSession(t)
		_, err := s.Select("A")
		require.NoError(t, err)

		doc := `[
			{"group":"nodes","data":{"id":"X","image":"x.png"},"position":{"x":1,"y":2}},
			{"group":"nodes","data":{"id":"Y"},"position":{"x":3,"y":4}},
			{"group":"edges","data":{"source":"X","target":"Y","kind":"love","merged":true}}
		]`
		require.NoError(t, s.Import(codec.NewJSONCodec(), strings.NewReader(doc)))

		snap := s.Snapshot()
		require.Len(t, snap.Entities, 2)
		assert.Equal(t, []domain.Relationship{domain.NewMerged("X", "Y", domain.KindLove)}, snap.Relationships)
		assert.True(t, s.State().Selection.Empty())

		require.True(t, s.Undo())
		assert.Equal(t, initialSnapshot(), s.Snapshot())
	})

	t.Run("malformed import leaves graph untouched", func(t *testing.T) {
		s, _ := newTestSession(t)
		before := s.Snapshot()

		doc := `[{"group":"edges","data":{"source":"A","target":"Nobody","kind":"love"}}]`
		err := s.Import(codec.NewJSONCodec(), strings.NewReader(doc))
		require.Error(t, err)
		assert.True(t, domain.IsMalformedImport(err))
		assert.Equal(t, before, s.Snapshot())
		assert.False(t, s.State().CanUndo)
	})

	t.Run("inconsistent snapshot rejected", func(t *testing.T) {
		s, _ := newTestSession(t)
		bad := initialSnapshot()
		bad.Entities = append(bad.Entities, bad.Entities[0])

		_, err := s.PerformCommand(ImportGraph{Snapshot: bad})
		assert.True(t, domain.IsMalformedImport(err))
	})
}

func TestExportStripsSelection(t *testing.T) {
	s, _ := newTestSession(t)
	selectPair(t, s, "A", "B")

	var buf strings.Builder
	require.NoError(t, s.Export(codec.NewJSONCodec(), &buf))
	assert.NotContains(t, buf.String(), codec.ClassFirst)

	assert.Contains(t, classesOf(s.State().Elements), codec.ClassFirst)
}

func classesOf(elems []codec.Element) string {
	var out []string
	for _, e := range elems {
		out = append(out, e.Classes)
	}
	return strings.Join(out, " ")
}

func TestClearAll(t *testing.T) {
	s, _ := newTestSession(t)

	changed, err := s.PerformCommand(ClearAll{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.Snapshot().Entities)

	changed, err = s.PerformCommand(ClearAll{})
	require.NoError(t, err)
	assert.False(t, changed, "clearing an empty graph takes no checkpoint")

	require.True(t, s.Undo())
	assert.Len(t, s.Snapshot().Entities, 3)
}

func TestUploadEntities(t *testing.T) {
	s, _ := newTestSession(t)
	start := domain.Position{X: 42, Y: 7}

	changed, err := s.PerformCommand(UploadEntities{
		Uploads: []Upload{
			{Name: "A", Image: "a2.png"},
			{Name: "D", Image: "d.png"},
		},
		Start: start,
	})
	require.NoError(t, err)
	require.True(t, changed)

	snap := s.Snapshot()
	require.Len(t, snap.Entities, 4)
	assert.Equal(t, domain.NewEntity("A", "a2.png", 0, 0), snap.Entities[0], "existing entity keeps its position")
	assert.Equal(t, domain.Entity{ID: "D", Image: "d.png", Position: start}, snap.Entities[3])

	changed, err = s.PerformCommand(UploadEntities{Uploads: []Upload{{Name: "D", Image: "d.png"}}, Start: start})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.PerformCommand(UploadEntities{Uploads: []Upload{{Image: "x.png"}}})
	assert.Error(t, err)
}

func TestUploadWithLayoutIsOneCheckpoint(t *testing.T) {
	s, _ := newTestSession(t)
	vp := layout.Viewport{Width: 800, Height: 600, NodeSize: 80, Zoom: 1}

	_, err := s.PerformCommand(UploadEntities{
		Uploads: []Upload{{Name: "D", Image: "d.png"}},
		Start:   domain.Position{X: 50, Y: 50},
		Layout:  &vp,
	})
	require.NoError(t, err)
	undo, _ := s.history.Depth()
	assert.Equal(t, 1, undo)

	require.True(t, s.Undo())
	assert.Equal(t, initialSnapshot(), s.Snapshot())
}

func TestMoveEntity(t *testing.T) {
	s, _ := newTestSession(t)

	changed, err := s.PerformCommand(MoveEntity{ID: "B", Position: domain.Position{X: 100}})
	require.NoError(t, err)
	assert.False(t, changed, "dropping in place is a noop")

	changed, err = s.PerformCommand(MoveEntity{ID: "B", Position: domain.Position{X: -20, Y: 30}})
	require.NoError(t, err)
	assert.True(t, changed)
	e, _ := s.store.Entity("B")
	assert.Equal(t, domain.Position{X: -20, Y: 30}, e.Position)
}

func TestSyncRoster(t *testing.T) {
	s, _ := newTestSession(t)

	roster := []domain.Entity{
		domain.NewEntity("A", "a.png", 0, 0),
		domain.NewEntity("Stolas", "roster/Stolas.png", 0, 0),
	}
	changed, err := s.PerformCommand(SyncRoster{Entities: roster})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.Snapshot().Entities, 4)

	changed, err = s.PerformCommand(SyncRoster{Entities: roster})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestHistoryLimit(t *testing.T) {
	s, _ := newTestSession(t, WithHistoryLimit(2))

	for i := 1; i <= 4; i++ {
		_, err := s.PerformCommand(MoveEntity{ID: "A", Position: domain.Position{X: float64(i)}})
		require.NoError(t, err)
	}

	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.False(t, s.Undo())
	e, _ := s.store.Entity("A")
	assert.Equal(t, 2.0, e.Position.X)
}

func TestEventsPublished(t *testing.T) {
	s, bus := newTestSession(t)
	events := make(chan Event, 8)
	bus.Subscribe(events)

	_, err := s.Select("A")
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, EventSelectionChanged, ev.Type)

	_, err = s.PerformCommand(DeleteEntity{ID: "C"})
	require.NoError(t, err)
	ev = <-events
	require.Equal(t, EventGraphChanged, ev.Type)
	state, ok := ev.Payload.(State)
	require.True(t, ok)
	assert.True(t, state.CanUndo)
	assert.Len(t, state.Snapshot.Entities, 2)

	require.True(t, s.Undo())
	ev = <-events
	assert.Equal(t, EventHistoryChanged, ev.Type)
	assert.True(t, ev.Payload.(State).CanRedo)

	_, err = s.PerformCommand(DeleteEntity{ID: "Z"})
	require.Error(t, err)
	assert.Empty(t, events, "rejected commands publish nothing")
}

type recordingRecorder struct {
	commands map[string]int
}

func (r *recordingRecorder) ObserveCommand(command, result string) {
	r.commands[command+"/"+result]++
}
func (r *recordingRecorder) ObserveState(int, int, int) {}
func (r *recordingRecorder) ObserveAutosave(string)     {}

func TestCommandOutcomesRecorded(t *testing.T) {
	rec := &recordingRecorder{commands: make(map[string]int)}
	s, _ := newTestSession(t, WithRecorder(rec))

	_, _ = s.PerformCommand(ClearAll{})
	_, _ = s.PerformCommand(ClearAll{})
	_, _ = s.PerformCommand(DeleteEntity{ID: "A"})

	assert.Equal(t, 1, rec.commands["clear_all/applied"])
	assert.Equal(t, 1, rec.commands["clear_all/noop"])
	assert.Equal(t, 1, rec.commands["delete_entity/error"])
}
