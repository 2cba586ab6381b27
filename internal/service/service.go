package service

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"shipperizer/internal/codec"
	"shipperizer/internal/domain"
	"shipperizer/internal/graph"
	"shipperizer/internal/history"
	"shipperizer/internal/metrics"
)

// Recorder receives session and autosave measurements
type Recorder interface {
	ObserveCommand(command, result string)
	ObserveState(undo, redo, entities int)
	ObserveAutosave(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string, string) {}
func (nopRecorder) ObserveState(int, int, int) {}
func (nopRecorder) ObserveAutosave(string) {}

// State is the payload published after every change
type State struct {
	Elements  []codec.Element  `json:"elements"`
	Selection domain.Selection `json:"selection"`
	CanUndo   bool             `json:"canUndo"`
	CanRedo   bool             `json:"canRedo"`

	// Snapshot is the selection-free graph behind Elements
	Snapshot domain.Snapshot `json:"-"`
}

// GraphSession owns one live graph with its history. It is safe for
// concurrent use; every operation runs under one lock.
type GraphSession struct {
	mu       sync.Mutex
	store    *graph.Store
	history  *history.Manager
	bus      *EventBus
	logger   *zap.Logger
	recorder Recorder
	limit    int
}

// Option configures a GraphSession
type Option func(*GraphSession)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *GraphSession) { s.logger = logger }
}

// WithRecorder sets where command outcomes are recorded
func WithRecorder(r Recorder) Option {
	return func(s *GraphSession) { s.recorder = r }
}

// WithHistoryLimit caps the undo depth. Zero keeps every checkpoint.
func WithHistoryLimit(limit int) Option {
	return func(s *GraphSession) { s.limit = limit }
}

// NewGraphSession creates a session with an empty graph publishing on bus
func NewGraphSession(bus *EventBus, opts ...Option) *GraphSession {
	s := &GraphSession{
		store:    graph.New(),
		bus:      bus,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.New(s.store, s.limit)
	return s
}

// PerformCommand plans cmd, then checkpoints, applies and publishes the
// change as one step. It reports whether the graph changed. Commands that
// plan to a no-op take no checkpoint.
func (s *GraphSession) PerformCommand(cmd Command) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With(zap.String("command", cmd.Name()))

	m, err := cmd.Plan(s.store)
	if err != nil {
		s.recorder.ObserveCommand(cmd.Name(), metrics.ResultError)
		log.Debug("command rejected", zap.Error(err))
		return false, err
	}

	if m.Noop() {
		s.recorder.ObserveCommand(cmd.Name(), metrics.ResultNoop)
		if m.ClearSelection && !s.store.Selection().Empty() {
			s.store.ClearSelection()
			s.publish(EventSelectionChanged)
		}
		return false, nil
	}

	s.history.Checkpoint()
	if err := m.Apply(s.store); err != nil {
		s.history.Rollback()
		s.recorder.ObserveCommand(cmd.Name(), metrics.ResultError)
		log.Error("planned command failed to apply", zap.Error(err))
		return false, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if m.ClearSelection {
		s.store.ClearSelection()
	}

	s.recorder.ObserveCommand(cmd.Name(), metrics.ResultApplied)
	entities, relationships := s.store.Len()
	log.Debug("command applied",
		zap.Int("entities", entities),
		zap.Int("relationships", relationships))
	s.publish(EventGraphChanged)
	return true, nil
}

// Select applies a tap on entity id to the selection
func (s *GraphSession) Select(id string) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.store.Select(id)
	if err != nil {
		return sel, err
	}
	s.publish(EventSelectionChanged)
	return sel, nil
}

// ClearSelection drops the selection
func (s *GraphSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Selection().Empty() {
		return
	}
	s.store.ClearSelection()
	s.publish(EventSelectionChanged)
}

// Undo steps back one checkpoint. It reports false when there was nothing to
// undo.
func (s *GraphSession) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Undo() {
		return false
	}
	s.recorder.ObserveCommand("undo", metrics.ResultApplied)
	s.publish(EventHistoryChanged)
	return true
}

// Redo re-applies the last undone change. It reports false when there was
// nothing to redo.
func (s *GraphSession) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.history.Redo() {
		return false
	}
	s.recorder.ObserveCommand("redo", metrics.ResultApplied)
	s.publish(EventHistoryChanged)
	return true
}

// Reset replaces the graph with snap and forgets all history. It is used to
// restore an autosave at startup.
func (s *GraphSession) Reset(snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return &domain.MalformedImportError{Reason: "graph is inconsistent", Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Restore(snap)
	s.store.ClearSelection()
	s.history.Reset()
	s.publish(EventGraphChanged)
	return nil
}

// State returns the current published state
func (s *GraphSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Snapshot returns a selection-free copy of the live graph
func (s *GraphSession) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Import parses r with importer and replaces the graph with the result
func (s *GraphSession) Import(importer codec.Importer, r io.Reader) error {
	snap, err := importer.Parse(r)
	if err != nil {
		return err
	}
	_, err = s.PerformCommand(ImportGraph{Snapshot: snap})
	return err
}

// Export writes the live graph, without selection, through exporter
func (s *GraphSession) Export(exporter codec.Exporter, w io.Writer) error {
	return exporter.Export(s.Snapshot(), w)
}

func (s *GraphSession) stateLocked() State {
	snap := s.store.Snapshot()
	withSelection := snap
	withSelection.Selection = s.store.Selection()

	return State{
		Elements:  codec.ToElements(withSelection),
		Selection: withSelection.Selection,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		Snapshot:  snap,
	}
}

// publish must be called with mu held so events leave in mutation order
func (s *GraphSession) publish(t EventType) {
	state := s.stateLocked()
	undo, redo := s.history.Depth()
	s.recorder.ObserveState(undo, redo, len(state.Snapshot.Entities))
	if s.bus != nil {
		s.bus.Publish(Event{Type: t, Payload: state})
	}
}
