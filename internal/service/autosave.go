package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shipperizer/internal/repository"
)

// Autosave results recorded on the session Recorder
const (
	AutosaveSaved     = "saved"
	AutosaveUnchanged = "unchanged"
	AutosaveFailed    = "failed"
)

// Autosaver persists the session graph after every change
type Autosaver struct {
	session  *GraphSession
	store    repository.AutosaveStore
	bus      *EventBus
	events   chan Event
	logger   *zap.Logger
	recorder Recorder
}

// NewAutosaver subscribes to bus immediately so no change published before
// Run starts is missed
func NewAutosaver(session *GraphSession, store repository.AutosaveStore, bus *EventBus, logger *zap.Logger) *Autosaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Autosaver{
		session:  session,
		store:    store,
		bus:      bus,
		events:   make(chan Event, 64),
		logger:   logger,
		recorder: session.recorder,
	}
	bus.Subscribe(a.events)
	return a
}

// Restore loads the autosave into the session. It reports whether an
// autosave existed.
func (a *Autosaver) Restore(ctx context.Context) (bool, error) {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load autosave: %w", err)
	}
	if snap == nil {
		return false, nil
	}
	if err := a.session.Reset(*snap); err != nil {
		return false, fmt.Errorf("autosave rejected: %w", err)
	}
	a.logger.Info("autosave restored",
		zap.Int("entities", len(snap.Entities)),
		zap.Int("relationships", len(snap.Relationships)))
	return true, nil
}

// Run saves after each graph change until ctx is cancelled, then flushes
// one last time
func (a *Autosaver) Run(ctx context.Context) {
	defer a.bus.Unsubscribe(a.events)

	for {
		select {
		case <-ctx.Done():
			if err := a.Flush(context.Background()); err != nil {
				a.logger.Error("final autosave failed", zap.Error(err))
			}
			return
		case ev := <-a.events:
			changed := a.drain() || a.persists(ev)
			if !changed {
				continue
			}
			if err := a.Flush(ctx); err != nil {
				a.logger.Error("autosave failed", zap.Error(err))
			}
		}
	}
}

// Flush saves the current graph
func (a *Autosaver) Flush(ctx context.Context) error {
	saved, err := a.store.Save(ctx, a.session.Snapshot())
	switch {
	case err != nil:
		a.recorder.ObserveAutosave(AutosaveFailed)
		return err
	case saved:
		a.recorder.ObserveAutosave(AutosaveSaved)
		a.logger.Debug("autosaved")
	default:
		a.recorder.ObserveAutosave(AutosaveUnchanged)
	}
	return nil
}

// Clear deletes the stored autosave. The live graph is untouched.
func (a *Autosaver) Clear(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear autosave: %w", err)
	}
	a.logger.Info("autosave cleared")
	return nil
}

func (a *Autosaver) persists(ev Event) bool {
	return ev.Type == EventGraphChanged || ev.Type == EventHistoryChanged
}

// drain empties queued events so a burst costs one save. It reports whether
// any drained event changed the graph.
func (a *Autosaver) drain() bool {
	changed := false
	for {
		select {
		case ev := <-a.events:
			changed = changed || a.persists(ev)
		default:
			return changed
		}
	}
}
