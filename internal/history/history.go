// Package history implements linear undo/redo over full graph snapshots.
//
// Every user-visible mutation is preceded by exactly one Checkpoint. Undo and
// Redo move the live graph between stored snapshots through the Snapshotter,
// never by touching live state directly. A checkpoint after an undo discards
// the redo branch.
package history

import "shipperizer/internal/domain"

// Snapshotter is the live graph the manager records and restores
type Snapshotter interface {
	Snapshot() domain.Snapshot
	Restore(domain.Snapshot)
}

// Manager holds the undo and redo stacks
type Manager struct {
	source Snapshotter
	undo   []domain.Snapshot
	redo   []domain.Snapshot
	limit  int

	// dropped is the redo branch discarded by the latest checkpoint
	dropped []domain.Snapshot
}

// New creates a manager over source. limit caps the undo depth, dropping the
// oldest snapshot once exceeded; zero means unbounded.
func New(source Snapshotter, limit int) *Manager {
	if limit < 0 {
		limit = 0
	}
	return &Manager{source: source, limit: limit}
}

// Checkpoint records the current state before a mutation and clears redo
func (m *Manager) Checkpoint() {
	m.undo = push(m.undo, m.source.Snapshot(), m.limit)
	m.dropped = m.redo
	m.redo = nil
}

// Rollback reverts a checkpoint whose mutation failed: the live graph goes
// back to the checkpointed state and the redo branch it discarded returns.
func (m *Manager) Rollback() {
	if len(m.undo) == 0 {
		return
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.source.Restore(prev)
	m.redo = m.dropped
	m.dropped = nil
}

// Undo restores the most recent checkpoint. It reports false when there is
// nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	m.dropped = nil
	m.redo = append(m.redo, m.source.Snapshot())
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.source.Restore(prev)
	return true
}

// Redo re-applies the most recently undone state. It reports false when there
// is nothing to redo.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	m.dropped = nil
	m.undo = push(m.undo, m.source.Snapshot(), m.limit)
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.source.Restore(next)
	return true
}

// CanUndo reports whether the undo stack is non-empty
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

// Reset drops both stacks
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
	m.dropped = nil
}

func push(stack []domain.Snapshot, snap domain.Snapshot, limit int) []domain.Snapshot {
	stack = append(stack, snap)
	if limit > 0 && len(stack) > limit {
		// Copy down so the dropped snapshot is not kept alive by the backing array
		stack = append(stack[:0:0], stack[len(stack)-limit:]...)
	}
	return stack
}
