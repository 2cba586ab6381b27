// Package service implements the editing session for the Shipperizer graph.
//
// GraphSession owns the live graph store, its undo/redo history and the
// event bus that fans changes out to SSE clients and the autosaver. All edits
// go through PerformCommand, which plans the edit against the current graph,
// checkpoints, applies and publishes under a single lock.
//
// # Commands
//
// Checkpointed commands implement the Command interface: relationship
// requests, entity and relationship deletion, layout, import, clear, uploads,
// drags and roster sync. Selection taps and undo/redo are session methods
// since they never create history entries themselves.
//
// # Event System
//
// The session publishes an Event after every change with the full State as
// payload. Event types are graph_changed, history_changed and
// selection_changed.
//
// # Autosave
//
// Autosaver subscribes to the bus and persists the latest snapshot to a
// repository.AutosaveStore after every graph change.
package service
