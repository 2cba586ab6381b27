// Package repository defines the persistence interfaces for Shipperizer.
//
// The only persisted state is the autosave: the most recent full graph
// snapshot, written after every change and loaded again on startup. The
// implementation lives in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores entities and relationships in their own
// tables so the saved graph can be inspected with ordinary SQL. It handles:
//
// - Whole-snapshot replacement in a single transaction
// - Skipping writes whose content digest matches the last save
// - Foreign key cascades from entities to relationships
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
