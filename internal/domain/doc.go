// Package domain defines the core domain types for the Shipperizer relationship editor.
//
// This package contains the entities and value objects that describe a
// character relationship graph and the pure rules that edit it.
//
// # Core Types
//
// Entity represents one named character with an opaque image reference and a
// position on the canvas.
//
// Relationship is a closed variant with two shapes:
//
//   - Directed: a one-way tie from a source to a target carrying one Kind
//   - Merged: the same Kind held in both directions between an unordered pair
//
// Kind is one of love, hate or friend.
//
// # Resolver
//
// Resolve computes the edge delta produced by requesting a relationship between
// two entities. It creates, replaces, merges or splits relationships so that an
// unordered pair never holds more than one representation.
//
// # Snapshots
//
// Snapshot is a self-contained copy of a full graph state. Snapshots are what the
// undo history stores, what autosave persists and what import produces.
//
// # Design Principles
//
// - Value types throughout, copying a Snapshot never aliases live state
// - No database or transport dependencies
// - Exhaustive matching over the Relationship variant
package domain
