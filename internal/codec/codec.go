// Package codec converts graph snapshots to and from the flat element list
// used for saved files, autosave and change notifications.
//
// Each element is either a node record
//
//	{"group": "nodes", "data": {"id": "Stolas", "image": "..."}, "position": {"x": 0, "y": 0}}
//
// or an edge record
//
//	{"group": "edges", "data": {"id": "Stolas_Blitzo", "source": "Stolas", "target": "Blitzo", "kind": "love", "merged": false}}
//
// Files written by older versions used "img" and "rel" for the image and kind;
// both are still accepted on import.
package codec

import (
	"io"

	"shipperizer/internal/domain"
)

// Importer parses graph data from a serialized format
type Importer interface {
	Parse(r io.Reader) (domain.Snapshot, error)
	Format() string
}

// Exporter writes graph data in a serialized format
type Exporter interface {
	Export(snap domain.Snapshot, w io.Writer) error
	Format() string
}
