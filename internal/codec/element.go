package codec

import (
	"fmt"
	"strings"

	"shipperizer/internal/domain"
)

const (
	GroupNodes = "nodes"
	GroupEdges = "edges"

	// Selection marker classes carried by node records
	ClassFirst  = "cy-node-first"
	ClassSecond = "cy-node-second"
)

// Element is one record of the persisted element list
type Element struct {
	Group    string           `json:"group" yaml:"group"`
	Data     ElementData      `json:"data" yaml:"data"`
	Position *domain.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Classes  string           `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// ElementData holds the fields of a node or edge record
type ElementData struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Image  string `json:"image,omitempty" yaml:"image,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Merged *bool  `json:"merged,omitempty" yaml:"merged,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`

	// Legacy spellings, read but never written
	Img string `json:"img,omitempty" yaml:"img,omitempty"`
	Rel string `json:"rel,omitempty" yaml:"rel,omitempty"`
}

// ToElements flattens a snapshot into node records followed by edge records
func ToElements(snap domain.Snapshot) []Element {
	out := make([]Element, 0, len(snap.Entities)+len(snap.Relationships))

	for _, e := range snap.Entities {
		pos := e.Position
		el := Element{
			Group:    GroupNodes,
			Data:     ElementData{ID: e.ID, Image: e.Image},
			Position: &pos,
		}
		switch e.ID {
		case snap.Selection.First:
			el.Classes = ClassFirst
		case snap.Selection.Second:
			el.Classes = ClassSecond
		}
		out = append(out, el)
	}

	for _, r := range snap.Relationships {
		source, target := r.Endpoints()
		kind := domain.KindOf(r)
		merged := domain.IsMerged(r)
		out = append(out, Element{
			Group: GroupEdges,
			Data: ElementData{
				ID:     r.ID(),
				Source: source,
				Target: target,
				Kind:   string(kind),
				Merged: &merged,
				Color:  kind.Color(),
			},
		})
	}
	return out
}

// FromElements rebuilds a snapshot from element records and checks it against
// the graph invariants. Any failure is a *domain.MalformedImportError.
// Edge ids in the records are ignored and re-derived from the endpoints.
func FromElements(elems []Element) (domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	for i, el := range elems {
		switch el.Group {
		case GroupNodes:
			if el.Data.ID == "" {
				return domain.Snapshot{}, malformed("element %d: node without id", i)
			}
			image := el.Data.Image
			if image == "" {
				image = el.Data.Img
			}
			var pos domain.Position
			if el.Position != nil {
				pos = *el.Position
			}
			snap.Entities = append(snap.Entities, domain.Entity{ID: el.Data.ID, Image: image, Position: pos})

			for _, class := range strings.Fields(el.Classes) {
				switch class {
				case ClassFirst:
					snap.Selection.First = el.Data.ID
				case ClassSecond:
					snap.Selection.Second = el.Data.ID
				}
			}

		case GroupEdges:
			d := el.Data
			if d.Source == "" || d.Target == "" {
				return domain.Snapshot{}, malformed("element %d: edge without source or target", i)
			}
			rawKind := d.Kind
			if rawKind == "" {
				rawKind = d.Rel
			}
			kind, err := domain.ParseKind(rawKind)
			if err != nil {
				return domain.Snapshot{}, &domain.MalformedImportError{Reason: fmt.Sprintf("element %d", i), Cause: err}
			}
			if d.Merged != nil && *d.Merged {
				snap.Relationships = append(snap.Relationships, domain.NewMerged(d.Source, d.Target, kind))
			} else {
				snap.Relationships = append(snap.Relationships, domain.NewDirected(d.Source, d.Target, kind))
			}

		default:
			return domain.Snapshot{}, malformed("element %d: unknown group %q", i, el.Group)
		}
	}

	if snap.Selection.Second != "" && snap.Selection.First == "" {
		snap.Selection = domain.Selection{}
	}

	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, &domain.MalformedImportError{Reason: "graph invariants violated", Cause: err}
	}
	return snap, nil
}

func malformed(format string, args ...any) error {
	return &domain.MalformedImportError{Reason: fmt.Sprintf(format, args...)}
}
