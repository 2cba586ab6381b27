package domain

// EdgeView is the read access the resolver needs into the current edge set
type EdgeView interface {
	DirectedEdge(source, target string) (Directed, bool)
	MergedEdge(a, b string) (Merged, bool)
}

// Delta is the set of edge changes produced by one relationship request.
// Removals are applied before additions.
type Delta struct {
	Remove []string       `json:"remove,omitempty"`
	Add    []Relationship `json:"add,omitempty"`
}

// Noop reports whether applying the delta would change nothing
func (d Delta) Noop() bool {
	return len(d.Remove) == 0 && len(d.Add) == 0
}

// Resolve computes the edges to remove and add when kind is requested from
// source to target. Callers guarantee source != target and that both exist.
//
// A merged pair asked for its own kind is left alone. A merged pair asked for
// another kind splits: the reverse direction keeps the old kind and the
// requested direction takes the new one. Without a merged edge any existing
// source→target edge is replaced, and a reverse edge of the same kind
// collapses with the request into one merged edge.
func Resolve(view EdgeView, source, target string, kind Kind) Delta {
	var delta Delta

	if merged, ok := view.MergedEdge(source, target); ok {
		if merged.Kind == kind {
			return delta
		}
		delta.Remove = append(delta.Remove, merged.ID())
		delta.Add = append(delta.Add,
			NewDirected(target, source, merged.Kind),
			NewDirected(source, target, kind),
		)
		return delta
	}

	if forward, ok := view.DirectedEdge(source, target); ok {
		delta.Remove = append(delta.Remove, forward.ID())
	}

	if reverse, ok := view.DirectedEdge(target, source); ok && reverse.Kind == kind {
		delta.Remove = append(delta.Remove, reverse.ID())
		delta.Add = append(delta.Add, NewMerged(source, target, kind))
		return delta
	}

	delta.Add = append(delta.Add, NewDirected(source, target, kind))
	return delta
}
