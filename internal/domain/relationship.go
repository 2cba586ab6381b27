package domain

import (
	"fmt"
	"strings"
)

// Relationship is either a Directed or a Merged edge
type Relationship interface {
	// ID is derived from the endpoints, never assigned
	ID() string
	// Endpoints returns (source, target) for Directed and (a, b) for Merged
	Endpoints() (string, string)
	relationship()
}

// Directed is a one-way typed tie from Source to Target
type Directed struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   Kind   `json:"kind"`
}

// Merged represents the same Kind held in both directions between A and B.
// A always sorts before B.
type Merged struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Kind Kind   `json:"kind"`
}

// NewDirected creates a directed relationship
func NewDirected(source, target string, kind Kind) Directed {
	return Directed{Source: source, Target: target, Kind: kind}
}

// NewMerged creates a merged relationship with canonically ordered endpoints
func NewMerged(a, b string, kind Kind) Merged {
	p := NewPair(a, b)
	return Merged{A: p.Low, B: p.High, Kind: kind}
}

func (d Directed) ID() string { return DirectedID(d.Source, d.Target) }
func (d Directed) Endpoints() (string, string) { return d.Source, d.Target }
func (Directed) relationship() {}

func (m Merged) ID() string { return MergedID(m.A, m.B) }
func (m Merged) Endpoints() (string, string) { return m.A, m.B }
func (Merged) relationship() {}

// KindOf returns the kind carried by any relationship
func KindOf(r Relationship) Kind {
	switch r := r.(type) {
	case Directed:
		return r.Kind
	case Merged:
		return r.Kind
	default:
		panic(fmt.Sprintf("domain: unknown relationship type %T", r))
	}
}

// IsMerged reports whether r is the merged shape
func IsMerged(r Relationship) bool {
	_, ok := r.(Merged)
	return ok
}

// Touches reports whether either endpoint of r is id
func Touches(r Relationship, id string) bool {
	a, b := r.Endpoints()
	return a == id || b == id
}

// Pair is an unordered pair of entity ids in canonical order
type Pair struct {
	Low  string
	High string
}

// NewPair orders a and b
func NewPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// PairOf returns the unordered pair a relationship belongs to
func PairOf(r Relationship) Pair {
	return NewPair(r.Endpoints())
}

// Underscores separate the endpoints, so any underscore or percent inside a
// name is escaped. Plain names keep the "Source_Target" shape.
var idEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// DirectedID derives the id of the directed edge source→target
func DirectedID(source, target string) string {
	return idEscaper.Replace(source) + "_" + idEscaper.Replace(target)
}

// MergedID derives the id of the merged edge for {a, b}, independent of argument order
func MergedID(a, b string) string {
	p := NewPair(a, b)
	return "merged_" + idEscaper.Replace(p.Low) + "_" + idEscaper.Replace(p.High)
}
