// Package layout computes node placements for the relationship canvas.
//
// Circular spreads entities evenly around a circle while keeping the order in
// which they currently sit around their centroid, so a manual rearrangement
// survives the next re-layout. It is a pure function: animating towards the
// new positions is left to the renderer.
package layout

import (
	"fmt"
	"math"
	"sort"

	"shipperizer/internal/domain"
)

// DefaultPadding is the margin kept between the circle and the viewport edge
const DefaultPadding = 50

// Node is an entity id with its current position
type Node struct {
	ID       string
	Position domain.Position
}

// Placement is the target position computed for one node
type Placement struct {
	ID       string          `json:"id"`
	Position domain.Position `json:"position"`
}

// Viewport bounds the circle. Width and Height are in screen pixels and Zoom
// converts them to graph units.
type Viewport struct {
	Width    float64          `json:"width" validate:"gt=0"`
	Height   float64          `json:"height" validate:"gt=0"`
	NodeSize float64          `json:"node_size,omitempty" validate:"gte=0"`
	Padding  float64          `json:"padding,omitempty" validate:"gte=0"`
	Zoom     float64          `json:"zoom,omitempty" validate:"gte=0"`
	Center   *domain.Position `json:"center,omitempty"`
}

// Validate checks that the viewport has a usable area
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("viewport must have positive size, got %gx%g", v.Width, v.Height)
	}
	if v.NodeSize < 0 || v.Padding < 0 || v.Zoom < 0 {
		return fmt.Errorf("viewport node size, padding and zoom must not be negative")
	}
	return nil
}

// Radius returns the circle radius in graph units. When the viewport is too
// small to fit the circle the node size is used so slots stay distinct.
func (v Viewport) Radius() float64 {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	nodeSize := v.NodeSize
	if nodeSize == 0 {
		nodeSize = NodeSize(v.Width, v.Height, false)
	}
	r := (math.Min(v.Width, v.Height) - nodeSize - v.Padding) / 2 / zoom
	if r < nodeSize/zoom {
		r = nodeSize / zoom
	}
	return r
}

// Circular places nodes evenly on a circle, in the angular order they
// currently have around their centroid. The first slot keeps the angle of the
// node that already had the smallest angle, so the circle does not rotate.
//
// Zero nodes yields an empty result. A single node has no meaningful angle
// and is returned at its current position.
func Circular(nodes []Node, vp Viewport) []Placement {
	if len(nodes) == 0 {
		return []Placement{}
	}
	if len(nodes) == 1 {
		return []Placement{{ID: nodes[0].ID, Position: nodes[0].Position}}
	}

	centroid := Centroid(nodes)
	center := centroid
	if vp.Center != nil {
		center = *vp.Center
	}

	type polar struct {
		id    string
		angle float64
	}
	sorted := make([]polar, len(nodes))
	for i, n := range nodes {
		sorted[i] = polar{id: n.ID, angle: Angle(centroid, n.Position)}
	}
	// Stable on ties so nodes stacked on one ray keep their input order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].angle < sorted[j].angle
	})

	radius := vp.Radius()
	step := 2 * math.Pi / float64(len(sorted))
	offset := sorted[0].angle

	out := make([]Placement, len(sorted))
	for i, p := range sorted {
		theta := offset + float64(i)*step
		out[i] = Placement{
			ID: p.id,
			Position: domain.Position{
				X: center.X + radius*math.Cos(theta),
				Y: center.Y + radius*math.Sin(theta),
			},
		}
	}
	return out
}

// Centroid returns the mean position of nodes
func Centroid(nodes []Node) domain.Position {
	var c domain.Position
	if len(nodes) == 0 {
		return c
	}
	for _, n := range nodes {
		c.X += n.Position.X
		c.Y += n.Position.Y
	}
	c.X /= float64(len(nodes))
	c.Y /= float64(len(nodes))
	return c
}

// Angle returns the angle of p around center, normalized to [0, 2π)
func Angle(center, p domain.Position) float64 {
	a := math.Atan2(p.Y-center.Y, p.X-center.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// NodeSize returns the on-screen node diameter for a viewport, scaled to the
// smaller side and clamped so faces stay legible.
func NodeSize(width, height float64, mobile bool) float64 {
	divisor, minSize, maxSize := 12.0, 64.0, 160.0
	if mobile {
		divisor, minSize, maxSize = 10, 80, 200
	}
	size := math.Floor(math.Min(width, height) / divisor)
	return math.Max(minSize, math.Min(maxSize, size))
}
