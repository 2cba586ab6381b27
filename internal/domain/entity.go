package domain

// Position is a point on the canvas
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Entity represents one named character in the graph
type Entity struct {
	ID       string   `json:"id"`
	Image    string   `json:"image,omitempty"`
	Position Position `json:"position"`
}

// NewEntity creates an entity at the given position
func NewEntity(id, image string, x, y float64) Entity {
	return Entity{
		ID:       id,
		Image:    image,
		Position: Position{X: x, Y: y},
	}
}
