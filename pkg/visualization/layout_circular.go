package visualization

import (
	"math"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// CircularLayout arranges nodes in a circle in insertion order
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges nodes in a circle starting at angle zero
func (cl *CircularLayout) ComputeLayout(nodes []graph.Node, _ []graph.Edge) map[graph.Handle]Position {
	positions := make(map[graph.Handle]Position, len(nodes))

	if len(nodes) == 0 {
		return positions
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	radius := max(math.Min(centerX, centerY)-cl.config.Padding, 0)

	angleStep := 2 * math.Pi / float64(len(nodes))

	for i, n := range nodes {
		angle := float64(i) * angleStep
		positions[n.Handle] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions
}
