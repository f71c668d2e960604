package visualization

import (
	"fmt"
	"slices"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters. Positions are produced in
// [0, Width] x [0, Height].
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       uint64  // Jitter seed for iterative algorithms
}

// Layout computes new positions for a set of nodes.
type Layout interface {
	ComputeLayout(nodes []graph.Node, edges []graph.Edge) map[graph.Handle]Position
}

// Layout names accepted by NewLayout.
const (
	LayoutCircular     = "circular"
	LayoutForce        = "force"
	LayoutHierarchical = "hierarchical"
)

// LayoutNames lists the available layouts in cycling order.
var LayoutNames = []string{LayoutCircular, LayoutForce, LayoutHierarchical}

// NewLayout returns the layout registered under name.
func NewLayout(name string, config LayoutConfig) (Layout, error) {
	switch name {
	case LayoutCircular:
		return NewCircularLayout(&config), nil
	case LayoutForce:
		return NewForceDirectedLayout(&config), nil
	case LayoutHierarchical:
		return NewHierarchicalLayout(&config), nil
	}
	return nil, fmt.Errorf("unknown layout %q (want one of %v)", name, LayoutNames)
}

// NextLayout returns the layout after name in LayoutNames, wrapping around.
func NextLayout(name string) string {
	i := slices.Index(LayoutNames, name)
	return LayoutNames[(i+1)%len(LayoutNames)]
}

// adjacency builds neighbour sets restricted to nodes.
func adjacency(nodes []graph.Node, edges []graph.Edge) map[graph.Handle][]graph.Handle {
	adj := make(map[graph.Handle][]graph.Handle, len(nodes))
	for _, n := range nodes {
		adj[n.Handle] = nil
	}
	for _, e := range edges {
		_, okA := adj[e.A]
		_, okB := adj[e.B]
		if !okA || !okB {
			continue
		}
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	return adj
}
