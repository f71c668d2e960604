package visualization

import (
	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// HierarchicalLayout arranges nodes in breadth-first levels. Each connected
// component is rooted at its earliest node, so all roots share the top
// level.
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(nodes []graph.Node, edges []graph.Edge) map[graph.Handle]Position {
	positions := make(map[graph.Handle]Position, len(nodes))

	if len(nodes) == 0 {
		return positions
	}

	adj := adjacency(nodes, edges)
	depth := make(map[graph.Handle]int, len(nodes))
	var levels [][]graph.Handle

	for _, root := range nodes {
		if _, seen := depth[root.Handle]; seen {
			continue
		}
		depth[root.Handle] = 0
		queue := []graph.Handle{root.Handle}
		for len(queue) > 0 {
			h := queue[0]
			queue = queue[1:]
			d := depth[h]
			if d == len(levels) {
				levels = append(levels, nil)
			}
			levels[d] = append(levels[d], h)
			for _, next := range adj[h] {
				if _, seen := depth[next]; !seen {
					depth[next] = d + 1
					queue = append(queue, next)
				}
			}
		}
	}

	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))
	levelWidth := hl.config.Width - 2*hl.config.Padding

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, h := range level {
			positions[h] = Position{X: hl.config.Padding + spacing*float64(nodeIdx+1), Y: y}
		}
	}

	return positions
}
