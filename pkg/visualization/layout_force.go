package visualization

import (
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// ForceDirectedLayout implements a Fruchterman-Reingold style layout. It
// starts from the nodes' current positions, so repeated runs refine rather
// than reshuffle.
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using the force-directed algorithm
func (fdl *ForceDirectedLayout) ComputeLayout(nodes []graph.Node, edges []graph.Edge) map[graph.Handle]Position {
	if len(nodes) == 0 {
		return make(map[graph.Handle]Position)
	}

	// Single node - center it
	if len(nodes) == 1 {
		return map[graph.Handle]Position{
			nodes[0].Handle: {X: fdl.config.Width / 2, Y: fdl.config.Height / 2},
		}
	}

	// Start from the current positions scaled into the canvas, jittered so
	// coincident nodes can separate.
	rng := rand.New(rand.NewPCG(fdl.config.Seed, uint64(len(nodes))))
	start := make(map[graph.Handle]Position, len(nodes))
	for _, n := range nodes {
		start[n.Handle] = Position{X: n.X + rng.Float64() - 0.5, Y: n.Y + rng.Float64() - 0.5}
	}
	positions := normalizePositions(start, fdl.config.Width, fdl.config.Height, fdl.config.Padding)

	adj := adjacency(nodes, edges)

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(nodes))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[graph.Handle]Position, len(nodes))

		// Repulsion between all nodes
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				pa, pb := positions[a.Handle], positions[b.Handle]
				dx := pa.X - pb.X
				dy := pa.Y - pb.Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				fa, fb := forces[a.Handle], forces[b.Handle]
				forces[a.Handle] = Position{X: fa.X + fx, Y: fa.Y + fy}
				forces[b.Handle] = Position{X: fb.X - fx, Y: fb.Y - fy}
			}
		}

		// Attraction between connected nodes
		for _, n := range nodes {
			for _, other := range adj[n.Handle] {
				pa, pb := positions[n.Handle], positions[other]
				dx := pa.X - pb.X
				dy := pa.Y - pb.Y
				dist := math.Hypot(dx, dy)

				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				f := forces[n.Handle]
				forces[n.Handle] = Position{
					X: f.X - (dx/dist)*force,
					Y: f.Y - (dy/dist)*force,
				}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, n := range nodes {
			f := forces[n.Handle]
			force := math.Hypot(f.X, f.Y)

			if force > 0 {
				step := math.Min(force, temperature) * cool
				p := positions[n.Handle]
				positions[n.Handle] = Position{
					X: p.X + (f.X/force)*step,
					Y: p.Y + (f.Y/force)*step,
				}
			}
		}

		temperature *= 0.95
	}

	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding)
}
