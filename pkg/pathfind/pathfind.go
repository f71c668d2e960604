// Package pathfind computes least-cost routes over the stored edge weights
// of a graph.
//
// Weights are the distances recorded when each edge was created, not the
// current distance between endpoints, so a path through a node that has
// since moved is still costed at creation-time lengths.
package pathfind

import (
	"context"
	"iter"
	"slices"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// Graph is the read view the search needs. *graph.Store and
// *graph.Snapshot both satisfy it.
type Graph interface {
	Live(h graph.Handle) bool
	Adjacent(h graph.Handle) iter.Seq2[graph.Handle, float64]
}

// Result is the outcome of a search. Path is empty when no route exists.
type Result struct {
	Path    []graph.Handle
	Cost    float64
	Settled int // nodes finalised before the search stopped
}

// Found reports whether a route was found.
func (r Result) Found() bool {
	return len(r.Path) > 0
}

// cancelCheckInterval is how many settled nodes pass between context checks.
const cancelCheckInterval = 64

// Find runs FindContext without cancellation.
func Find(g Graph, start, goal graph.Handle) Result {
	r, _ := FindContext(context.Background(), g, start, goal)
	return r
}

// FindContext returns a least-cost path from start to goal using Dijkstra's
// algorithm. The search stops as soon as goal is settled. A dead start or
// goal, or an unreachable goal, yields an empty Result and nil error; the
// only error is ctx.Err() when the context ends first.
//
// Each node enters the frontier at most once, so the run is
// O((V + E) log V) with V and E counted over the explored region.
func FindContext(ctx context.Context, g Graph, start, goal graph.Handle) (Result, error) {
	if !g.Live(start) || !g.Live(goal) {
		return Result{}, nil
	}
	if start == goal {
		return Result{Path: []graph.Handle{start}, Settled: 1}, nil
	}

	prev := make(map[graph.Handle]graph.Handle)
	settled := make(map[graph.Handle]struct{})
	f := newFrontier()
	f.insert(start, 0)

	for f.Len() > 0 {
		if len(settled)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Settled: len(settled)}, err
			}
		}

		cur := f.popMin()
		settled[cur.node] = struct{}{}
		if cur.node == goal {
			return Result{
				Path:    walkBack(prev, start, goal),
				Cost:    cur.dist,
				Settled: len(settled),
			}, nil
		}

		for next, w := range g.Adjacent(cur.node) {
			if _, done := settled[next]; done {
				continue
			}
			d := cur.dist + w
			if e, queued := f.lookup(next); queued {
				if d < e.dist {
					f.decrease(e, d)
					prev[next] = cur.node
				}
				continue
			}
			f.insert(next, d)
			prev[next] = cur.node
		}
	}

	return Result{Settled: len(settled)}, nil
}

func walkBack(prev map[graph.Handle]graph.Handle, start, goal graph.Handle) []graph.Handle {
	path := []graph.Handle{goal}
	for n := goal; n != start; {
		n = prev[n]
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}
