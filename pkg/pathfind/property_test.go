package pathfind

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

type randomGraph struct {
	store   *graph.Store
	handles []graph.Handle
	oracle  *simple.WeightedUndirectedGraph
}

// buildGraphs mirrors the same random graph into a Store and a gonum graph.
func buildGraphs(coords []int, pairs []int) randomGraph {
	n := len(coords) / 2
	rg := randomGraph{
		store:   graph.NewStore(),
		handles: make([]graph.Handle, n),
		oracle:  simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
	}
	for i := range n {
		rg.handles[i] = rg.store.AddNode(float64(coords[2*i]), float64(coords[2*i+1])).Handle
		rg.oracle.AddNode(simple.Node(i))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		a, b := pairs[i]%n, pairs[i+1]%n
		e, ok := rg.store.AddEdge(rg.handles[a], rg.handles[b])
		if !ok {
			continue
		}
		rg.oracle.SetWeightedEdge(rg.oracle.NewWeightedEdge(simple.Node(a), simple.Node(b), e.Weight))
	}
	return rg
}

// TestDijkstraAgainstReference compares costs with gonum's Dijkstra and
// checks that every returned path is a real walk whose weights add up.
func TestDijkstraAgainstReference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("cost matches reference and path is consistent", prop.ForAll(
		func(coords []int, pairs []int, from, to int) bool {
			if len(coords) < 2 {
				return true
			}
			rg := buildGraphs(coords, pairs)
			n := len(rg.handles)
			src, dst := from%n, to%n

			r := Find(rg.store, rg.handles[src], rg.handles[dst])
			want := path.DijkstraFrom(simple.Node(src), rg.oracle).WeightTo(int64(dst))

			if math.IsInf(want, 1) {
				return !r.Found()
			}
			if !r.Found() || math.Abs(r.Cost-want) > 1e-6 {
				return false
			}
			if r.Path[0] != rg.handles[src] || r.Path[len(r.Path)-1] != rg.handles[dst] {
				return false
			}

			sum := 0.0
			for i := 0; i+1 < len(r.Path); i++ {
				step := math.Inf(1)
				for next, w := range rg.store.Adjacent(r.Path[i]) {
					if next == r.Path[i+1] {
						step = w
						break
					}
				}
				if math.IsInf(step, 1) {
					return false
				}
				sum += step
			}
			return math.Abs(sum-r.Cost) < 1e-6
		},
		gen.SliceOfN(24, gen.IntRange(-100, 100)),
		gen.SliceOf(gen.IntRange(0, 500)),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
