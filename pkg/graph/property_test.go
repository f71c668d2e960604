package graph

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildRandomGraph creates n nodes on a grid and attempts an edge for each
// (i, j) pair, in order, modulo n.
func buildRandomGraph(n int, pairs []int) (*Store, []Handle) {
	s := NewStore()
	handles := make([]Handle, n)
	for i := range n {
		handles[i] = s.AddNode(float64(i%7)*10, float64(i/7)*10).Handle
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.AddEdge(handles[pairs[i]%n], handles[pairs[i+1]%n])
	}
	return s, handles
}

// TestGraphInvariants checks structural properties that hold for any
// sequence of edge insertions.
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("adjacency is symmetric", prop.ForAll(
		func(n int, pairs []int) bool {
			s, handles := buildRandomGraph(n, pairs)
			for _, a := range handles {
				for b := range s.Neighbors(a) {
					found := false
					for c := range s.Neighbors(b) {
						if c == a {
							found = true
							break
						}
					}
					if !found {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("no self loops and no duplicate pairs", prop.ForAll(
		func(n int, pairs []int) bool {
			s, _ := buildRandomGraph(n, pairs)
			seen := make(map[pairKey]bool)
			for _, e := range s.Edges() {
				if e.A == e.B {
					return false
				}
				k := makePairKey(e.A.index, e.B.index)
				if seen[k] {
					return false
				}
				seen[k] = true
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("degree sum is twice the edge count", prop.ForAll(
		func(n int, pairs []int) bool {
			s, handles := buildRandomGraph(n, pairs)
			degrees := 0
			for _, h := range handles {
				for range s.Neighbors(h) {
					degrees++
				}
			}
			return degrees == 2*s.EdgeCount()
		},
		gen.IntRange(1, 20),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("generated IDs never collide after reset", prop.ForAll(
		func(suffixes []uint16, extra int) bool {
			specs := make([]NodeSpec, 0, len(suffixes))
			used := make(map[string]bool)
			for _, v := range suffixes {
				id := "N" + strconv.FormatUint(uint64(v), 10)
				if used[id] {
					continue
				}
				used[id] = true
				specs = append(specs, NodeSpec{ID: id})
			}
			s := NewStore()
			if err := s.Reset(specs, nil); err != nil {
				return false
			}
			for range extra {
				n := s.AddNode(0, 0)
				if used[n.ID] {
					return false
				}
				used[n.ID] = true
			}
			return true
		},
		gen.SliceOf(gen.UInt16()),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
