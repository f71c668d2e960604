package main

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-graphedit/pkg/archive"
	"github.com/dd0wney/cluso-graphedit/pkg/graph"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
)

// openGraph loads location into a fresh store. Edges that name missing
// nodes are dropped and counted.
func openGraph(ctx context.Context, arch *archive.Archive, location string, logger logging.Logger) (*graph.Store, archive.Receipt, int, error) {
	doc, rec, err := arch.Load(ctx, location)
	if err != nil {
		return nil, rec, 0, err
	}

	nodes, edges, dropped := doc.Graph()
	s := graph.NewStore()
	if err := s.Reset(nodes, edges); err != nil {
		return nil, rec, 0, fmt.Errorf("load %s: %w", rec.Location, err)
	}
	if dropped > 0 {
		logger.Warn("dangling edges dropped", logging.Location(rec.Location), logging.Count(dropped))
	}
	return s, rec, dropped, nil
}

// resolveNode finds a node by ID, then by display name. Names are not
// unique; the earliest node with the name wins.
func resolveNode(s *graph.Store, ref string) (graph.Node, error) {
	if h, ok := s.Lookup(ref); ok {
		n, _ := s.Node(h)
		return n, nil
	}
	for _, n := range s.Nodes() {
		if n.Name == ref {
			return n, nil
		}
	}
	return graph.Node{}, fmt.Errorf("no node with id or name %q", ref)
}

// components groups nodes into connected components, each in insertion
// order, ordered by their earliest node.
func components(s *graph.Store) [][]graph.Node {
	nodes := s.Nodes()
	comp := make(map[graph.Handle]int, len(nodes))
	count := 0
	for _, root := range nodes {
		if _, ok := comp[root.Handle]; ok {
			continue
		}
		comp[root.Handle] = count
		queue := []graph.Handle{root.Handle}
		for len(queue) > 0 {
			h := queue[0]
			queue = queue[1:]
			for nb := range s.Neighbors(h) {
				if _, ok := comp[nb]; !ok {
					comp[nb] = count
					queue = append(queue, nb)
				}
			}
		}
		count++
	}

	out := make([][]graph.Node, count)
	for _, n := range nodes {
		out[comp[n.Handle]] = append(out[comp[n.Handle]], n)
	}
	return out
}
