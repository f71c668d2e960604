package graph

import "iter"

// Snapshot is an immutable copy of a Store at one revision. It is safe to
// read from any goroutine.
type Snapshot struct {
	revision uint64
	nodes    []Node
	index    map[Handle]int
	adj      map[Handle][]neighbor
}

// Snapshot copies the current graph.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{
		revision: s.revision,
		nodes:    s.Nodes(),
		index:    make(map[Handle]int, len(s.order)),
		adj:      make(map[Handle][]neighbor, len(s.order)),
	}
	for i, n := range snap.nodes {
		snap.index[n.Handle] = i
	}
	for _, e := range s.edges {
		snap.adj[e.A] = append(snap.adj[e.A], neighbor{to: e.B, weight: e.Weight})
		snap.adj[e.B] = append(snap.adj[e.B], neighbor{to: e.A, weight: e.Weight})
	}
	return snap
}

// Revision returns the store revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// Live reports whether h named a live node when the snapshot was taken.
func (s *Snapshot) Live(h Handle) bool {
	_, ok := s.index[h]
	return ok
}

// Node returns the node named by h.
func (s *Snapshot) Node(h Handle) (Node, bool) {
	i, ok := s.index[h]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (s *Snapshot) Nodes() []Node {
	return s.nodes
}

// Adjacent yields each neighbour of h with the stored edge weight, in
// edge-insertion order.
func (s *Snapshot) Adjacent(h Handle) iter.Seq2[Handle, float64] {
	return func(yield func(Handle, float64) bool) {
		for _, n := range s.adj[h] {
			if !yield(n.to, n.weight) {
				return
			}
		}
	}
}
