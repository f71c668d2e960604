package graph

import (
	"fmt"
	"math"
)

// Handle addresses a node slot in a Store. A handle stays valid until the
// node it names is removed; after that it never resolves again, even if the
// slot is reused. The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "#none"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

// Node is a point in world space with a stable identifier and an editable
// display name.
type Node struct {
	Handle Handle
	ID     string
	Name   string
	X      float64
	Y      float64
}

// Edge is an undirected connection between two distinct nodes. Weight is the
// Euclidean distance between the endpoints at the moment the edge was made
// and is not updated when either endpoint moves.
type Edge struct {
	A      Handle
	B      Handle
	Weight float64
}

// Other returns the endpoint of e opposite to h.
func (e Edge) Other(h Handle) Handle {
	if e.A == h {
		return e.B
	}
	return e.A
}

// NodeSpec describes a node to install with Reset.
type NodeSpec struct {
	ID   string
	Name string
	X    float64
	Y    float64
}

// EdgeSpec describes an edge to install with Reset, by endpoint ID.
type EdgeSpec struct {
	A string
	B string
}

// Distance returns the Euclidean distance between two nodes.
func Distance(a, b Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

type slot struct {
	node Node
	gen  uint32
	live bool
}

// pairKey identifies an unordered node pair by slot index, lo < hi.
type pairKey struct {
	lo uint32
	hi uint32
}

func makePairKey(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type idEntry struct {
	id   string
	slot uint32
}

func idEntryLess(a, b idEntry) bool {
	return a.id < b.id
}

type neighbor struct {
	to     Handle
	weight float64
}
