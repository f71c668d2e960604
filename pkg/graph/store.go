package graph

import (
	"iter"
	"strconv"

	"github.com/tidwall/btree"
)

// Store is the in-memory graph: nodes in insertion order, undirected
// weighted edges in insertion order, and the counter that names new nodes.
//
// Nodes live in an arena addressed by generational Handles, so references
// held elsewhere (selection, path anchors) can be checked for liveness
// instead of dangling. A Store is not safe for concurrent use; hand a
// Snapshot to other goroutines.
type Store struct {
	slots []slot
	free  []uint32
	order []uint32 // live slot indices in insertion order

	edges []Edge
	pairs map[pairKey]struct{}
	adj   map[uint32][]int // slot index -> edge indices in insertion order

	ids *btree.BTreeG[idEntry]

	counter  uint64
	revision uint64
}

// NewStore creates an empty store whose first node will be "N0".
func NewStore() *Store {
	return &Store{
		pairs: make(map[pairKey]struct{}),
		adj:   make(map[uint32][]int),
		ids:   btree.NewBTreeG[idEntry](idEntryLess),
	}
}

// AddNode creates a node at world position (x, y). Its ID comes from the
// counter and its name defaults to the ID. IDs still taken by loaded nodes
// are skipped.
func (s *Store) AddNode(x, y float64) Node {
	id := s.allocateID()
	return s.insert(id, id, x, y)
}

func (s *Store) allocateID() string {
	for {
		id := "N" + strconv.FormatUint(s.counter, 10)
		s.counter++
		if _, taken := s.ids.Get(idEntry{id: id}); !taken {
			return id
		}
	}
}

func (s *Store) insert(id, name string, x, y float64) Node {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[idx]
	sl.gen++
	sl.live = true
	sl.node = Node{
		Handle: Handle{index: idx, gen: sl.gen},
		ID:     id,
		Name:   name,
		X:      x,
		Y:      y,
	}

	s.order = append(s.order, idx)
	s.ids.Set(idEntry{id: id, slot: idx})
	s.revision++
	return sl.node
}

// resolve returns the slot for h if h names a live node.
func (s *Store) resolve(h Handle) (*slot, bool) {
	if h.IsZero() || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[h.index]
	if !sl.live || sl.gen != h.gen {
		return nil, false
	}
	return sl, true
}

// Live reports whether h names a node currently in the store.
func (s *Store) Live(h Handle) bool {
	_, ok := s.resolve(h)
	return ok
}

// Node returns the node named by h.
func (s *Store) Node(h Handle) (Node, bool) {
	sl, ok := s.resolve(h)
	if !ok {
		return Node{}, false
	}
	return sl.node, true
}

// Lookup finds a node handle by ID.
func (s *Store) Lookup(id string) (Handle, bool) {
	e, ok := s.ids.Get(idEntry{id: id})
	if !ok {
		return Handle{}, false
	}
	return s.slots[e.slot].node.Handle, true
}

// AddEdge connects a and b with weight equal to their current distance.
// It returns false and changes nothing when a == b, either handle is dead,
// or the pair is already connected in either orientation. The duplicate
// check is a constant-time lookup in an unordered-pair index.
func (s *Store) AddEdge(a, b Handle) (Edge, bool) {
	if a == b {
		return Edge{}, false
	}
	sa, ok := s.resolve(a)
	if !ok {
		return Edge{}, false
	}
	sb, ok := s.resolve(b)
	if !ok {
		return Edge{}, false
	}
	key := makePairKey(a.index, b.index)
	if _, dup := s.pairs[key]; dup {
		return Edge{}, false
	}

	e := Edge{A: a, B: b, Weight: Distance(sa.node, sb.node)}
	ei := len(s.edges)
	s.edges = append(s.edges, e)
	s.pairs[key] = struct{}{}
	s.adj[a.index] = append(s.adj[a.index], ei)
	s.adj[b.index] = append(s.adj[b.index], ei)
	s.revision++
	return e, true
}

// Connected reports whether a and b share an edge.
func (s *Store) Connected(a, b Handle) bool {
	if !s.Live(a) || !s.Live(b) {
		return false
	}
	_, ok := s.pairs[makePairKey(a.index, b.index)]
	return ok
}

// Neighbors yields the nodes adjacent to h in edge-insertion order. The
// sequence is empty for a dead handle and may be ranged over repeatedly.
func (s *Store) Neighbors(h Handle) iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for n := range s.Adjacent(h) {
			if !yield(n) {
				return
			}
		}
	}
}

// Adjacent yields each neighbour of h with the stored weight of the
// connecting edge, in edge-insertion order.
func (s *Store) Adjacent(h Handle) iter.Seq2[Handle, float64] {
	return func(yield func(Handle, float64) bool) {
		if !s.Live(h) {
			return
		}
		for _, ei := range s.adj[h.index] {
			e := s.edges[ei]
			if !yield(e.Other(h), e.Weight) {
				return
			}
		}
	}
}

// Move repositions a node. Weights of incident edges are left as they were.
func (s *Store) Move(h Handle, x, y float64) bool {
	sl, ok := s.resolve(h)
	if !ok {
		return false
	}
	sl.node.X, sl.node.Y = x, y
	s.revision++
	return true
}

// Rename changes a node's display name. The ID is unaffected.
func (s *Store) Rename(h Handle, name string) bool {
	sl, ok := s.resolve(h)
	if !ok {
		return false
	}
	sl.node.Name = name
	s.revision++
	return true
}

// Remove deletes a node and every edge touching it. Handles to the node
// stop resolving.
func (s *Store) Remove(h Handle) bool {
	sl, ok := s.resolve(h)
	if !ok {
		return false
	}
	s.ids.Delete(idEntry{id: sl.node.ID})
	sl.live = false
	sl.node = Node{}
	s.free = append(s.free, h.index)

	for i, idx := range s.order {
		if idx == h.index {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.A != h && e.B != h {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	s.reindexEdges()
	s.revision++
	return true
}

func (s *Store) reindexEdges() {
	clear(s.pairs)
	clear(s.adj)
	for ei, e := range s.edges {
		s.pairs[makePairKey(e.A.index, e.B.index)] = struct{}{}
		s.adj[e.A.index] = append(s.adj[e.A.index], ei)
		s.adj[e.B.index] = append(s.adj[e.B.index], ei)
	}
}

// Nodes returns the live nodes in insertion order.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, s.slots[idx].node)
	}
	return out
}

// Edges returns the edges in insertion order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NodeCount returns the number of live nodes.
func (s *Store) NodeCount() int {
	return len(s.order)
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	return len(s.edges)
}

// IDs yields node IDs in ascending lexical order.
func (s *Store) IDs() iter.Seq[string] {
	return func(yield func(string) bool) {
		s.ids.Scan(func(e idEntry) bool {
			return yield(e.id)
		})
	}
}

// Counter returns the number the next generated ID will try.
func (s *Store) Counter() uint64 {
	return s.counter
}

// Reseed sets the counter used for generated IDs.
func (s *Store) Reseed(n uint64) {
	s.counter = n
}

// Revision increases on every mutation.
func (s *Store) Revision() uint64 {
	return s.revision
}

// Clear removes every node and edge. The ID counter keeps its value, so
// IDs handed out before the clear are not reused.
func (s *Store) Clear() {
	for i := range s.slots {
		if s.slots[i].live {
			s.slots[i].live = false
			s.slots[i].node = Node{}
			s.free = append(s.free, uint32(i))
		}
	}
	s.order = s.order[:0]
	s.edges = s.edges[:0]
	clear(s.pairs)
	clear(s.adj)
	s.ids.Clear()
	s.revision++
}

// Reset replaces the whole graph in one step. Nodes are validated before
// anything changes: IDs must be non-empty and unique. Edges are installed
// with AddEdge semantics, so weights are recomputed from the given
// positions and edges naming unknown IDs, self loops and duplicate pairs
// are skipped. Empty names default to the ID. The counter is reseeded past
// the largest "N<digits>" ID.
func (s *Store) Reset(nodes []NodeSpec, edges []EdgeSpec) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			return &StoreError{Op: "Reset", Index: i, Cause: ErrEmptyID}
		}
		if _, dup := seen[n.ID]; dup {
			return &StoreError{Op: "Reset", ID: n.ID, Index: i, Cause: ErrDuplicateID}
		}
		seen[n.ID] = struct{}{}
	}

	s.Clear()
	for _, n := range nodes {
		name := n.Name
		if name == "" {
			name = n.ID
		}
		s.insert(n.ID, name, n.X, n.Y)
	}
	for _, e := range edges {
		a, ok := s.Lookup(e.A)
		if !ok {
			continue
		}
		b, ok := s.Lookup(e.B)
		if !ok {
			continue
		}
		s.AddEdge(a, b)
	}
	s.counter = SeedFor(nodes)
	return nil
}

// SeedFor returns the smallest counter value that cannot generate any of
// the given IDs: one past the largest numeric suffix of IDs shaped like
// "N<digits>", or zero when there are none.
func SeedFor(nodes []NodeSpec) uint64 {
	var seed uint64
	for _, n := range nodes {
		v, ok := generatedSuffix(n.ID)
		if ok && v+1 > seed {
			seed = v + 1
		}
	}
	return seed
}

func generatedSuffix(id string) (uint64, bool) {
	if len(id) < 2 || id[0] != 'N' {
		return 0, false
	}
	for _, c := range id[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(id[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
