package pathfind

import (
	"container/heap"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

type entry struct {
	node graph.Handle
	dist float64
	seq  uint64 // order in which the entry's key was last set
	pos  int
}

// frontier is an indexed binary min-heap keyed by tentative distance.
// Entries are addressable by node, so a shorter distance is applied in
// place with heap.Fix instead of pushing a duplicate. Push, Pop and
// decrease are O(log n). Equal distances pop in FIFO order of seq.
type frontier struct {
	items  []*entry
	byNode map[graph.Handle]*entry
	next   uint64
}

func newFrontier() *frontier {
	return &frontier{byNode: make(map[graph.Handle]*entry)}
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.items[i], f.items[j]
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.seq < b.seq
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.items[i].pos = i
	f.items[j].pos = j
}

func (f *frontier) Push(x any) {
	e := x.(*entry)
	e.pos = len(f.items)
	f.items = append(f.items, e)
	f.byNode[e.node] = e
}

func (f *frontier) Pop() any {
	n := len(f.items)
	e := f.items[n-1]
	f.items[n-1] = nil
	f.items = f.items[:n-1]
	delete(f.byNode, e.node)
	e.pos = -1
	return e
}

func (f *frontier) insert(node graph.Handle, dist float64) {
	heap.Push(f, &entry{node: node, dist: dist, seq: f.stamp()})
}

func (f *frontier) popMin() *entry {
	return heap.Pop(f).(*entry)
}

// lookup returns the queued entry for node, if any.
func (f *frontier) lookup(node graph.Handle) (*entry, bool) {
	e, ok := f.byNode[node]
	return e, ok
}

// decrease lowers the key of a queued entry.
func (f *frontier) decrease(e *entry, dist float64) {
	e.dist = dist
	e.seq = f.stamp()
	heap.Fix(f, e.pos)
}

func (f *frontier) stamp() uint64 {
	s := f.next
	f.next++
	return s
}
