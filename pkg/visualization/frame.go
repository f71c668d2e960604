// Package visualization turns editor state into render-ready frames and
// computes automatic layouts.
package visualization

import (
	"encoding/json"
	"fmt"

	"github.com/dd0wney/cluso-graphedit/pkg/camera"
	"github.com/dd0wney/cluso-graphedit/pkg/graph"
)

// Highlight is the render state of a node. Lower values win when a node
// qualifies for several.
type Highlight int

const (
	HighlightSelected Highlight = iota
	HighlightPathStart
	HighlightPathEnd
	HighlightChain
	HighlightNone
)

func (h Highlight) String() string {
	switch h {
	case HighlightSelected:
		return "selected"
	case HighlightPathStart:
		return "path_start"
	case HighlightPathEnd:
		return "path_end"
	case HighlightChain:
		return "chain"
	case HighlightNone:
		return "none"
	}
	return fmt.Sprintf("Highlight(%d)", int(h))
}

// MarshalText encodes the highlight by name.
func (h Highlight) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// NodeView is one node ready to draw.
type NodeView struct {
	Handle    graph.Handle `json:"-"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	World     Position     `json:"world"`
	Screen    Position     `json:"screen"`
	Highlight Highlight    `json:"highlight"`
}

// EdgeView is one edge in screen coordinates. Weight is the stored weight.
type EdgeView struct {
	AID    string   `json:"a_id"`
	BID    string   `json:"b_id"`
	From   Position `json:"from"`
	To     Position `json:"to"`
	Weight float64  `json:"weight"`
}

// Summary is the information line shown under the canvas. The ID fields
// identify nodes for lookups; the Name fields are what users read.
type Summary struct {
	Nodes         int     `json:"nodes"`
	Edges         int     `json:"edges"`
	Selected      string  `json:"selected,omitempty"`
	SelectedName  string  `json:"selected_name,omitempty"`
	MultiConnect  bool    `json:"multi_connect"`
	ChainLength   int     `json:"chain_length"`
	PathStart     string  `json:"path_start,omitempty"`
	PathStartName string  `json:"path_start_name,omitempty"`
	PathEnd       string  `json:"path_end,omitempty"`
	PathEndName   string  `json:"path_end_name,omitempty"`
	PathLength    int     `json:"path_length"`
	PathCost      float64 `json:"path_cost"`
	PathPending   bool    `json:"path_pending"`
	Zoom          float64 `json:"zoom"`
}

// Frame is an immutable picture of the editor.
type Frame struct {
	Nodes     []NodeView   `json:"nodes"`
	Edges     []EdgeView   `json:"edges"`
	PathEdges []EdgeView   `json:"path_edges"`
	Summary   Summary      `json:"summary"`
	Camera    camera.State `json:"camera"`
}

// State is the interaction state a frame depicts.
type State struct {
	Selected     graph.Handle
	PathStart    graph.Handle
	PathEnd      graph.Handle
	MultiConnect bool
	Chain        []graph.Handle
	Path         []graph.Handle
	PathCost     float64
	PathPending  bool
}

// Build projects the store through the camera. Dead handles in st are
// ignored; path segments touching a dead node are skipped.
func Build(s *graph.Store, cam *camera.Camera, st State) *Frame {
	project := func(x, y float64) Position {
		sx, sy := cam.WorldToScreen(x, y)
		return Position{X: sx, Y: sy}
	}

	chain := make(map[graph.Handle]struct{}, len(st.Chain))
	if st.MultiConnect {
		for _, h := range st.Chain {
			chain[h] = struct{}{}
		}
	}

	nodes := s.Nodes()
	f := &Frame{
		Nodes:     make([]NodeView, 0, len(nodes)),
		Edges:     make([]EdgeView, 0, s.EdgeCount()),
		PathEdges: []EdgeView{},
		Camera:    cam.State(),
	}

	for _, n := range nodes {
		f.Nodes = append(f.Nodes, NodeView{
			Handle:    n.Handle,
			ID:        n.ID,
			Name:      n.Name,
			World:     Position{X: n.X, Y: n.Y},
			Screen:    project(n.X, n.Y),
			Highlight: highlightFor(n.Handle, st, chain),
		})
	}

	edgeView := func(a, b graph.Node, w float64) EdgeView {
		return EdgeView{AID: a.ID, BID: b.ID, From: project(a.X, a.Y), To: project(b.X, b.Y), Weight: w}
	}
	for _, e := range s.Edges() {
		a, _ := s.Node(e.A)
		b, _ := s.Node(e.B)
		f.Edges = append(f.Edges, edgeView(a, b, e.Weight))
	}

	for i := 1; i < len(st.Path); i++ {
		a, okA := s.Node(st.Path[i-1])
		b, okB := s.Node(st.Path[i])
		if !okA || !okB {
			continue
		}
		w := graph.Distance(a, b)
		for other, weight := range s.Adjacent(a.Handle) {
			if other == b.Handle {
				w = weight
				break
			}
		}
		f.PathEdges = append(f.PathEdges, edgeView(a, b, w))
	}

	f.Summary = Summary{
		Nodes:         len(nodes),
		Edges:         s.EdgeCount(),
		Selected:      idOf(s, st.Selected),
		SelectedName:  nameOf(s, st.Selected),
		MultiConnect:  st.MultiConnect,
		ChainLength:   len(chain),
		PathStart:     idOf(s, st.PathStart),
		PathStartName: nameOf(s, st.PathStart),
		PathEnd:       idOf(s, st.PathEnd),
		PathEndName:   nameOf(s, st.PathEnd),
		PathLength:    len(st.Path),
		PathCost:      st.PathCost,
		PathPending:   st.PathPending,
		Zoom:          cam.ZoomLevel(),
	}
	return f
}

func highlightFor(h graph.Handle, st State, chain map[graph.Handle]struct{}) Highlight {
	switch h {
	case st.Selected:
		return HighlightSelected
	case st.PathStart:
		return HighlightPathStart
	case st.PathEnd:
		return HighlightPathEnd
	}
	if _, ok := chain[h]; ok {
		return HighlightChain
	}
	return HighlightNone
}

func idOf(s *graph.Store, h graph.Handle) string {
	if n, ok := s.Node(h); ok {
		return n.ID
	}
	return ""
}

func nameOf(s *graph.Store, h graph.Handle) string {
	if n, ok := s.Node(h); ok {
		return n.Name
	}
	return ""
}

// Node returns the view of the node with the given ID.
func (f *Frame) Node(id string) (NodeView, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// ExportJSON exports the frame to JSON
func (f *Frame) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}
