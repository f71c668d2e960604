// Package codec converts between a graph and its saved document form.
//
// A document lists nodes with identifier, display name and position, and
// edges as pairs of node identifiers:
//
//	{"nodes":[{"id":"N0","name":"N0","x":1,"y":2}],"edges":[{"aId":"N0","bId":"N1"}]}
//
// Edge weights are not stored; they are recomputed from node positions
// when a document is turned back into a graph.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
	"github.com/dd0wney/cluso-graphedit/pkg/validation"
)

// ErrMalformed wraps every decoding and validation failure.
var ErrMalformed = errors.New("malformed graph document")

// Format selects the byte encoding of a document.
type Format int

const (
	// FormatJSON is indented UTF-8 JSON.
	FormatJSON Format = iota
	// FormatSnappy is the same JSON, snappy block-compressed.
	FormatSnappy
)

// Recognised file suffixes.
const (
	ExtJSON   = ".json"
	ExtSnappy = ".json.sz"
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatSnappy:
		return "json+snappy"
	default:
		return "unknown"
	}
}

// Document is the saved form of a graph.
type Document struct {
	Nodes []NodeRecord `json:"nodes" validate:"unique=ID,dive"`
	Edges []EdgeRecord `json:"edges" validate:"dive"`
}

// NodeRecord is one saved node.
type NodeRecord struct {
	ID   string  `json:"id" validate:"required,max=128"`
	Name string  `json:"name" validate:"max=256"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// EdgeRecord is one saved edge, by endpoint IDs.
type EdgeRecord struct {
	AID string `json:"aId"`
	BID string `json:"bId"`
}

// FromStore captures the nodes and edges of s in insertion order.
func FromStore(s *graph.Store) Document {
	nodes := s.Nodes()
	doc := Document{
		Nodes: make([]NodeRecord, 0, len(nodes)),
		Edges: make([]EdgeRecord, 0, s.EdgeCount()),
	}
	ids := make(map[graph.Handle]string, len(nodes))
	for _, n := range nodes {
		ids[n.Handle] = n.ID
		doc.Nodes = append(doc.Nodes, NodeRecord{ID: n.ID, Name: n.Name, X: n.X, Y: n.Y})
	}
	for _, e := range s.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{AID: ids[e.A], BID: ids[e.B]})
	}
	return doc
}

// Graph converts the document into Reset input. Edges naming an ID that no
// node carries are left out; dropped reports how many.
func (d Document) Graph() (nodes []graph.NodeSpec, edges []graph.EdgeSpec, dropped int) {
	known := make(map[string]struct{}, len(d.Nodes))
	nodes = make([]graph.NodeSpec, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		known[n.ID] = struct{}{}
		nodes = append(nodes, graph.NodeSpec{ID: n.ID, Name: n.Name, X: n.X, Y: n.Y})
	}

	edges = make([]graph.EdgeSpec, 0, len(d.Edges))
	for _, e := range d.Edges {
		_, okA := known[e.AID]
		_, okB := known[e.BID]
		if !okA || !okB {
			dropped++
			continue
		}
		edges = append(edges, graph.EdgeSpec{A: e.AID, B: e.BID})
	}
	return nodes, edges, dropped
}

// Marshal encodes doc in the given format.
func Marshal(doc Document, format Format) ([]byte, error) {
	if doc.Nodes == nil {
		doc.Nodes = []NodeRecord{}
	}
	if doc.Edges == nil {
		doc.Edges = []EdgeRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph document: %w", err)
	}
	data = append(data, '\n')

	switch format {
	case FormatJSON:
		return data, nil
	case FormatSnappy:
		return snappy.Encode(nil, data), nil
	default:
		return nil, fmt.Errorf("encode graph document: unsupported format %d", format)
	}
}

// Unmarshal decodes and validates a document. Every failure wraps
// ErrMalformed. Unknown JSON fields are ignored; a missing nodes or edges
// array reads as empty.
func Unmarshal(data []byte, format Format) (Document, error) {
	switch format {
	case FormatJSON:
	case FormatSnappy:
		raw, err := snappy.Decode(nil, data)
		if err != nil {
			return Document{}, fmt.Errorf("%w: snappy: %v", ErrMalformed, err)
		}
		data = raw
	default:
		return Document{}, fmt.Errorf("%w: unsupported format %d", ErrMalformed, format)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validation.Struct(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// FormatFor picks the format matching a file name's suffix. Names without a
// recognised suffix are treated as JSON.
func FormatFor(name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ExtSnappy) {
		return FormatSnappy
	}
	return FormatJSON
}

// EnsureExtension appends ".json" to name unless it already ends in a
// recognised suffix (".json" or ".json.sz", case-insensitive).
func EnsureExtension(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ExtJSON) || strings.HasSuffix(lower, ExtSnappy) {
		return name
	}
	return name + ExtJSON
}
