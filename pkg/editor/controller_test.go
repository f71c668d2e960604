package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphedit/pkg/archive"
	"github.com/dd0wney/cluso-graphedit/pkg/camera"
	"github.com/dd0wney/cluso-graphedit/pkg/codec"
	"github.com/dd0wney/cluso-graphedit/pkg/graph"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
	"github.com/dd0wney/cluso-graphedit/pkg/metrics"
	"github.com/dd0wney/cluso-graphedit/pkg/visualization"
)

// The default 800x600 viewport maps world (0,0) to screen (400,300).
const cx, cy = 400.0, 300.0

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func dispatch(t *testing.T, c *Controller, cmds ...Command) *visualization.Frame {
	t.Helper()
	var f *visualization.Frame
	for _, cmd := range cmds {
		var err error
		f, err = c.Dispatch(context.Background(), cmd)
		require.NoError(t, err, cmd.Name())
	}
	return f
}

// worldClick clicks on the screen position of world point (x, y) at zoom 1
// with the camera at rest at the origin.
func worldClick(x, y float64) PrimaryClick {
	return PrimaryClick{X: cx + x, Y: cy + y}
}

// triangle builds A(0,0), B(90,0), C(90,120) with A-B and B-C, plus an
// isolated D(-200,-200). Weights are 90 and 120.
func triangle(t *testing.T, c *Controller) (a, b, cc, d graph.Handle) {
	t.Helper()
	f := dispatch(t, c,
		worldClick(0, 0), worldClick(90, 0), worldClick(90, 120), worldClick(-200, -200),
		ToggleMultiConnect{}, worldClick(0, 0), worldClick(90, 0), worldClick(90, 120), ToggleMultiConnect{},
	)
	require.Len(t, f.Nodes, 4)
	require.Equal(t, 2, f.Summary.Edges)
	return f.Nodes[0].Handle, f.Nodes[1].Handle, f.Nodes[2].Handle, f.Nodes[3].Handle
}

func TestClickEmptyCreatesAndSelects(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c, PrimaryClick{X: 450, Y: 250})

	require.Len(t, f.Nodes, 1)
	n := f.Nodes[0]
	assert.Equal(t, "N0", n.ID)
	assert.Equal(t, "N0", n.Name)
	assert.Equal(t, visualization.Position{X: 50, Y: -50}, n.World)
	assert.Equal(t, visualization.HighlightSelected, n.Highlight)
	assert.Equal(t, "N0", f.Summary.Selected)
}

func TestClickHitRadius(t *testing.T) {
	c := newController(t, Options{})
	dispatch(t, c, PrimaryClick{X: cx, Y: cy}, PrimaryClick{X: 0, Y: 0})

	f := dispatch(t, c, PrimaryClick{X: cx + 9.9, Y: cy})
	assert.Len(t, f.Nodes, 2, "click inside the radius selects")
	assert.Equal(t, "N0", f.Summary.Selected)

	f = dispatch(t, c, PrimaryClick{X: cx + 10, Y: cy})
	assert.Len(t, f.Nodes, 3, "the radius is exclusive")
	assert.Equal(t, "N2", f.Summary.Selected)
}

func TestClickFirstNodeWins(t *testing.T) {
	c := newController(t, Options{})
	first, _ := c.store.AddNode(0, 0), c.store.AddNode(2, 0)

	f := dispatch(t, c, PrimaryClick{X: cx + 1, Y: cy})
	assert.Equal(t, first.ID, f.Summary.Selected)
}

func TestMultiConnectChainsInOrder(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c,
		ToggleMultiConnect{},
		worldClick(-100, 0), worldClick(0, 0), worldClick(100, 0),
	)

	require.Len(t, f.Nodes, 3)
	x, y, z := f.Nodes[0].Handle, f.Nodes[1].Handle, f.Nodes[2].Handle
	assert.Equal(t, 2, f.Summary.Edges)
	assert.True(t, c.store.Connected(x, y))
	assert.True(t, c.store.Connected(y, z))
	assert.False(t, c.store.Connected(x, z))
	assert.Equal(t, 3, f.Summary.ChainLength)
	assert.Equal(t, visualization.HighlightChain, f.Nodes[0].Highlight)
	assert.Equal(t, visualization.HighlightSelected, f.Nodes[2].Highlight)

	// Re-clicking a member only selects it.
	f = dispatch(t, c, worldClick(-100, 0))
	assert.Equal(t, 2, f.Summary.Edges)
	assert.Equal(t, 3, f.Summary.ChainLength)
	assert.Equal(t, "N0", f.Summary.Selected)
}

func TestToggleClearsChainBothWays(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c, ToggleMultiConnect{}, worldClick(0, 0), worldClick(100, 0), ToggleMultiConnect{})
	assert.False(t, f.Summary.MultiConnect)
	assert.Zero(t, f.Summary.ChainLength)

	f = dispatch(t, c, ToggleMultiConnect{}, worldClick(200, 0))
	assert.True(t, f.Summary.MultiConnect)
	assert.Equal(t, 1, f.Summary.ChainLength)
	assert.Equal(t, 1, f.Summary.Edges, "a fresh chain does not link to the old one")
}

func TestDragMovesSelectionWithStaleWeight(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c,
		worldClick(0, 0), SetPathStart{},
		worldClick(30, 40), ConnectSelectedPair{},
		PrimaryDrag{X: cx + 60, Y: cy + 80},
	)

	assert.Equal(t, visualization.Position{X: 60, Y: 80}, f.Nodes[1].World)
	require.Len(t, f.Edges, 1)
	assert.InDelta(t, 50.0, f.Edges[0].Weight, 1e-9, "weight is fixed at creation")
}

func TestDragIgnoredInMultiConnectOrWithoutSelection(t *testing.T) {
	c := newController(t, Options{})
	n := c.store.AddNode(0, 0)

	dispatch(t, c, PrimaryDrag{X: 0, Y: 0})
	got, _ := c.store.Node(n.Handle)
	assert.Equal(t, 0.0, got.X)

	dispatch(t, c, ToggleMultiConnect{}, worldClick(0, 0), PrimaryDrag{X: 0, Y: 0})
	got, _ = c.store.Node(n.Handle)
	assert.Equal(t, 0.0, got.X)
}

func TestSecondaryDragPansWithInertia(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c, SecondaryDrag{DX: 10, DY: 0})
	assert.InDelta(t, 8.0, f.Camera.VX, 1e-9)
	assert.Zero(t, f.Camera.X, "position moves only on tick")

	f = dispatch(t, c, Tick{})
	assert.InDelta(t, 8.0, f.Camera.X, 1e-9)
	assert.InDelta(t, 8.0*camera.Damping, f.Camera.VX, 1e-9)
}

func TestScrollZoomStaysBounded(t *testing.T) {
	c := newController(t, Options{})

	var f *visualization.Frame
	for range 100 {
		f = dispatch(t, c, Scroll{Delta: 3, X: 100, Y: 100})
	}
	assert.Equal(t, camera.MaxZoom, f.Summary.Zoom)

	for range 200 {
		f = dispatch(t, c, Scroll{Delta: -1, X: 700, Y: 500})
	}
	assert.Equal(t, camera.MinZoom, f.Summary.Zoom)

	f = dispatch(t, c, Scroll{Delta: 0, X: 0, Y: 0})
	assert.Equal(t, camera.MinZoom, f.Summary.Zoom)
}

func TestScrollKeepsPointerFixed(t *testing.T) {
	c := newController(t, Options{})
	c.store.AddNode(100, 50)

	f := dispatch(t, c, Scroll{Delta: 1, X: cx + 100, Y: cy + 50})

	assert.InDelta(t, cx+100, f.Nodes[0].Screen.X, 1e-9)
	assert.InDelta(t, cy+50, f.Nodes[0].Screen.Y, 1e-9)
	assert.InDelta(t, camera.ZoomStep, f.Summary.Zoom, 1e-12)
}

func TestAnchorsNeedSelection(t *testing.T) {
	c := newController(t, Options{})
	c.store.AddNode(0, 0)

	f := dispatch(t, c, SetPathStart{}, SetPathEnd{})
	assert.Empty(t, f.Summary.PathStart)
	assert.Empty(t, f.Summary.PathEnd)

	f = dispatch(t, c, worldClick(0, 0), SetPathStart{}, SetPathEnd{})
	assert.Equal(t, "N0", f.Summary.PathStart)
	assert.Equal(t, "N0", f.Summary.PathEnd)
}

func TestConnectSelectedPair(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c, worldClick(0, 0), SetPathStart{}, ConnectSelectedPair{})
	assert.Zero(t, f.Summary.Edges, "selection equal to start is a no-op")
	assert.Equal(t, "N0", f.Summary.PathStart)

	f = dispatch(t, c, worldClick(100, 0), ConnectSelectedPair{})
	assert.Equal(t, 1, f.Summary.Edges)
	assert.Empty(t, f.Summary.PathStart, "start anchor is consumed")
}

func TestFindPathScenario(t *testing.T) {
	c := newController(t, Options{})
	a, b, cc, _ := triangle(t, c)

	f := dispatch(t, c, worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{})

	assert.Equal(t, []graph.Handle{a, b, cc}, c.lastPath)
	assert.InDelta(t, 210.0, f.Summary.PathCost, 1e-9)
	assert.Equal(t, 3, f.Summary.PathLength)
	require.Len(t, f.PathEdges, 2)
	assert.Equal(t, "N0", f.PathEdges[0].AID)
	assert.Equal(t, "N2", f.PathEdges[1].BID)
}

func TestFindPathUnreachableOrUnset(t *testing.T) {
	c := newController(t, Options{})
	triangle(t, c)

	f := dispatch(t, c, worldClick(0, 0), SetPathStart{}, worldClick(-200, -200), SetPathEnd{}, FindPath{})
	assert.Empty(t, c.lastPath)
	assert.Zero(t, f.Summary.PathLength)
	assert.Empty(t, f.PathEdges)

	// A found path is replaced by an empty one when an anchor goes away.
	f = dispatch(t, c, worldClick(90, 120), SetPathEnd{}, FindPath{})
	require.Equal(t, 3, f.Summary.PathLength)
	f = dispatch(t, c, worldClick(0, 0), DeleteSelected{}, FindPath{})
	assert.Zero(t, f.Summary.PathLength)
}

func TestClearAll(t *testing.T) {
	c := newController(t, Options{})
	triangle(t, c)
	dispatch(t, c,
		worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{},
		ToggleMultiConnect{}, worldClick(0, 0),
	)

	f := dispatch(t, c, ClearAll{})

	assert.Empty(t, f.Nodes)
	assert.Empty(t, f.Edges)
	assert.Empty(t, f.PathEdges)
	assert.Equal(t, visualization.Summary{Zoom: 1}, f.Summary)
	assert.Empty(t, c.chain)
	assert.Empty(t, c.lastPath)

	// The ID counter keeps counting.
	f = dispatch(t, c, worldClick(0, 0))
	assert.Equal(t, "N4", f.Nodes[0].ID)
}

func TestToggleMultiConnectLogs(t *testing.T) {
	var buf bytes.Buffer
	c := newController(t, Options{Logger: logging.NewJSONLogger(&buf, logging.DebugLevel)})
	dispatch(t, c, ToggleMultiConnect{})

	var entry logging.LogEntry
	for line := range bytes.Lines(buf.Bytes()) {
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry.Message == "multi-connect toggled" {
			break
		}
	}
	assert.Equal(t, "multi-connect toggled", entry.Message)
	assert.Equal(t, true, entry.Fields["multi_connect"])
	assert.Equal(t, "editor", entry.Fields["component"])
}

func TestRename(t *testing.T) {
	c := newController(t, Options{})

	_, err := c.Dispatch(context.Background(), Rename{To: "ignored"})
	require.NoError(t, err, "rename without selection is a no-op")

	dispatch(t, c, worldClick(0, 0))
	before := c.Frame()
	f, err := c.Dispatch(context.Background(), Rename{To: "   "})
	require.Error(t, err)
	assert.Equal(t, before, f)

	f = dispatch(t, c, Rename{To: "depot"})
	assert.Equal(t, "depot", f.Nodes[0].Name)
	assert.Equal(t, "N0", f.Nodes[0].ID)
	assert.Equal(t, "N0", f.Summary.Selected)
	assert.Equal(t, "depot", f.Summary.SelectedName)

	long := strings.Repeat("東", 100)
	f = dispatch(t, c, Rename{To: long})
	assert.Equal(t, long, f.Summary.SelectedName, "length counts characters, not bytes")
}

func TestDeleteSelected(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c,
		ToggleMultiConnect{}, worldClick(0, 0), worldClick(100, 0), SetPathStart{}, DeleteSelected{},
	)

	assert.Len(t, f.Nodes, 1)
	assert.Zero(t, f.Summary.Edges)
	assert.Empty(t, f.Summary.Selected)
	assert.Empty(t, f.Summary.PathStart, "anchor on a removed node reads as unset")
	assert.Equal(t, 1, f.Summary.ChainLength)

	// The chain continues from the surviving member.
	f = dispatch(t, c, worldClick(0, 100))
	assert.Equal(t, 1, f.Summary.Edges)
}

func TestResize(t *testing.T) {
	c := newController(t, Options{})

	f := dispatch(t, c, Resize{Width: 1000, Height: 500})
	assert.Equal(t, 1000.0, f.Camera.Width)

	f = dispatch(t, c, Resize{Width: 0, Height: 500})
	assert.Equal(t, 1000.0, f.Camera.Width, "non-positive sizes are ignored")
}

func TestArrange(t *testing.T) {
	c := newController(t, Options{})
	for i := range 5 {
		c.store.AddNode(float64(i), float64(i))
	}
	dispatch(t, c, Scroll{Delta: 1, X: 0, Y: 0}, SecondaryDrag{DX: 30, DY: -20}, Tick{})

	for _, name := range visualization.LayoutNames {
		f := dispatch(t, c, Arrange{Layout: name})
		for _, n := range f.Nodes {
			assert.True(t, n.Screen.X >= -1e-6 && n.Screen.X <= 800+1e-6, "%s: x %v", name, n.Screen.X)
			assert.True(t, n.Screen.Y >= -1e-6 && n.Screen.Y <= 600+1e-6, "%s: y %v", name, n.Screen.Y)
		}
	}

	_, err := c.Dispatch(context.Background(), Arrange{Layout: "spiral"})
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := newController(t, Options{Persistence: archive.New(dir)})
	triangle(t, c)
	dispatch(t, c, worldClick(0, 0), Rename{To: "depot"}, Save{Location: "city"})
	require.FileExists(t, filepath.Join(dir, "city.json"))

	other := newController(t, Options{Persistence: archive.New(dir)})
	dispatch(t, other, worldClick(300, 0), SetPathStart{}, ToggleMultiConnect{})

	f := dispatch(t, other, Load{Location: "city.json"})

	require.Len(t, f.Nodes, 4)
	assert.Equal(t, 2, f.Summary.Edges)
	assert.Equal(t, "depot", f.Nodes[0].Name)
	assert.Equal(t, visualization.Position{X: 90, Y: 120}, f.Nodes[2].World)
	assert.Equal(t, visualization.Summary{Nodes: 4, Edges: 2, Zoom: 1}, f.Summary,
		"load clears selection, anchors and chain")
}

func TestSaveCompressed(t *testing.T) {
	dir := t.TempDir()
	c := newController(t, Options{Persistence: archive.New(dir)})
	triangle(t, c)

	dispatch(t, c, Save{Location: "city.json.sz"}, ClearAll{}, Load{Location: "city.json.sz"})
	assert.Equal(t, 4, c.store.NodeCount())
	assert.NoFileExists(t, filepath.Join(dir, "city.json.sz.json"))
}

func TestLoadReseedsCounter(t *testing.T) {
	dir := t.TempDir()
	doc := `{"nodes":[{"id":"N3","name":"a","x":0,"y":0},{"id":"hub","name":"","x":5,"y":5},{"id":"N7","name":"b","x":9,"y":9}],
		"edges":[{"aId":"N3","bId":"N7"},{"aId":"N3","bId":"ghost"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g.json"), []byte(doc), 0o644))

	c := newController(t, Options{Persistence: archive.New(dir)})
	f := dispatch(t, c, Load{Location: "g.json"})

	assert.Equal(t, 1, f.Summary.Edges, "dangling edge dropped")
	n, ok := f.Node("hub")
	require.True(t, ok)
	assert.Equal(t, "hub", n.Name, "empty name defaults to the ID")

	f = dispatch(t, c, worldClick(200, 200))
	assert.Equal(t, "N8", f.Nodes[3].ID)
}

func TestLoadKeepsLocationAsWritten(t *testing.T) {
	dir := t.TempDir()
	doc := `{"nodes":[{"id":"N0","name":"a","x":0,"y":0},{"id":"N1","name":"b","x":3,"y":4}],"edges":[{"aId":"N0","bId":"N1"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.txt"), []byte(doc), 0o644))

	c := newController(t, Options{Persistence: archive.New(dir)})
	f := dispatch(t, c, Load{Location: "graph.txt"})
	assert.Equal(t, 2, f.Summary.Nodes)
	assert.Equal(t, 1, f.Summary.Edges)

	_, err := c.Dispatch(context.Background(), Load{Location: "graph"})
	assert.ErrorIs(t, err, archive.ErrNotFound, "no suffix is guessed on load")
}

func TestLoadFailureLeavesStateUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"nodes":[{"id":"A"},{"id":"A"}]}`), 0o644))

	c := newController(t, Options{Persistence: archive.New(dir)})
	triangle(t, c)
	dispatch(t, c,
		worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{},
		ToggleMultiConnect{}, worldClick(0, 0),
	)
	before := c.Frame()

	tests := []struct {
		location string
		target   error
	}{
		{"bad.json", codec.ErrMalformed},
		{"missing.json", archive.ErrNotFound},
		{"s3://bucket/key", archive.ErrNoObjectStore},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			f, err := c.Dispatch(context.Background(), Load{Location: tt.location})
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, before, f)
		})
	}
}

type failingPersistence struct{ err error }

func (p failingPersistence) Save(context.Context, string, codec.Document) (archive.Receipt, error) {
	return archive.Receipt{}, p.err
}

func (p failingPersistence) Load(context.Context, string) (codec.Document, archive.Receipt, error) {
	return codec.Document{}, archive.Receipt{}, p.err
}

func TestSaveFailureKeepsGraph(t *testing.T) {
	diskFull := errors.New("disk full")
	c := newController(t, Options{Persistence: failingPersistence{err: diskFull}})
	triangle(t, c)
	before := c.Frame()

	f, err := c.Dispatch(context.Background(), Save{Location: "g"})
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, before, f)
}

func TestNoPersistence(t *testing.T) {
	c := newController(t, Options{})

	_, err := c.Dispatch(context.Background(), Save{Location: "g"})
	assert.ErrorIs(t, err, ErrNoPersistence)
	_, err = c.Dispatch(context.Background(), Load{Location: "g"})
	assert.ErrorIs(t, err, ErrNoPersistence)
}

func waitOutcome(t *testing.T, c *Controller) (ApplyPath, bool) {
	t.Helper()
	select {
	case out, ok := <-c.PathResults():
		return ApplyPath{Outcome: out}, ok
	case <-time.After(5 * time.Second):
		return ApplyPath{}, false
	}
}

func TestBackgroundFindPath(t *testing.T) {
	c := newController(t, Options{AsyncPathThreshold: 2})
	require.NotNil(t, c.PathResults())
	a, b, cc, _ := triangle(t, c)

	f := dispatch(t, c, worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{})
	assert.True(t, f.Summary.PathPending)
	assert.Zero(t, f.Summary.PathLength)

	apply, ok := waitOutcome(t, c)
	require.True(t, ok, "no outcome delivered")

	f = dispatch(t, c, apply)
	assert.False(t, f.Summary.PathPending)
	assert.Equal(t, []graph.Handle{a, b, cc}, c.lastPath)
	assert.InDelta(t, 210.0, f.Summary.PathCost, 1e-9)
}

func TestBackgroundFindPathDroppedOnEdit(t *testing.T) {
	c := newController(t, Options{AsyncPathThreshold: 2})
	triangle(t, c)

	dispatch(t, c, worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{})
	f := dispatch(t, c, worldClick(300, 0))
	assert.False(t, f.Summary.PathPending, "editing the graph cancels the search")

	// A result that slipped out before the cancel must not be installed.
	select {
	case out := <-c.PathResults():
		f = dispatch(t, c, ApplyPath{Outcome: out})
	case <-time.After(100 * time.Millisecond):
	}
	assert.Zero(t, f.Summary.PathLength)
	assert.Empty(t, c.lastPath)
}

func TestSmallGraphSearchesSynchronously(t *testing.T) {
	c := newController(t, Options{AsyncPathThreshold: 10})
	triangle(t, c)

	f := dispatch(t, c, worldClick(0, 0), SetPathStart{}, worldClick(90, 120), SetPathEnd{}, FindPath{})
	assert.False(t, f.Summary.PathPending)
	assert.Equal(t, 3, f.Summary.PathLength)
}

func TestDispatchRecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	c := newController(t, Options{Metrics: reg})

	dispatch(t, c, worldClick(0, 0), worldClick(100, 0), Tick{}, Tick{})

	var m dto.Metric
	require.NoError(t, reg.CommandsTotal.WithLabelValues("tick").Write(&m))
	assert.Equal(t, 2.0, m.Counter.GetValue())

	require.NoError(t, reg.GraphNodes.Write(&m))
	assert.Equal(t, 2.0, m.Gauge.GetValue())
}

func TestSessionIsUnique(t *testing.T) {
	a := newController(t, Options{})
	b := newController(t, Options{})
	assert.NotEmpty(t, a.Session())
	assert.NotEqual(t, a.Session(), b.Session())
}
