// Package editor is the interaction state machine of the graph editor. All
// input arrives as Commands through Controller.Dispatch, which mutates the
// graph and camera and returns a fresh render frame.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graphedit/pkg/archive"
	"github.com/dd0wney/cluso-graphedit/pkg/camera"
	"github.com/dd0wney/cluso-graphedit/pkg/codec"
	"github.com/dd0wney/cluso-graphedit/pkg/graph"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
	"github.com/dd0wney/cluso-graphedit/pkg/metrics"
	"github.com/dd0wney/cluso-graphedit/pkg/pathfind"
	"github.com/dd0wney/cluso-graphedit/pkg/validation"
	"github.com/dd0wney/cluso-graphedit/pkg/visualization"
)

var (
	ErrNoPersistence  = errors.New("no persistence configured")
	ErrUnknownCommand = errors.New("unknown command")
)

// DefaultHitRadius is the pick distance around a node in screen pixels.
const DefaultHitRadius = 10.0

// Persistence stores graph documents by location.
type Persistence interface {
	Save(ctx context.Context, location string, doc codec.Document) (archive.Receipt, error)
	Load(ctx context.Context, location string) (codec.Document, archive.Receipt, error)
}

// Options configures a Controller. Zero values pick defaults.
type Options struct {
	Width, Height float64 // viewport in screen pixels; default 800x600
	HitRadius     float64

	// Graphs with more nodes than this search in the background; results
	// arrive on PathResults. Zero searches synchronously.
	AsyncPathThreshold int

	Persistence Persistence
	Logger      logging.Logger
	Metrics     *metrics.Registry
}

// Controller owns a graph, a camera and the interaction state around them.
// It is not safe for concurrent use; drive it from one goroutine.
type Controller struct {
	store *graph.Store
	cam   *camera.Camera

	selected     graph.Handle
	pathStart    graph.Handle
	pathEnd      graph.Handle
	multiConnect bool
	chain        []graph.Handle

	lastPath []graph.Handle
	lastCost float64

	worker         *pathfind.Worker
	asyncThreshold int
	pending        bool
	pendingRev     uint64

	hitRadius   float64
	persistence Persistence
	logger      logging.Logger
	metrics     *metrics.Registry
	session     string
}

// New creates a controller with an empty graph.
func New(opts Options) (*Controller, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}
	if opts.HitRadius <= 0 {
		opts.HitRadius = DefaultHitRadius
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}

	session := uuid.NewString()
	c := &Controller{
		store:          graph.NewStore(),
		cam:            camera.New(opts.Width, opts.Height),
		asyncThreshold: opts.AsyncPathThreshold,
		hitRadius:      opts.HitRadius,
		persistence:    opts.Persistence,
		logger:         opts.Logger.With(logging.Component("editor"), logging.Session(session)),
		metrics:        opts.Metrics,
		session:        session,
	}

	if opts.AsyncPathThreshold > 0 {
		w, err := pathfind.NewWorker(c.logger)
		if err != nil {
			return nil, err
		}
		c.worker = w
	}
	return c, nil
}

// Session returns the controller's unique session ID.
func (c *Controller) Session() string {
	return c.session
}

// PathResults delivers background search outcomes. Feed each one back as
// ApplyPath. It is nil when background search is disabled.
func (c *Controller) PathResults() <-chan pathfind.Outcome {
	if c.worker == nil {
		return nil
	}
	return c.worker.Results()
}

// Close stops the background search worker.
func (c *Controller) Close() {
	if c.worker != nil {
		c.worker.Close()
	}
}

// Graph exposes the store for read-only use, such as headless inspection.
func (c *Controller) Graph() *graph.Store {
	return c.store
}

// Dispatch applies cmd and returns the resulting frame. On error the frame
// still reflects the current, unchanged, state. ctx bounds persistence and
// path searches, including background ones started by FindPath.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (*visualization.Frame, error) {
	start := time.Now()
	err := c.apply(ctx, cmd)
	c.dropStaleSearch()

	elapsed := time.Since(start)
	c.metrics.RecordCommand(cmd.Name(), elapsed)
	c.metrics.SetGraphSize(c.store.NodeCount(), c.store.EdgeCount())
	c.metrics.SetZoom(c.cam.ZoomLevel())

	if err != nil {
		c.logger.Warn("command failed", logging.Command(cmd.Name()), logging.Error(err))
	} else if _, isTick := cmd.(Tick); !isTick {
		c.logger.Debug("command applied", logging.Command(cmd.Name()), logging.Latency(elapsed))
	}
	return c.Frame(), err
}

func (c *Controller) apply(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case PrimaryClick:
		c.click(cmd.X, cmd.Y)
	case PrimaryDrag:
		if c.store.Live(c.selected) && !c.multiConnect {
			wx, wy := c.cam.ScreenToWorld(cmd.X, cmd.Y)
			c.store.Move(c.selected, wx, wy)
		}
	case SecondaryDrag:
		c.cam.Pan(cmd.DX, cmd.DY)
	case Scroll:
		switch {
		case cmd.Delta > 0:
			c.cam.ZoomAt(1, cmd.X, cmd.Y)
		case cmd.Delta < 0:
			c.cam.ZoomAt(-1, cmd.X, cmd.Y)
		}
	case ToggleMultiConnect:
		c.multiConnect = !c.multiConnect
		c.chain = nil
		c.logger.Debug("multi-connect toggled", logging.Bool("multi_connect", c.multiConnect))
	case SetPathStart:
		if c.store.Live(c.selected) {
			c.pathStart = c.selected
		}
	case SetPathEnd:
		if c.store.Live(c.selected) {
			c.pathEnd = c.selected
		}
	case ConnectSelectedPair:
		if c.store.Live(c.selected) && c.store.Live(c.pathStart) && c.selected != c.pathStart {
			c.store.AddEdge(c.pathStart, c.selected)
			c.pathStart = graph.Handle{}
		}
	case FindPath:
		return c.findPath(ctx)
	case ApplyPath:
		c.applyOutcome(cmd.Outcome)
	case ClearAll:
		c.store.Clear()
		c.resetInteraction()
		c.logger.Info("graph cleared")
	case Save:
		return c.save(ctx, cmd.Location)
	case Load:
		return c.load(ctx, cmd.Location)
	case Tick:
		c.cam.Integrate()
	case Resize:
		if cmd.Width > 0 && cmd.Height > 0 {
			c.cam.Resize(cmd.Width, cmd.Height)
		}
	case Rename:
		return c.rename(cmd.To)
	case DeleteSelected:
		if c.store.Remove(c.selected) {
			c.selected = graph.Handle{}
			c.chain = slices.DeleteFunc(c.chain, func(h graph.Handle) bool { return !c.store.Live(h) })
		}
	case Arrange:
		return c.arrange(cmd.Layout)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return nil
}

// hit returns the first node, in insertion order, whose screen position is
// strictly within the hit radius of (sx, sy).
func (c *Controller) hit(sx, sy float64) (graph.Handle, bool) {
	for _, n := range c.store.Nodes() {
		nx, ny := c.cam.WorldToScreen(n.X, n.Y)
		if math.Hypot(nx-sx, ny-sy) < c.hitRadius {
			return n.Handle, true
		}
	}
	return graph.Handle{}, false
}

func (c *Controller) click(sx, sy float64) {
	h, ok := c.hit(sx, sy)
	if !ok {
		wx, wy := c.cam.ScreenToWorld(sx, sy)
		n := c.store.AddNode(wx, wy)
		h = n.Handle
		c.logger.Debug("node created", logging.NodeID(n.ID),
			logging.Float64("x", wx), logging.Float64("y", wy))
	}
	c.selectNode(h)
}

func (c *Controller) selectNode(h graph.Handle) {
	c.selected = h
	if !c.multiConnect || slices.Contains(c.chain, h) {
		return
	}
	c.chain = append(c.chain, h)
	if n := len(c.chain); n > 1 {
		c.store.AddEdge(c.chain[n-2], c.chain[n-1])
	}
}

func (c *Controller) resetInteraction() {
	c.selected = graph.Handle{}
	c.pathStart = graph.Handle{}
	c.pathEnd = graph.Handle{}
	c.multiConnect = false
	c.chain = nil
	c.lastPath = nil
	c.lastCost = 0
	c.cancelSearch()
}

func (c *Controller) findPath(ctx context.Context) error {
	c.cancelSearch()
	if !c.store.Live(c.pathStart) || !c.store.Live(c.pathEnd) {
		c.lastPath, c.lastCost = nil, 0
		c.metrics.RecordPathfind(metrics.ResultNoPath, 0, 0)
		return nil
	}

	if c.worker != nil && c.store.NodeCount() > c.asyncThreshold {
		snap := c.store.Snapshot()
		if c.worker.Submit(ctx, pathfind.Request{Snapshot: snap, Start: c.pathStart, Goal: c.pathEnd}) {
			c.pending = true
			c.pendingRev = snap.Revision()
			c.logger.Debug("path search queued", logging.Revision(snap.Revision()), logging.Count(c.store.NodeCount()))
			return nil
		}
	}

	start := time.Now()
	res, err := pathfind.FindContext(ctx, c.store, c.pathStart, c.pathEnd)
	if err != nil {
		c.metrics.RecordPathfind(metrics.ResultCancelled, time.Since(start), 0)
		return fmt.Errorf("find path: %w", err)
	}
	c.installPath(res, time.Since(start))
	return nil
}

func (c *Controller) installPath(res pathfind.Result, elapsed time.Duration) {
	c.lastPath, c.lastCost = res.Path, res.Cost
	result := metrics.ResultNoPath
	if res.Found() {
		result = metrics.ResultFound
	}
	c.metrics.RecordPathfind(result, elapsed, len(res.Path))
	c.logger.Debug("path computed",
		logging.Count(len(res.Path)), logging.Float64("cost", res.Cost),
		logging.Int("settled", res.Settled), logging.Latency(elapsed))
}

func (c *Controller) applyOutcome(out pathfind.Outcome) {
	if !c.pending || out.Revision != c.pendingRev || out.Revision != c.store.Revision() {
		c.metrics.RecordPathfind(metrics.ResultStale, out.Elapsed, 0)
		c.logger.Debug("stale path result dropped", logging.Revision(out.Revision))
		return
	}
	c.pending = false
	c.installPath(out.Result, out.Elapsed)
}

func (c *Controller) cancelSearch() {
	if c.pending {
		c.worker.Cancel()
		c.pending = false
	}
}

// dropStaleSearch cancels a background search once the graph it was
// started on has changed.
func (c *Controller) dropStaleSearch() {
	if c.pending && c.store.Revision() != c.pendingRev {
		c.logger.Debug("graph changed during path search", logging.Revision(c.pendingRev))
		c.metrics.RecordPathfind(metrics.ResultCancelled, 0, 0)
		c.cancelSearch()
	}
}

func (c *Controller) save(ctx context.Context, location string) error {
	if c.persistence == nil {
		return ErrNoPersistence
	}
	timer := logging.StartTimer(c.logger, "save", logging.Location(location))
	rec, err := c.persistence.Save(ctx, location, codec.FromStore(c.store))
	timer.EndError(err)
	if err != nil {
		c.metrics.RecordPersistence("save", metrics.StatusError, 0)
		return fmt.Errorf("save %s: %w", location, err)
	}
	c.metrics.RecordPersistence("save", metrics.StatusSuccess, rec.Bytes)
	c.logger.Info("graph saved", logging.Location(rec.Location),
		logging.Count(c.store.NodeCount()), logging.Int("bytes", rec.Bytes))
	return nil
}

func (c *Controller) load(ctx context.Context, location string) error {
	if c.persistence == nil {
		return ErrNoPersistence
	}
	timer := logging.StartTimer(c.logger, "load", logging.Location(location))
	doc, rec, err := c.persistence.Load(ctx, location)
	if err == nil {
		nodes, edges, dropped := doc.Graph()
		if err = c.store.Reset(nodes, edges); err == nil && dropped > 0 {
			c.logger.Warn("dropped edges with unknown endpoints",
				logging.Location(rec.Location), logging.Count(dropped))
		}
	}
	timer.EndError(err)
	if err != nil {
		c.metrics.RecordPersistence("load", metrics.StatusError, 0)
		return fmt.Errorf("load %s: %w", location, err)
	}

	c.resetInteraction()
	c.metrics.RecordPersistence("load", metrics.StatusSuccess, rec.Bytes)
	c.logger.Info("graph loaded", logging.Location(rec.Location),
		logging.Count(c.store.NodeCount()), logging.Int("edges", c.store.EdgeCount()))
	return nil
}

func (c *Controller) rename(name string) error {
	if !c.store.Live(c.selected) {
		return nil
	}
	if err := validation.ValidateNodeName(name); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	c.store.Rename(c.selected, name)
	return nil
}

func (c *Controller) arrange(name string) error {
	st := c.cam.State()
	layout, err := visualization.NewLayout(name, visualization.LayoutConfig{
		Width:  st.Width / st.Zoom,
		Height: st.Height / st.Zoom,
		Seed:   c.store.Revision(),
	})
	if err != nil {
		return err
	}

	ox, oy := c.cam.ScreenToWorld(0, 0)
	positions := layout.ComputeLayout(c.store.Nodes(), c.store.Edges())
	for h, p := range positions {
		c.store.Move(h, ox+p.X, oy+p.Y)
	}
	c.logger.Info("graph arranged", logging.String("layout", name), logging.Count(len(positions)))
	return nil
}

// Frame returns the current render frame without changing anything.
func (c *Controller) Frame() *visualization.Frame {
	return visualization.Build(c.store, c.cam, visualization.State{
		Selected:     c.selected,
		PathStart:    c.pathStart,
		PathEnd:      c.pathEnd,
		MultiConnect: c.multiConnect,
		Chain:        c.chain,
		Path:         c.lastPath,
		PathCost:     c.lastCost,
		PathPending:  c.pending,
	})
}
