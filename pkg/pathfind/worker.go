package pathfind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graphedit/pkg/graph"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
	"github.com/dd0wney/cluso-graphedit/pkg/parallel"
)

// Request asks for a path over a frozen copy of the graph.
type Request struct {
	Snapshot *graph.Snapshot
	Start    graph.Handle
	Goal     graph.Handle
}

// Outcome is a finished background search.
type Outcome struct {
	Result
	Start    graph.Handle
	Goal     graph.Handle
	Revision uint64 // store revision the search ran against
	Elapsed  time.Duration
}

// Worker runs searches off the caller's goroutine. Only the most recent
// request matters: submitting a new one cancels the one in flight, and a
// cancelled search never reports an outcome.
type Worker struct {
	pool    *parallel.WorkerPool
	results chan Outcome
	logger  logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewWorker starts a worker backed by a single-goroutine pool.
func NewWorker(logger logging.Logger) (*Worker, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("pathfind"))

	pool, err := parallel.NewWorkerPool(1, parallel.WithPanicHandler(func(r any) {
		logger.Error("path search panicked", logging.Any("panic", fmt.Sprint(r)))
	}))
	if err != nil {
		return nil, fmt.Errorf("start path worker: %w", err)
	}

	return &Worker{
		pool:    pool,
		results: make(chan Outcome, 1),
		logger:  logger,
	}, nil
}

// Results delivers outcomes of searches that were not superseded.
func (w *Worker) Results() <-chan Outcome {
	return w.results
}

// Submit cancels any running search and queues req. It returns false once
// the worker is closed.
func (w *Worker) Submit(ctx context.Context, req Request) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	if w.cancel != nil {
		w.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	return w.pool.Submit(func() {
		w.run(runCtx, req)
	})
}

func (w *Worker) run(ctx context.Context, req Request) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	res, err := FindContext(ctx, req.Snapshot, req.Start, req.Goal)
	if err != nil || ctx.Err() != nil {
		w.logger.Debug("path search superseded", logging.Revision(req.Snapshot.Revision()))
		return
	}

	out := Outcome{
		Result:   res,
		Start:    req.Start,
		Goal:     req.Goal,
		Revision: req.Snapshot.Revision(),
		Elapsed:  time.Since(start),
	}
	select {
	case w.results <- out:
	case <-ctx.Done():
	}
}

// Cancel stops the running search, if any.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// Close cancels outstanding work, waits for the pool to drain and closes
// the results channel.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.pool.Close()
	close(w.results)
}
