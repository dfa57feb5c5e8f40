// Package worker runs the background jobs of the expense assistant.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Worker is a background job with an explicit lifecycle
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// ErrGroupRunning is returned when Start is called twice
var ErrGroupRunning = errors.New("worker group already running")

// Group starts and stops a fixed set of workers together. Only workers whose
// Start succeeded are stopped again.
type Group struct {
	logger *zap.Logger

	mu      sync.RWMutex
	workers []Worker
	started map[string]bool
	running bool
	cancel  context.CancelFunc
}

// NewGroup creates an empty worker group
func NewGroup(logger *zap.Logger) *Group {
	return &Group{
		logger:  logger,
		started: make(map[string]bool),
	}
}

// Add registers w. Workers added while the group runs start on the next Start.
func (g *Group) Add(w Worker) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workers = append(g.workers, w)
	g.logger.Debug("Worker added", zap.String("worker", w.Name()))
}

// Start launches every worker under a context derived from ctx. A failing
// worker does not prevent the others from starting; all failures are joined.
func (g *Group) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return ErrGroupRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.running = true

	var errs []error
	for _, w := range g.workers {
		if err := w.Start(runCtx); err != nil {
			g.logger.Error("Worker failed to start", zap.String("worker", w.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
			continue
		}
		g.started[w.Name()] = true
	}

	g.logger.Info("Workers started",
		zap.Int("started", len(g.started)),
		zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// Stop cancels the shared context and stops the started workers. Calling
// Stop on an idle group is a no-op.
func (g *Group) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return nil
	}
	g.running = false
	g.cancel()

	var errs []error
	for _, w := range g.workers {
		if !g.started[w.Name()] {
			continue
		}
		delete(g.started, w.Name())
		if err := w.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}
	if len(errs) > 0 {
		g.logger.Error("Workers stopped with errors", zap.Error(errors.Join(errs...)))
	}
	return errors.Join(errs...)
}

// Running reports whether the group has been started and not stopped
func (g *Group) Running() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

// Active returns the names of the workers currently running, sorted
func (g *Group) Active() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.started))
	for name := range g.started {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size is the number of registered workers
func (g *Group) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.workers)
}
