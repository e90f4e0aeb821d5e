// Package reconcile keeps a terminal's seat map converged on the ledger's sold set.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"boxoffice/internal/inventory"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
)

const DefaultInterval = 5 * time.Second

// SalesLister is the read side of the ledger gateway
type SalesLister interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
}

// Target is what the engine needs from the seat store
type Target interface {
	Reconcile(sold inventory.SeatSet) inventory.ReconcileResult
	Occupancy() models.OccupancyResponse
}

// Engine periodically pulls every sale from the ledger and overwrites seat status
type Engine struct {
	ledger   SalesLister
	store    Target
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration

	trigger chan struct{}
	done    chan bool
	stopped chan struct{}

	mu      sync.Mutex
	running bool
	runMu   sync.Mutex
}

// NewEngine creates an engine; a zero interval means DefaultInterval
func NewEngine(ledger SalesLister, store Target, m *metrics.Metrics, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		ledger:   ledger,
		store:    store,
		metrics:  m,
		interval: interval,
		timeout:  interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start runs one pass immediately and then one per tick or Trigger until Stop or ctx is done
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.done = make(chan bool)
	e.stopped = make(chan struct{})
	done, stopped := e.done, e.stopped
	e.mu.Unlock()

	slog.Info("Starting reconciliation engine", "interval", e.interval)

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		e.tick(ctx)
		for {
			select {
			case <-ticker.C:
				e.tick(ctx)
			case <-e.trigger:
				e.tick(ctx)
			case <-done:
				slog.Info("Reconciliation engine stopped")
				return
			case <-ctx.Done():
				slog.Info("Reconciliation engine stopped", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight pass. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.done)
	stopped := e.stopped
	e.mu.Unlock()

	<-stopped
}

// Trigger asks for a pass as soon as possible. Bursts collapse into one pass.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

func (e *Engine) tick(ctx context.Context) {
	if _, err := e.RunOnce(ctx); err != nil {
		slog.Error("Reconciliation skipped, keeping current seat map", "error", err)
	}
}

// RunOnce fetches all sales and reconciles the store. A failed fetch leaves the store untouched.
func (e *Engine) RunOnce(ctx context.Context) (inventory.ReconcileResult, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	sales, err := e.ledger.ListSales(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ReconcileFailures.Inc()
		}
		return inventory.ReconcileResult{}, fmt.Errorf("failed to list sales: %w", err)
	}

	sold := SoldSet(sales)
	result := e.store.Reconcile(sold)

	if len(result.Conflicts) > 0 {
		slog.Warn("Selected seats were sold by another terminal", "seats", result.Conflicts)
	}
	if len(result.Unknown) > 0 {
		slog.Warn("Ledger reports seats outside the venue layout", "seats", result.Unknown)
	}
	slog.Debug("Reconciliation completed",
		"sales", len(sales),
		"sold", result.Sold,
		"reopened", result.Reopened,
		"duration", time.Since(start))

	if e.metrics != nil {
		e.metrics.ReconcileRuns.Inc()
		e.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
		e.metrics.Conflicts.Add(float64(len(result.Conflicts)))
		e.metrics.UnknownSeats.Add(float64(len(result.Unknown)))
		e.metrics.ObserveOccupancy(e.store.Occupancy())
	}

	return result, nil
}

// SoldSet flattens the seat lists of all sales
func SoldSet(sales []models.Sale) inventory.SeatSet {
	sold := make(inventory.SeatSet)
	for _, sale := range sales {
		for _, id := range sale.Seats {
			sold[id] = struct{}{}
		}
	}
	return sold
}

// Interval returns the period between scheduled passes
func (e *Engine) Interval() time.Duration {
	return e.interval
}
