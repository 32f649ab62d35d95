// Package simulation applies production shocks to a yearly trade snapshot
// and propagates the effect one hop through outgoing trade flows.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/idhash"
	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/snapshot"
	"food-trade-twin/internal/storage"
)

// Engine errors
var (
	// ErrStoreUnavailable wraps any failure to fetch the snapshot.
	// The engine never retries; the caller may reconnect and retry.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrComputation wraps malformed snapshot data or traversal failures.
	ErrComputation = errors.New("simulation computation failed")
)

// Engine runs perturbation simulations against snapshots from a store.
// It holds no mutable state; concurrent calls never share a graph.
type Engine struct {
	fetcher      storage.SnapshotFetcher
	fetchTimeout time.Duration
	logger       *log.Logger
}

// EngineOptions contains configuration for creating an Engine.
type EngineOptions struct {
	Fetcher      storage.SnapshotFetcher
	FetchTimeout time.Duration // bounds the store read only; 0 means no extra bound
	Logger       *log.Logger
}

// NewEngine creates a simulation engine.
func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		fetcher:      opts.Fetcher,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
	}
}

// RunSimulation executes one perturbation.
// Steps:
//  1. Fetch the snapshot for p.Year
//  2. Load it into a private in-memory copy
//  3. Apply the shock to p.Area (unknown area is a no-op)
//  4. Propagate one hop through outgoing flows matching p.Commodity
//  5. Return every node and edge, affected or not
//
// Either a full result or an error is returned, never a partial result.
func (e *Engine) RunSimulation(ctx context.Context, p domain.Perturbation) (*domain.SimulationResult, error) {
	start := time.Now()
	runID := idhash.ComputeRunID(p)

	if p.ImportChangePct != 0 || p.ClimateStress != 0 || p.PolicyRestriction {
		e.logger.Printf("run %s: import_change=%.2f climate_stress=%.2f policy_restriction=%t are reserved and not applied",
			runID, p.ImportChangePct, p.ClimateStress, p.PolicyRestriction)
	}

	// 1. Fetch snapshot
	snap, err := e.fetch(ctx, p.Year)
	if err != nil {
		outcome := "computation_error"
		switch {
		case errors.Is(err, ErrStoreUnavailable):
			outcome = "store_unavailable"
		case ctx.Err() != nil:
			outcome = "canceled"
		}
		observability.RecordSimulation(outcome, time.Since(start).Seconds(), 0)
		e.logger.Printf("run %s: %v", runID, err)
		return nil, err
	}

	// 2-4. Perturb and propagate
	applied, err := propagate(snap, p)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrComputation, err)
		observability.RecordSimulation("computation_error", time.Since(start).Seconds(), 0)
		e.logger.Printf("run %s: %v", runID, err)
		return nil, err
	}

	// 5. Render result
	result := snap.View()
	affected := result.AffectedCount()

	outcome := "ok"
	if !applied {
		outcome = "noop"
		e.logger.Printf("run %s: area %q not in %d snapshot, returning unmodified graph", runID, p.Area, p.Year)
	}
	observability.RecordSimulation(outcome, time.Since(start).Seconds(), affected)
	e.logger.Printf("run %s: area=%s year=%d commodity=%s production_change=%.2f%% affected=%d in %v",
		runID, p.Area, p.Year, p.CommodityFilter(), p.ProductionChangePct, affected, time.Since(start))

	return result, nil
}

// Snapshot returns the unmodified snapshot view for year.
func (e *Engine) Snapshot(ctx context.Context, year int) (*domain.SimulationResult, error) {
	snap, err := e.fetch(ctx, year)
	if err != nil {
		return nil, err
	}
	return snap.View(), nil
}

// fetch reads and indexes one year's graph.
func (e *Engine) fetch(ctx context.Context, year int) (*snapshot.Snapshot, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: no store configured", ErrStoreUnavailable)
	}

	fetchCtx := ctx
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	nodes, edges, err := e.fetcher.FetchSnapshot(fetchCtx, year)
	observability.RecordSnapshotFetch(time.Since(start).Seconds(), len(nodes), len(edges), err)
	if err != nil {
		// Caller cancellation is not a store failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: fetch snapshot %d: %w", ErrStoreUnavailable, year, err)
	}

	snap, err := snapshot.Load(year, nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputation, err)
	}
	return snap, nil
}
