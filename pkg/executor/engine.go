package executor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kasuganosora/shardexec/pkg/workerpool"
)

// ExecuteCallback runs one physical batch for a single statement execute unit
// and returns its per-slot outcomes.
type ExecuteCallback func(ctx context.Context, unit *StatementExecuteUnit) ([]int64, error)

// Engine runs a callback over every statement execute unit of every group,
// one worker-pool task per group so that independent data sources overlap.
// Returned outcomes always preserve group order and in-group unit order,
// regardless of actual execution order.
type Engine struct {
	pool       *workerpool.Pool
	exceptions *ExceptionHandler
	logger     *slog.Logger
}

// NewEngine creates an engine with the given parallelism.
func NewEngine(concurrency int, exceptions *ExceptionHandler) (*Engine, error) {
	pool, err := workerpool.New(concurrency)
	if err != nil {
		return nil, err
	}
	return &Engine{
		pool:       pool,
		exceptions: exceptions,
		logger:     slog.Default(),
	}, nil
}

// Exceptions returns the engine's exception handler.
func (e *Engine) Exceptions() *ExceptionHandler { return e.exceptions }

// Execute runs the callback for each unit and collects one outcome slice per
// unit, flattened in group order then in-group order. In thrown mode the
// first failure cancels the remaining work and is returned; in tolerant mode
// a failed unit yields a nil outcome slice and execution continues.
func (e *Engine) Execute(ctx context.Context, groups []*ExecuteGroup, callback ExecuteCallback) ([][]int64, error) {
	thrown := e.exceptions.Thrown()
	executionID := uuid.NewString()
	e.logger.Debug("executing statement groups",
		"execution_id", executionID, "groups", len(groups), "units", UnitCount(groups))

	results := make([][]int64, UnitCount(groups))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	waits := make([]<-chan error, 0, len(groups))
	offset := 0
	for _, group := range groups {
		group := group
		base := offset
		offset += len(group.Inputs)

		done, err := e.pool.Submit(runCtx, func(taskCtx context.Context) error {
			for i, unit := range group.Inputs {
				outcomes, execErr := callback(taskCtx, unit)
				if execErr != nil {
					if thrown {
						return execErr
					}
					e.logger.Warn("statement execution failed, tolerated",
						"execution_id", executionID,
						"data_source", unit.Unit.DataSource,
						"error", execErr)
					continue
				}
				results[base+i] = outcomes
			}
			return nil
		})
		if err != nil {
			fail(err)
			break
		}
		waits = append(waits, done)
	}

	for _, done := range waits {
		if err := <-done; err != nil && thrown {
			fail(err)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Close shuts the engine's worker pool down.
func (e *Engine) Close() {
	e.pool.Shutdown()
}
