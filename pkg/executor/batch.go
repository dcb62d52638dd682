// Package executor implements batched statement execution for the sharding
// driver: logical add-batch calls are merged into per-(data source, SQL)
// physical batches, executed through the engine, and reconstructed into
// per-logical-call outcomes.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kasuganosora/shardexec/pkg/binder"
	"github.com/kasuganosora/shardexec/pkg/route"
)

// ErrBookkeeping reports a batch bookkeeping invariant violation. It is never
// expected under correct usage.
type ErrBookkeeping struct {
	DataSource string
	SQL        string
}

func (e *ErrBookkeeping) Error() string {
	return fmt.Sprintf("no batch execution unit for prepared statement on %s: %s", e.DataSource, e.SQL)
}

// batchIdentity is the merge key for batch execution units.
type batchIdentity struct {
	dataSource string
	sql        string
}

func identityOf(u route.ExecutionUnit) batchIdentity {
	return batchIdentity{dataSource: u.DataSource, sql: u.SQL}
}

// BatchExecutionUnit accumulates the physical batch for one (data source,
// SQL) identity: the concatenated parameters of every logical call merged
// into it, and the mapping from logical call index to physical batch slot.
type BatchExecutionUnit struct {
	unit route.ExecutionUnit
	// callSlots maps logical call index to the slot this call occupies in
	// the physical batch. Slots are dense, assigned in merge order from 0.
	callSlots map[int]int
}

func newBatchExecutionUnit(unit route.ExecutionUnit) *BatchExecutionUnit {
	return &BatchExecutionUnit{
		unit:      unit,
		callSlots: make(map[int]int),
	}
}

// ExecutionUnit returns the unit identity with its accumulated parameters.
func (u *BatchExecutionUnit) ExecutionUnit() route.ExecutionUnit {
	return u.unit
}

// CallSlots returns a copy of the logical-call-to-slot mapping.
func (u *BatchExecutionUnit) CallSlots() map[int]int {
	slots := make(map[int]int, len(u.callSlots))
	for call, slot := range u.callSlots {
		slots[call] = slot
	}
	return slots
}

// mapCall records that the given logical call occupies the next slot.
func (u *BatchExecutionUnit) mapCall(call int) {
	u.callSlots[call] = len(u.callSlots)
}

// merge appends another call's parameters and assigns it the next slot.
func (u *BatchExecutionUnit) merge(other route.ExecutionUnit, call int) {
	u.unit.Params = append(u.unit.Params, other.Params...)
	u.mapCall(call)
}

// ParameterSets splits the accumulated parameters back into one set per
// merged call, in slot order. Calls are assumed to bind the same number of
// parameters; mismatched shapes are caller misuse.
func (u *BatchExecutionUnit) ParameterSets() [][]any {
	if len(u.callSlots) == 0 {
		return nil
	}
	size := len(u.unit.Params) / len(u.callSlots)
	sets := make([][]any, 0, len(u.callSlots))
	for i := 0; i < len(u.callSlots); i++ {
		sets = append(sets, u.unit.Params[i*size:(i+1)*size])
	}
	return sets
}

// BatchExecutor merges logical add-batch calls into physical batches and
// executes them. It is a single-writer object: callers must not invoke its
// methods concurrently.
type BatchExecutor struct {
	engine  *Engine
	ruleSet route.RuleSet

	groups []*ExecuteGroup

	// units holds batch execution units in creation order; index resolves an
	// identity to its unique unit.
	units []*BatchExecutionUnit
	index map[batchIdentity]*BatchExecutionUnit

	batchCount int
}

// NewBatchExecutor creates a batch executor over the given engine and the
// routing rules of the active schema.
func NewBatchExecutor(engine *Engine, ruleSet route.RuleSet) *BatchExecutor {
	return &BatchExecutor{
		engine:  engine,
		ruleSet: ruleSet,
		index:   make(map[batchIdentity]*BatchExecutionUnit),
	}
}

// Init appends prepared statement groups. It may be called more than once
// for incremental preparation; existing batch state is untouched.
func (e *BatchExecutor) Init(groups []*ExecuteGroup) {
	e.groups = append(e.groups, groups...)
}

// BatchExecutionUnits returns the merged units in creation order.
func (e *BatchExecutor) BatchExecutionUnits() []*BatchExecutionUnit {
	return e.units
}

// BatchCount returns the number of completed add-batch calls.
func (e *BatchExecutor) BatchCount() int {
	return e.batchCount
}

// AddBatchForExecutionUnits records one logical add-batch call. Each physical
// unit is merged into the existing batch unit with the same (data source,
// SQL) identity, or starts a new one. Pure bookkeeping; nothing executes.
func (e *BatchExecutor) AddBatchForExecutionUnits(units []route.ExecutionUnit) {
	for _, unit := range units {
		id := identityOf(unit)
		if existing, ok := e.index[id]; ok {
			existing.merge(unit, e.batchCount)
			continue
		}
		created := newBatchExecutionUnit(unit)
		created.mapCall(e.batchCount)
		e.index[id] = created
		e.units = append(e.units, created)
	}
	e.batchCount++
}

// ExecuteBatch runs the consolidated physical batches and reconstructs one
// outcome per logical call. When any data-node-routed rule requires
// accumulation for the statement's tables, outcomes are summed across the
// data sources each call fanned out to; otherwise the first statement's raw
// outcomes are returned unchanged.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, stmtCtx *binder.StatementContext) ([]int64, error) {
	results, err := e.engine.Execute(ctx, e.groups, e.executeBatchCallback)
	if err != nil {
		return nil, err
	}
	if e.needAccumulate(stmtCtx) {
		return e.accumulate(results), nil
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// executeBatchCallback runs one unit's accumulated parameter sets against its
// prepared statement, one outcome per slot.
func (e *BatchExecutor) executeBatchCallback(ctx context.Context, unit *StatementExecuteUnit) ([]int64, error) {
	var sets [][]any
	if batchUnit, ok := e.index[identityOf(unit.Unit)]; ok {
		sets = batchUnit.ParameterSets()
	}

	outcomes := make([]int64, 0, len(sets))
	for _, params := range sets {
		result, err := unit.Stmt.ExecContext(ctx, params...)
		if err != nil {
			return nil, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, affected)
	}
	return outcomes, nil
}

func (e *BatchExecutor) needAccumulate(stmtCtx *binder.StatementContext) bool {
	for _, rule := range e.ruleSet.Rules() {
		if dataNodeRule, ok := rule.(route.DataNodeRule); ok && dataNodeRule.NeedAccumulate(stmtCtx.TableNames()) {
			return true
		}
	}
	return false
}

// accumulate fans outcome slices back into logical call order. One outcome
// slice is consumed per statement execute unit, in group order then in-group
// order; each unit's call-slot map restores the logical indexing. A missing
// or short outcome slice contributes zero rather than failing.
func (e *BatchExecutor) accumulate(results [][]int64) []int64 {
	accumulated := make([]int64, e.batchCount)
	resultIndex := 0
	for _, group := range e.groups {
		for _, unit := range group.Inputs {
			var slots map[int]int
			if batchUnit, ok := e.index[identityOf(unit.Unit)]; ok {
				slots = batchUnit.callSlots
			}
			for call, slot := range slots {
				var outcome int64
				if resultIndex < len(results) && slot < len(results[resultIndex]) {
					outcome = results[resultIndex][slot]
				}
				accumulated[call] += outcome
			}
			resultIndex++
		}
	}
	return accumulated
}

// Statements returns every prepared statement handle, in group order then
// in-group order.
func (e *BatchExecutor) Statements() []*sql.Stmt {
	var statements []*sql.Stmt
	for _, group := range e.groups {
		for _, unit := range group.Inputs {
			statements = append(statements, unit.Stmt)
		}
	}
	return statements
}

// ParameterSet returns the accumulated parameter sets bound to a prepared
// statement, one per merged logical call in slot order. An unknown handle
// yields an empty result; a known handle whose identity has no batch unit is
// a bookkeeping bug and returns ErrBookkeeping.
func (e *BatchExecutor) ParameterSet(stmt *sql.Stmt) ([][]any, error) {
	for _, group := range e.groups {
		for _, unit := range group.Inputs {
			if unit.Stmt != stmt {
				continue
			}
			batchUnit, ok := e.index[identityOf(unit.Unit)]
			if !ok {
				return nil, &ErrBookkeeping{DataSource: unit.Unit.DataSource, SQL: unit.Unit.SQL}
			}
			return batchUnit.ParameterSets(), nil
		}
	}
	return nil, nil
}

// Clear closes every statement handle and resets all batch state. Close is
// attempted on every handle even after a failure; the first error is
// returned. The executor is reusable after a fresh Init.
func (e *BatchExecutor) Clear() error {
	var firstErr error
	for _, stmt := range e.Statements() {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.groups = nil
	e.units = nil
	e.index = make(map[batchIdentity]*BatchExecutionUnit)
	e.batchCount = 0
	return firstErr
}
