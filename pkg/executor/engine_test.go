package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/shardexec/pkg/route"
)

func stubUnit(dataSource, sqlText string) *StatementExecuteUnit {
	return &StatementExecuteUnit{
		Unit: route.ExecutionUnit{DataSource: dataSource, SQL: sqlText},
	}
}

func TestEngineExecutePreservesGroupOrder(t *testing.T) {
	engine, err := NewEngine(3, NewExceptionHandler())
	require.NoError(t, err)
	defer engine.Close()

	groups := []*ExecuteGroup{
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_0", "a"), stubUnit("ds_0", "bb")}},
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_1", "ccc")}},
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_2", "dddd")}},
	}

	results, err := engine.Execute(context.Background(), groups, func(ctx context.Context, unit *StatementExecuteUnit) ([]int64, error) {
		// Identify each unit by its SQL length so ordering is observable no
		// matter which worker ran it.
		return []int64{int64(len(unit.Unit.SQL))}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, [][]int64{{1}, {2}, {3}, {4}}, results)
}

func TestEngineExecuteThrownModeAborts(t *testing.T) {
	engine, err := NewEngine(2, NewExceptionHandler())
	require.NoError(t, err)
	defer engine.Close()

	boom := errors.New("connection reset")
	groups := []*ExecuteGroup{
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_0", "a")}},
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_1", "a")}},
	}

	_, err = engine.Execute(context.Background(), groups, func(ctx context.Context, unit *StatementExecuteUnit) ([]int64, error) {
		if unit.Unit.DataSource == "ds_1" {
			return nil, boom
		}
		return []int64{1}, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestEngineExecuteTolerantModeDegrades(t *testing.T) {
	handler := NewExceptionHandler()
	handler.SetThrown(false)

	engine, err := NewEngine(2, handler)
	require.NoError(t, err)
	defer engine.Close()

	groups := []*ExecuteGroup{
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_0", "a")}},
		{Inputs: []*StatementExecuteUnit{stubUnit("ds_1", "a")}},
	}

	results, err := engine.Execute(context.Background(), groups, func(ctx context.Context, unit *StatementExecuteUnit) ([]int64, error) {
		if unit.Unit.DataSource == "ds_1" {
			return nil, errors.New("connection reset")
		}
		return []int64{1}, nil
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, []int64{1}, results[0])
	assert.Nil(t, results[1])
}

func TestExceptionHandlerDefaultsToThrown(t *testing.T) {
	handler := NewExceptionHandler()
	assert.True(t, handler.Thrown())

	handler.SetThrown(false)
	assert.False(t, handler.Thrown())

	handler.SetThrown(true)
	assert.True(t, handler.Thrown())
}
