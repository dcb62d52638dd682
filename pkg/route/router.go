package route

import (
	"fmt"
)

// Router produces the physical execution units for one logical call.
type Router interface {
	// Route maps a logical statement (SQL text, referenced tables, bound
	// parameters) onto one or more physical execution units
	Route(sql string, tables []string, params []any) ([]ExecutionUnit, error)
}

// ShardingRouter routes statements according to a ShardingRule: sharded
// tables go to the data source selected by the sharding column value,
// broadcast tables go to every data source, and unknown tables fall back to
// the first configured data source.
//
// The physical SQL text is the logical text unchanged; table rewriting is the
// rewrite engine's job and is not performed here.
type ShardingRouter struct {
	rule *ShardingRule
}

// NewShardingRouter creates a router over the given sharding rule.
func NewShardingRouter(rule *ShardingRule) *ShardingRouter {
	return &ShardingRouter{rule: rule}
}

// Route implements Router.
func (r *ShardingRouter) Route(sql string, tables []string, params []any) ([]ExecutionUnit, error) {
	dataSources := r.rule.DataSources()
	if len(dataSources) == 0 {
		return nil, fmt.Errorf("route: no data sources configured")
	}

	if len(tables) > 0 && r.allBroadcast(tables) {
		units := make([]ExecutionUnit, 0, len(dataSources))
		for _, ds := range dataSources {
			units = append(units, NewExecutionUnit(ds, sql, params))
		}
		return units, nil
	}

	for _, table := range tables {
		cfg, ok := r.rule.ShardingTable(table)
		if !ok {
			continue
		}
		ds, err := r.shardDataSource(cfg, params)
		if err != nil {
			return nil, err
		}
		return []ExecutionUnit{NewExecutionUnit(ds, sql, params)}, nil
	}

	// Unsharded statement: single unit on the default data source.
	return []ExecutionUnit{NewExecutionUnit(dataSources[0], sql, params)}, nil
}

func (r *ShardingRouter) allBroadcast(tables []string) bool {
	for _, table := range tables {
		if !r.rule.IsBroadcastTable(table) {
			return false
		}
	}
	return true
}

// shardDataSource selects a data source by the sharding column value modulo
// the data source count.
func (r *ShardingRouter) shardDataSource(cfg TableShardingConfig, params []any) (string, error) {
	if cfg.ColumnIndex < 0 || cfg.ColumnIndex >= len(params) {
		return "", fmt.Errorf("route: sharding column %q index %d out of range for %d parameters",
			cfg.Column, cfg.ColumnIndex, len(params))
	}

	value, err := toShardValue(params[cfg.ColumnIndex])
	if err != nil {
		return "", fmt.Errorf("route: sharding column %q: %w", cfg.Column, err)
	}

	dataSources := r.rule.DataSources()
	idx := int(value % uint64(len(dataSources)))
	return dataSources[idx], nil
}

func toShardValue(v any) (uint64, error) {
	switch value := v.(type) {
	case int:
		return uint64(value), nil
	case int8:
		return uint64(value), nil
	case int16:
		return uint64(value), nil
	case int32:
		return uint64(value), nil
	case int64:
		return uint64(value), nil
	case uint:
		return uint64(value), nil
	case uint8:
		return uint64(value), nil
	case uint16:
		return uint64(value), nil
	case uint32:
		return uint64(value), nil
	case uint64:
		return value, nil
	default:
		return 0, fmt.Errorf("unsupported sharding value type %T", v)
	}
}
