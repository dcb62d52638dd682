// Package route maps logical SQL calls onto physical data sources: execution
// units, routing rules and the sharding router.
package route

// ExecutionUnit describes one physical statement to run: a data source name,
// the physical SQL text and the bound parameter values for a single call.
// Two units share a batch identity when data source and SQL match; parameters
// are never part of the identity.
type ExecutionUnit struct {
	DataSource string
	SQL        string
	Params     []any
}

// NewExecutionUnit creates an execution unit with a defensive copy of params.
func NewExecutionUnit(dataSource, sql string, params []any) ExecutionUnit {
	copied := make([]any, len(params))
	copy(copied, params)
	return ExecutionUnit{
		DataSource: dataSource,
		SQL:        sql,
		Params:     copied,
	}
}

// SameDataSourceAndSQL reports whether two units share a batch identity.
func (u ExecutionUnit) SameDataSourceAndSQL(other ExecutionUnit) bool {
	return u.DataSource == other.DataSource && u.SQL == other.SQL
}
