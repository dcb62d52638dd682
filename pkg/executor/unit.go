package executor

import (
	"database/sql"

	"github.com/kasuganosora/shardexec/pkg/route"
)

// StatementExecuteUnit pairs a prepared statement handle with the execution
// unit it was prepared for.
type StatementExecuteUnit struct {
	Stmt *sql.Stmt
	Unit route.ExecutionUnit
}

// ExecuteGroup holds the statement execute units sharing one execution
// context, typically a single physical data source.
type ExecuteGroup struct {
	Inputs []*StatementExecuteUnit
}

// UnitCount returns the total number of statement units across groups.
func UnitCount(groups []*ExecuteGroup) int {
	count := 0
	for _, g := range groups {
		count += len(g.Inputs)
	}
	return count
}
