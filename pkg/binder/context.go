// Package binder parses SQL text into a statement context: the referenced
// table names and the statement class, as needed by routing and batch result
// accumulation.
package binder

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// StatementKind classifies a parsed statement.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindDDL
)

// StatementContext holds the routing-relevant facts about one logical SQL
// statement. It is immutable after Parse.
type StatementContext struct {
	sql    string
	kind   StatementKind
	tables []string
}

// Parse parses a single SQL statement and extracts its context.
func Parse(sql string) (*StatementContext, error) {
	stmtNodes, _, err := parser.New().Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("binder: parse SQL failed: %w", err)
	}
	if len(stmtNodes) == 0 {
		return nil, fmt.Errorf("binder: no statement found")
	}

	v := newTableVisitor()
	stmtNodes[0].Accept(v)

	return &StatementContext{
		sql:    sql,
		kind:   v.kind,
		tables: v.tables,
	}, nil
}

// SQL returns the original statement text.
func (c *StatementContext) SQL() string { return c.sql }

// Kind returns the statement class.
func (c *StatementContext) Kind() StatementKind { return c.kind }

// TableNames returns the referenced table names in first-appearance order,
// deduplicated.
func (c *StatementContext) TableNames() []string { return c.tables }

// IsDML reports whether the statement is INSERT, UPDATE or DELETE.
func (c *StatementContext) IsDML() bool {
	return c.kind == KindInsert || c.kind == KindUpdate || c.kind == KindDelete
}

// tableVisitor walks the AST collecting table names and the statement class.
type tableVisitor struct {
	kind   StatementKind
	tables []string
	seen   map[string]struct{}
}

func newTableVisitor() *tableVisitor {
	return &tableVisitor{
		kind: KindOther,
		seen: make(map[string]struct{}),
	}
}

// Enter implements ast.Visitor.
func (v *tableVisitor) Enter(n ast.Node) (ast.Node, bool) {
	switch node := n.(type) {
	case *ast.TableName:
		name := node.Name.String()
		if _, ok := v.seen[name]; !ok && name != "" {
			v.seen[name] = struct{}{}
			v.tables = append(v.tables, name)
		}
	case *ast.SelectStmt:
		v.setKind(KindSelect)
	case *ast.InsertStmt:
		v.setKind(KindInsert)
	case *ast.UpdateStmt:
		v.setKind(KindUpdate)
	case *ast.DeleteStmt:
		v.setKind(KindDelete)
	case *ast.CreateTableStmt, *ast.DropTableStmt, *ast.TruncateTableStmt, *ast.AlterTableStmt:
		v.setKind(KindDDL)
	}
	return n, false
}

// Leave implements ast.Visitor.
func (v *tableVisitor) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

// setKind keeps the outermost statement's class.
func (v *tableVisitor) setKind(kind StatementKind) {
	if v.kind == KindOther {
		v.kind = kind
	}
}
