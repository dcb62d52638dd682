// Package datasource manages the physical data sources a sharded statement
// can be routed to: one database/sql pool per named destination, with
// dialect-specific DSN construction for MySQL, PostgreSQL and SQLite.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kasuganosora/shardexec/pkg/executor"
	"github.com/kasuganosora/shardexec/pkg/route"
)

// Manager owns one *sql.DB per named data source, in registration order.
type Manager struct {
	mu     sync.RWMutex
	names  []string
	dbs    map[string]*sql.DB
	logger *slog.Logger
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		dbs:    make(map[string]*sql.DB),
		logger: slog.Default(),
	}
}

// OpenAll opens every configured data source. On any failure, already-opened
// sources are closed before returning.
func OpenAll(ctx context.Context, cfgs []Config) (*Manager, error) {
	m := NewManager()
	for i := range cfgs {
		if err := m.Open(ctx, cfgs[i]); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// Open opens and registers one data source.
func (m *Manager) Open(ctx context.Context, cfg Config) error {
	cfg.applyDefaults()

	dialect, err := LookupDialect(cfg.Dialect)
	if err != nil {
		return err
	}

	dsn, err := dialect.BuildDSN(&cfg)
	if err != nil {
		return &ErrConnectionFailed{DataSource: cfg.Name, Reason: fmt.Sprintf("build DSN: %v", err)}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return &ErrConnectionFailed{DataSource: cfg.Name, Reason: err.Error()}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return &ErrConnectionFailed{DataSource: cfg.Name, Reason: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.dbs[cfg.Name]; exists {
		db.Close()
		return fmt.Errorf("data source %s already registered", cfg.Name)
	}
	m.names = append(m.names, cfg.Name)
	m.dbs[cfg.Name] = db

	m.logger.Debug("data source opened", "name", cfg.Name, "dialect", cfg.Dialect)
	return nil
}

// DB returns the pool for a named data source.
func (m *Manager) DB(name string) (*sql.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.dbs[name]
	if !ok {
		return nil, &ErrDataSourceNotFound{DataSource: name}
	}
	return db, nil
}

// Names returns the data source names in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// PrepareGroups prepares one statement per execution unit and groups the
// prepared units by data source, in unit first-appearance order. The caller
// owns the returned statements; executor.BatchExecutor.Clear closes them.
func (m *Manager) PrepareGroups(ctx context.Context, units []route.ExecutionUnit) ([]*executor.ExecuteGroup, error) {
	var order []string
	grouped := make(map[string][]*executor.StatementExecuteUnit)

	for _, unit := range units {
		db, err := m.DB(unit.DataSource)
		if err != nil {
			closeGroupStatements(order, grouped)
			return nil, err
		}
		stmt, err := db.PrepareContext(ctx, unit.SQL)
		if err != nil {
			closeGroupStatements(order, grouped)
			return nil, fmt.Errorf("prepare on %s: %w", unit.DataSource, err)
		}
		if _, seen := grouped[unit.DataSource]; !seen {
			order = append(order, unit.DataSource)
		}
		grouped[unit.DataSource] = append(grouped[unit.DataSource], &executor.StatementExecuteUnit{
			Stmt: stmt,
			Unit: unit,
		})
	}

	groups := make([]*executor.ExecuteGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, &executor.ExecuteGroup{Inputs: grouped[name]})
	}
	return groups, nil
}

func closeGroupStatements(order []string, grouped map[string][]*executor.StatementExecuteUnit) {
	for _, name := range order {
		for _, su := range grouped[name] {
			su.Stmt.Close()
		}
	}
}

// Close closes every pool, attempting all and returning the first error.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, name := range m.names {
		if err := m.dbs[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.names = nil
	m.dbs = make(map[string]*sql.DB)
	return firstErr
}
