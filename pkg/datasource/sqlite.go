package datasource

import (
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDialect implements Dialect for SQLite (modernc.org/sqlite, cgo-free).
// Used mainly by tests and examples as a serverless physical destination.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) BuildDSN(cfg *Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Database == "" {
		// Shared-cache memory database named after the data source, so every
		// pooled connection sees the same data.
		return fmt.Sprintf("file:%s?mode=memory&cache=shared", cfg.Name), nil
	}
	return cfg.Database, nil
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (d *SQLiteDialect) Placeholder(n int) string {
	return "?"
}
