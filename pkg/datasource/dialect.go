package datasource

// Dialect encapsulates database-engine-specific behavior.
type Dialect interface {
	// DriverName returns the database/sql driver name
	DriverName() string

	// BuildDSN constructs the driver-specific connection string
	BuildDSN(cfg *Config) (string, error)

	// QuoteIdentifier wraps a table/column name in dialect-specific quoting
	QuoteIdentifier(name string) string

	// Placeholder returns the parameter placeholder for the n-th parameter (1-based)
	Placeholder(n int) string
}

var dialects = map[string]Dialect{
	"mysql":    &MySQLDialect{},
	"postgres": &PostgreSQLDialect{},
	"sqlite":   &SQLiteDialect{},
}

// LookupDialect resolves a dialect by name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return nil, &ErrUnknownDialect{Dialect: name}
	}
	return d, nil
}
