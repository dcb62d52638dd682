package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDialect(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "sqlite"} {
		d, err := LookupDialect(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.DriverName())
	}

	_, err := LookupDialect("oracle")
	var unknownErr *ErrUnknownDialect
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "oracle", unknownErr.Dialect)
}

func TestMySQLBuildDSN(t *testing.T) {
	d := &MySQLDialect{}

	dsn, err := d.BuildDSN(&Config{
		Name:     "ds_0",
		Host:     "127.0.0.1",
		Username: "root",
		Password: "secret",
		Database: "orders",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "root:secret@tcp(127.0.0.1:3306)/orders")
	assert.Contains(t, dsn, "parseTime=true")

	dsn, err = d.BuildDSN(&Config{DSN: "override-dsn"})
	require.NoError(t, err)
	assert.Equal(t, "override-dsn", dsn)
}

func TestPostgreSQLBuildDSN(t *testing.T) {
	d := &PostgreSQLDialect{}

	dsn, err := d.BuildDSN(&Config{
		Name:     "ds_0",
		Host:     "db.internal",
		Port:     5433,
		Username: "app",
		Password: "secret",
		Database: "orders",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=orders")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestSQLiteBuildDSN(t *testing.T) {
	d := &SQLiteDialect{}

	dsn, err := d.BuildDSN(&Config{Name: "ds_0"})
	require.NoError(t, err)
	assert.Equal(t, "file:ds_0?mode=memory&cache=shared", dsn)

	dsn, err = d.BuildDSN(&Config{Name: "ds_0", Database: "/var/lib/app/orders.db"})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/app/orders.db", dsn)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", (&MySQLDialect{}).Placeholder(3))
	assert.Equal(t, "$3", (&PostgreSQLDialect{}).Placeholder(3))
	assert.Equal(t, "?", (&SQLiteDialect{}).Placeholder(3))

	assert.Equal(t, "`name`", (&MySQLDialect{}).QuoteIdentifier("name"))
	assert.Equal(t, `"name"`, (&PostgreSQLDialect{}).QuoteIdentifier("name"))
	assert.Equal(t, `"name"`, (&SQLiteDialect{}).QuoteIdentifier("name"))
}
