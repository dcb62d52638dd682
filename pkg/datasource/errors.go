package datasource

import "fmt"

// ErrConnectionFailed reports a failed connection attempt to a data source.
type ErrConnectionFailed struct {
	DataSource string
	Reason     string
}

func (e *ErrConnectionFailed) Error() string {
	return fmt.Sprintf("connect to data source %s failed: %s", e.DataSource, e.Reason)
}

// ErrDataSourceNotFound reports a lookup of an unknown data source name.
type ErrDataSourceNotFound struct {
	DataSource string
}

func (e *ErrDataSourceNotFound) Error() string {
	return fmt.Sprintf("data source %s not found", e.DataSource)
}

// ErrUnknownDialect reports an unregistered dialect name.
type ErrUnknownDialect struct {
	Dialect string
}

func (e *ErrUnknownDialect) Error() string {
	return fmt.Sprintf("unknown dialect %q", e.Dialect)
}
