package datasource

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func (d *MySQLDialect) DriverName() string { return "mysql" }

func (d *MySQLDialect) BuildDSN(cfg *Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	port := cfg.Port
	if port <= 0 {
		port = 3306
	}

	mc := mysqldriver.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.AllowNativePasswords = true
	mc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = time.Duration(cfg.ConnectTimeout) * time.Second
	}

	return mc.FormatDSN(), nil
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

func (d *MySQLDialect) Placeholder(n int) string {
	return "?"
}
