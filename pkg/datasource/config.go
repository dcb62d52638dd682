package datasource

// Config describes one named physical data source.
type Config struct {
	Name     string `json:"name"`
	Dialect  string `json:"dialect"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`

	// DSN overrides dialect DSN construction when set.
	DSN string `json:"dsn,omitempty"`

	// Connection pool
	MaxOpenConns    int `json:"max_open_conns,omitempty"`
	MaxIdleConns    int `json:"max_idle_conns,omitempty"`
	ConnMaxLifetime int `json:"conn_max_lifetime,omitempty"`  // seconds
	ConnMaxIdleTime int `json:"conn_max_idle_time,omitempty"` // seconds
	ConnectTimeout  int `json:"connect_timeout,omitempty"`    // seconds
}

// applyDefaults fills pool defaults in place.
func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 300
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = 60
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10
	}
}
