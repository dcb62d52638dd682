// Package config loads the sharding driver configuration: physical data
// sources, table routing rules and executor settings, from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kasuganosora/shardexec/pkg/datasource"
	"github.com/kasuganosora/shardexec/pkg/route"
)

// Config is the top-level application configuration.
type Config struct {
	DataSources []datasource.Config `json:"data_sources"`
	Sharding    []ShardingTable     `json:"sharding_tables,omitempty"`
	Broadcast   []string            `json:"broadcast_tables,omitempty"`
	Executor    ExecutorConfig      `json:"executor"`
}

// ShardingTable configures sharded routing for one logical table.
type ShardingTable struct {
	Table       string `json:"table"`
	Column      string `json:"column"`
	ColumnIndex int    `json:"column_index"`
}

// ExecutorConfig configures the execution engine.
type ExecutorConfig struct {
	// MaxConcurrency bounds how many statement groups execute in parallel
	MaxConcurrency int `json:"max_concurrency"`
	// Tolerant makes physical failures degrade to zero outcomes instead of
	// aborting the batch call
	Tolerant bool `json:"tolerant"`
}

// DefaultConfig returns a configuration with executor defaults and no data
// sources.
func DefaultConfig() *Config {
	return &Config{
		Executor: ExecutorConfig{
			MaxConcurrency: 4,
		},
	}
}

// Load reads and validates a JSON configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if len(c.DataSources) == 0 {
		return fmt.Errorf("config: at least one data source is required")
	}
	seen := make(map[string]struct{}, len(c.DataSources))
	for i := range c.DataSources {
		ds := &c.DataSources[i]
		if ds.Name == "" {
			return fmt.Errorf("config: data source %d has no name", i)
		}
		if _, dup := seen[ds.Name]; dup {
			return fmt.Errorf("config: duplicate data source name %q", ds.Name)
		}
		seen[ds.Name] = struct{}{}
		if _, err := datasource.LookupDialect(ds.Dialect); err != nil {
			return fmt.Errorf("config: data source %q: %w", ds.Name, err)
		}
	}
	for _, t := range c.Sharding {
		if t.Table == "" || t.Column == "" {
			return fmt.Errorf("config: sharding table entry needs table and column")
		}
		if t.ColumnIndex < 0 {
			return fmt.Errorf("config: sharding table %q: negative column index", t.Table)
		}
	}
	if c.Executor.MaxConcurrency <= 0 {
		c.Executor.MaxConcurrency = 4
	}
	return nil
}

// BuildRule assembles the sharding rule described by this configuration.
func (c *Config) BuildRule() *route.ShardingRule {
	names := make([]string, 0, len(c.DataSources))
	for i := range c.DataSources {
		names = append(names, c.DataSources[i].Name)
	}
	tables := make([]route.TableShardingConfig, 0, len(c.Sharding))
	for _, t := range c.Sharding {
		tables = append(tables, route.TableShardingConfig{
			Table:       t.Table,
			Column:      t.Column,
			ColumnIndex: t.ColumnIndex,
		})
	}
	return route.NewShardingRule(names, tables, c.Broadcast)
}
