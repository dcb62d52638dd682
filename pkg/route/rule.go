package route

// Rule describes one routing strategy active for the logical schema.
type Rule interface {
	// Name returns the rule name for logs and diagnostics
	Name() string
}

// DataNodeRule is implemented by rules that spread logical tables across
// physical data nodes. When a statement touches such tables, per-call batch
// outcomes must be summed across the destinations the call fanned out to.
type DataNodeRule interface {
	Rule

	// NeedAccumulate reports whether outcomes for the given logical tables
	// must be accumulated across data sources
	NeedAccumulate(tables []string) bool
}

// RuleSet supplies the routing rules for the active logical schema.
type RuleSet interface {
	Rules() []Rule
}

// StaticRuleSet is a fixed, in-memory RuleSet.
type StaticRuleSet struct {
	rules []Rule
}

// NewStaticRuleSet creates a rule set from a fixed list of rules.
func NewStaticRuleSet(rules ...Rule) *StaticRuleSet {
	return &StaticRuleSet{rules: rules}
}

// Rules returns the configured rules.
func (s *StaticRuleSet) Rules() []Rule {
	return s.rules
}

// ShardingRule routes sharded tables onto a list of data sources by the value
// of a sharding column, and knows which tables are broadcast so that
// accumulation can be skipped for pure broadcast statements.
type ShardingRule struct {
	tables          map[string]TableShardingConfig
	broadcastTables map[string]struct{}
	dataSources     []string
}

// TableShardingConfig describes how one logical table is sharded.
type TableShardingConfig struct {
	// Table is the logical table name
	Table string
	// Column is the sharding column name
	Column string
	// ColumnIndex is the position of the sharding column in the bound
	// parameter list of INSERT statements
	ColumnIndex int
}

// NewShardingRule creates a sharding rule over the given ordered data sources.
func NewShardingRule(dataSources []string, tables []TableShardingConfig, broadcastTables []string) *ShardingRule {
	tableMap := make(map[string]TableShardingConfig, len(tables))
	for _, t := range tables {
		tableMap[t.Table] = t
	}
	broadcast := make(map[string]struct{}, len(broadcastTables))
	for _, t := range broadcastTables {
		broadcast[t] = struct{}{}
	}
	return &ShardingRule{
		tables:          tableMap,
		broadcastTables: broadcast,
		dataSources:     dataSources,
	}
}

// Name implements Rule.
func (r *ShardingRule) Name() string { return "sharding" }

// DataSources returns the ordered physical data source names.
func (r *ShardingRule) DataSources() []string { return r.dataSources }

// ShardingTable returns the sharding config for a logical table, if any.
func (r *ShardingRule) ShardingTable(table string) (TableShardingConfig, bool) {
	cfg, ok := r.tables[table]
	return cfg, ok
}

// IsBroadcastTable reports whether a table is mirrored on every data source.
func (r *ShardingRule) IsBroadcastTable(table string) bool {
	_, ok := r.broadcastTables[table]
	return ok
}

// NeedAccumulate implements DataNodeRule. Accumulation is required unless
// every referenced table is broadcast: a broadcast statement runs with the
// same effect on every node, so summing would multiply the count.
func (r *ShardingRule) NeedAccumulate(tables []string) bool {
	for _, table := range tables {
		if !r.IsBroadcastTable(table) {
			return true
		}
	}
	return false
}
