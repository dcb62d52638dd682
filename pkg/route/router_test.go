package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertOrderSQL = "INSERT INTO t_order (order_id, user_id, status) VALUES (?, ?, ?)"
const insertConfigSQL = "INSERT INTO t_config (k, v) VALUES (?, ?)"

func TestRouteShardedTable(t *testing.T) {
	router := NewShardingRouter(newTestRule())

	tests := []struct {
		name   string
		userID int
		wantDS string
	}{
		{"even user id", 4, "ds_0"},
		{"odd user id", 7, "ds_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := router.Route(insertOrderSQL, []string{"t_order"}, []any{1, tt.userID, "init"})
			require.NoError(t, err)
			require.Len(t, units, 1)
			assert.Equal(t, tt.wantDS, units[0].DataSource)
			assert.Equal(t, insertOrderSQL, units[0].SQL)
			assert.Equal(t, []any{1, tt.userID, "init"}, units[0].Params)
		})
	}
}

func TestRouteBroadcastTable(t *testing.T) {
	router := NewShardingRouter(newTestRule())

	units, err := router.Route(insertConfigSQL, []string{"t_config"}, []any{"k", "v"})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "ds_0", units[0].DataSource)
	assert.Equal(t, "ds_1", units[1].DataSource)
	// Broadcast units share SQL and parameters.
	assert.True(t, units[0].SameDataSourceAndSQL(ExecutionUnit{DataSource: "ds_0", SQL: insertConfigSQL}))
	assert.Equal(t, units[0].Params, units[1].Params)
}

func TestRouteUnknownTableFallsBack(t *testing.T) {
	router := NewShardingRouter(newTestRule())

	units, err := router.Route("INSERT INTO t_user (id) VALUES (?)", []string{"t_user"}, []any{1})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "ds_0", units[0].DataSource)
}

func TestRouteShardingColumnOutOfRange(t *testing.T) {
	router := NewShardingRouter(newTestRule())

	_, err := router.Route(insertOrderSQL, []string{"t_order"}, []any{1})
	assert.ErrorContains(t, err, "out of range")
}

func TestRouteUnsupportedShardValue(t *testing.T) {
	router := NewShardingRouter(newTestRule())

	_, err := router.Route(insertOrderSQL, []string{"t_order"}, []any{1, "not-a-number", "init"})
	assert.ErrorContains(t, err, "unsupported sharding value type")
}

func TestRouteNoDataSources(t *testing.T) {
	router := NewShardingRouter(NewShardingRule(nil, nil, nil))

	_, err := router.Route(insertOrderSQL, []string{"t_order"}, []any{1, 2, "init"})
	assert.ErrorContains(t, err, "no data sources")
}
