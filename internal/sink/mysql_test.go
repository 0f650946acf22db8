package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

func TestMySQLBuildDSN(t *testing.T) {
	adapter := &MySQLAdapter{}

	dsn, err := adapter.BuildDSN(config.SinkConfig{
		Host: "db", Port: "3306", Database: "export",
		User: "etl", Password: "secret",
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "etl:secret@tcp(db:3306)/export")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Equal(t, "export", adapter.DatabaseName(dsn))
}

func TestMySQLBuildDSN_Missing(t *testing.T) {
	_, err := (&MySQLAdapter{}).BuildDSN(config.SinkConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required sink settings")
}

func TestMySQLDatabaseName(t *testing.T) {
	adapter := &MySQLAdapter{}
	tests := []struct {
		dsn      string
		expected string
	}{
		{"user:pass@tcp(localhost:3306)/app?charset=utf8mb4", "app"},
		{"user:pass@tcp(localhost:3306)/", ""},
		{"not a dsn", ""},
	}
	for _, tc := range tests {
		t.Run(tc.dsn, func(t *testing.T) {
			assert.Equal(t, tc.expected, adapter.DatabaseName(tc.dsn))
		})
	}
}

func TestMySQLStatements(t *testing.T) {
	w := &Writer{adapter: &MySQLAdapter{}}
	res := sqlplus.ParseTable(castTable, true)

	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `export` (`I` BIGINT, `F` DOUBLE, `D` DATETIME, `S` TEXT)",
		w.createTableStatement("export", res.Columns(), res))
	assert.Equal(t,
		"INSERT INTO `export` (`I`, `F`, `D`, `S`) VALUES (?, ?, ?, ?)",
		w.insertStatement("export", res.Columns()))
	assert.Equal(t, "`a``b`", (&MySQLAdapter{}).QuoteIdentifier("a`b"))
}

func TestAdapterFor(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres", "mysql"} {
		adapter, err := AdapterFor(driver)
		require.NoError(t, err)
		assert.Equal(t, driver, adapter.DriverName())
	}

	_, err := AdapterFor("oracle")
	assert.Error(t, err)
}
