// Package sink copies parsed sqlplus results into a relational database.
package sink

import (
	"fmt"
	"time"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
)

// Adapter defines the contract for database-specific behavior.
// Each supported target (SQLite, PostgreSQL, MySQL) implements this interface.
type Adapter interface {
	// DriverName returns the database/sql driver name (e.g., "mysql", "postgres", "sqlite").
	DriverName() string

	// BuildDSN constructs a DSN from the sink configuration.
	BuildDSN(cfg config.SinkConfig) (string, error)

	// DatabaseName extracts the database/file name from a DSN string.
	DatabaseName(dsn string) string

	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(name string) string

	// Placeholder returns the bind parameter for the n-th value, starting at 1.
	Placeholder(n int) string

	// ColumnType returns the column type used to store values like v.
	// v is one of int64, float64, time.Time or string.
	ColumnType(v any) string
}

// AdapterFor returns the adapter registered for driver.
func AdapterFor(driver string) (Adapter, error) {
	switch driver {
	case "sqlite":
		return &SQLiteAdapter{}, nil
	case "postgres":
		return &PostgresAdapter{}, nil
	case "mysql":
		return &MySQLAdapter{}, nil
	default:
		return nil, fmt.Errorf("unsupported sink driver %q", driver)
	}
}

// columnKind maps a cast value to the adapter-independent kind used by
// ColumnType implementations.
type columnKind int

const (
	kindText columnKind = iota
	kindInteger
	kindFloat
	kindTimestamp
)

func kindOf(v any) columnKind {
	switch v.(type) {
	case int64:
		return kindInteger
	case float64:
		return kindFloat
	case time.Time:
		return kindTimestamp
	default:
		return kindText
	}
}
