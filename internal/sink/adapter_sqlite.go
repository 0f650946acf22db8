package sink

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
)

// SQLiteAdapter implements Adapter for SQLite databases.
type SQLiteAdapter struct{}

func (a *SQLiteAdapter) DriverName() string { return "sqlite" }

func (a *SQLiteAdapter) BuildDSN(cfg config.SinkConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.SQLitePath == "" {
		return "", fmt.Errorf("missing required sink setting: sqlite_path")
	}
	return cfg.SQLitePath, nil
}

func (a *SQLiteAdapter) DatabaseName(dsn string) string {
	// DSN is a file path, possibly with query parameters
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	// Extract just the filename without directory
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	// Remove common extensions for display
	name = strings.TrimSuffix(name, ".db")
	name = strings.TrimSuffix(name, ".sqlite")
	name = strings.TrimSuffix(name, ".sqlite3")
	return name
}

func (a *SQLiteAdapter) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (a *SQLiteAdapter) Placeholder(int) string { return "?" }

func (a *SQLiteAdapter) ColumnType(v any) string {
	switch kindOf(v) {
	case kindInteger:
		return "INTEGER"
	case kindFloat:
		return "REAL"
	case kindTimestamp:
		// modernc.org/sqlite scans DATETIME columns back into time.Time.
		return "DATETIME"
	default:
		return "TEXT"
	}
}
