package sink

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
)

// PostgresAdapter implements Adapter for PostgreSQL databases.
type PostgresAdapter struct{}

func (a *PostgresAdapter) DriverName() string { return "postgres" }

func (a *PostgresAdapter) BuildDSN(cfg config.SinkConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Port == "" {
		missing = append(missing, "port")
	}
	if cfg.Database == "" {
		missing = append(missing, "database")
	}
	if cfg.User == "" {
		missing = append(missing, "user")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}

	if len(missing) > 0 {
		return "", fmt.Errorf("missing required sink settings: %v", missing)
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.PathEscape(cfg.User), url.PathEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Database, sslmode), nil
}

func (a *PostgresAdapter) DatabaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

func (a *PostgresAdapter) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (a *PostgresAdapter) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (a *PostgresAdapter) ColumnType(v any) string {
	switch kindOf(v) {
	case kindInteger:
		return "BIGINT"
	case kindFloat:
		return "DOUBLE PRECISION"
	case kindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
