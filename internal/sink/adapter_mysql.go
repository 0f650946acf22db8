package sink

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
)

// MySQLAdapter implements Adapter for MySQL databases.
type MySQLAdapter struct{}

func (a *MySQLAdapter) DriverName() string { return "mysql" }

func (a *MySQLAdapter) BuildDSN(cfg config.SinkConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
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

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

func (a *MySQLAdapter) DatabaseName(dsn string) string {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return ""
	}
	return mc.DBName
}

func (a *MySQLAdapter) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (a *MySQLAdapter) Placeholder(int) string { return "?" }

func (a *MySQLAdapter) ColumnType(v any) string {
	switch kindOf(v) {
	case kindInteger:
		return "BIGINT"
	case kindFloat:
		return "DOUBLE"
	case kindTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
