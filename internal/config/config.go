// Package config loads the sqlplus-mcp configuration from a YAML file and
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

// Config is the root configuration.
type Config struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	Query   QueryConfig   `yaml:"query"`
	Sink    SinkConfig    `yaml:"sink"`
	Logging LoggingConfig `yaml:"logging"`
}

// OracleConfig describes how sqlplus connects.
type OracleConfig struct {
	Hostname   string `yaml:"hostname"`
	Database   string `yaml:"database"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Executable string `yaml:"executable"`
	Timeout    string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// QueryConfig holds per-call defaults.
type QueryConfig struct {
	Cast        bool `yaml:"cast"`
	CheckErrors bool `yaml:"check_errors"`
	MaxRows     int  `yaml:"max_rows"`
}

// SinkConfig selects the database parsed results are exported to. An empty
// Driver disables export.
type SinkConfig struct {
	Driver     string `yaml:"driver"` // sqlite, postgres, mysql
	DSN        string `yaml:"dsn"`    // takes precedence over the fields below
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Database   string `yaml:"database"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Executable: sqlplus.DefaultExecutable,
			Timeout:    "30s",
		},
		Query: QueryConfig{
			Cast:        true,
			CheckErrors: true,
			MaxRows:     10000,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load reads the configuration at path and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	strs := []struct {
		env   string
		field *string
	}{
		{"SQLPLUS_HOSTNAME", &c.Oracle.Hostname},
		{"SQLPLUS_DATABASE", &c.Oracle.Database},
		{"SQLPLUS_USERNAME", &c.Oracle.Username},
		{"SQLPLUS_PASSWORD", &c.Oracle.Password},
		{"SQLPLUS_EXECUTABLE", &c.Oracle.Executable},
		{"SQLPLUS_TIMEOUT", &c.Oracle.Timeout},
		{"SQLPLUS_SINK_DRIVER", &c.Sink.Driver},
		{"SQLPLUS_SINK_DSN", &c.Sink.DSN},
		{"SQLPLUS_SINK_SQLITE_PATH", &c.Sink.SQLitePath},
		{"SQLPLUS_SINK_HOST", &c.Sink.Host},
		{"SQLPLUS_SINK_PORT", &c.Sink.Port},
		{"SQLPLUS_SINK_DB", &c.Sink.Database},
		{"SQLPLUS_SINK_USER", &c.Sink.User},
		{"SQLPLUS_SINK_PASSWORD", &c.Sink.Password},
		{"SQLPLUS_SINK_SSLMODE", &c.Sink.SSLMode},
		{"SQLPLUS_LOG_LEVEL", &c.Logging.Level},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.field = v
		}
	}

	bools := []struct {
		env   string
		field *bool
	}{
		{"SQLPLUS_CAST", &c.Query.Cast},
		{"SQLPLUS_CHECK_ERRORS", &c.Query.CheckErrors},
	}
	for _, b := range bools {
		if v := os.Getenv(b.env); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", b.env, err)
			}
			*b.field = parsed
		}
	}

	if v := os.Getenv("SQLPLUS_MAX_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SQLPLUS_MAX_ROWS: %w", err)
		}
		c.Query.MaxRows = n
	}
	return nil
}

// Validate checks values that cannot be checked while parsing.
func (c *Config) Validate() error {
	if _, err := c.QueryTimeout(); err != nil {
		return err
	}
	if c.Query.MaxRows < 0 {
		return fmt.Errorf("query.max_rows must not be negative")
	}
	switch c.Sink.Driver {
	case "", "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported sink driver %q", c.Sink.Driver)
	}
	return nil
}

// QueryTimeout parses Oracle.Timeout; an empty value means no timeout.
func (c *Config) QueryTimeout() (time.Duration, error) {
	if c.Oracle.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid oracle.timeout %q: %w", c.Oracle.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("oracle.timeout must not be negative")
	}
	return d, nil
}

// ClientConfig converts the configuration for sqlplus.NewClient.
func (c *Config) ClientConfig() (sqlplus.Config, error) {
	timeout, err := c.QueryTimeout()
	if err != nil {
		return sqlplus.Config{}, err
	}
	return sqlplus.Config{
		Hostname:    c.Oracle.Hostname,
		Database:    c.Oracle.Database,
		Username:    c.Oracle.Username,
		Password:    c.Oracle.Password,
		Executable:  c.Oracle.Executable,
		Timeout:     timeout,
		Cast:        c.Query.Cast,
		CheckErrors: c.Query.CheckErrors,
	}, nil
}
