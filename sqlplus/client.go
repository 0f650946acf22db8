package sqlplus

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultExecutable is the sqlplus binary looked up on PATH.
const DefaultExecutable = "sqlplus"

// Preamble is written to sqlplus before every query or script. NULL values
// are rendered as the NULL cast token and SQL errors make the process exit
// with the Oracle error code.
const Preamble = "SET NULL NULL\n" +
	"SET FEEDBACK OFF\n" +
	"WHENEVER SQLERROR EXIT SQL.SQLCODE\n"

// Config holds the connection settings and the per-call defaults.
type Config struct {
	Hostname string
	Database string
	Username string
	Password string

	// Executable defaults to DefaultExecutable.
	Executable string
	// Timeout bounds one invocation; zero means no limit.
	Timeout time.Duration

	Cast        bool
	CheckErrors bool
}

// ConnectionString returns user/password@host/database.
func (c Config) ConnectionString() string {
	return fmt.Sprintf("%s/%s@%s/%s", c.Username, c.Password, c.Hostname, c.Database)
}

func (c Config) redacted() string {
	return fmt.Sprintf("%s/***@%s/%s", c.Username, c.Hostname, c.Database)
}

// Client runs queries and scripts through sqlplus, one process per call.
type Client struct {
	cfg      Config
	executor Executor
	logger   *zap.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithExecutor replaces the process executor.
func WithExecutor(e Executor) ClientOption {
	return func(c *Client) { c.executor = e }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	var missing []string
	if cfg.Hostname == "" {
		missing = append(missing, "hostname")
	}
	if cfg.Database == "" {
		missing = append(missing, "database")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfiguration, strings.Join(missing, ", "))
	}
	if cfg.Executable == "" {
		cfg.Executable = DefaultExecutable
	}

	c := &Client{
		cfg:      cfg,
		executor: ProcessExecutor{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// CallOption overrides a client default for one call.
type CallOption func(*Options)

// WithCast enables or disables value casting for one call.
func WithCast(cast bool) CallOption {
	return func(o *Options) { o.Cast = cast }
}

// WithCheckErrors enables or disables the output marker scan for one call.
// Disable it when legitimate results contain words such as "error".
func WithCheckErrors(check bool) CallOption {
	return func(o *Options) { o.CheckErrors = check }
}

// RunQuery interpolates params into query and runs it.
func (c *Client) RunQuery(ctx context.Context, query string, params any, opts ...CallOption) (Result, error) {
	text, err := Interpolate(query, params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to process parameters: %w", err)
	}
	return c.run(ctx, text, opts)
}

// RunScript runs the SQL script at path.
func (c *Client) RunScript(ctx context.Context, path string, opts ...CallOption) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("Script '%s' was not found: %w", path, err)
	}
	return c.run(ctx, "@"+path, opts)
}

func (c *Client) run(ctx context.Context, command string, callOpts []CallOption) (Result, error) {
	opts := Options{Cast: c.cfg.Cast, CheckErrors: c.cfg.CheckErrors}
	for _, opt := range callOpts {
		opt(&opts)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	stdin := Preamble + command
	if !strings.HasSuffix(stdin, "\n") {
		stdin += "\n"
	}

	args := []string{"-S", "-L", "-M", "HTML ON", c.cfg.ConnectionString()}
	logger := c.logger.With(zap.String("target", c.cfg.redacted()))
	logger.Debug("Running sqlplus", zap.String("command", command))

	start := time.Now()
	out, err := c.executor.Execute(ctx, c.cfg.Executable, args, stdin)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("sqlplus invocation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return Result{}, err
	}
	out.Command = command

	res, err := Assemble(out, opts)
	if err != nil {
		logger.Warn("sqlplus reported an error",
			zap.Int("exit_status", out.ExitStatus),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return Result{}, err
	}

	logger.Debug("sqlplus completed",
		zap.Int("rows", res.Len()),
		zap.Duration("elapsed", elapsed))
	return res, nil
}
