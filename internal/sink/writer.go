package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

// ConnectionTimeout bounds the initial ping of the target database.
const ConnectionTimeout = 10 * time.Second

// Writer stores sqlplus results in a target database.
type Writer struct {
	db           *sql.DB
	adapter      Adapter
	databaseName string
	logger       *zap.Logger
}

// OpenConfig opens the writer described by cfg.
func OpenConfig(ctx context.Context, cfg config.SinkConfig, logger *zap.Logger) (*Writer, error) {
	adapter, err := AdapterFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := adapter.BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	return Open(ctx, adapter, dsn, logger)
}

// Open connects to the target database via the adapter.
func Open(ctx context.Context, adapter Adapter, dsn string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(adapter.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are sequential; a single connection also keeps an in-memory
	// SQLite database alive for the lifetime of the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, pingCancel := context.WithTimeout(ctx, ConnectionTimeout)
	defer pingCancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	name := adapter.DatabaseName(dsn)
	logger.Info("Sink connected",
		zap.String("driver", adapter.DriverName()),
		zap.String("database", name))

	return &Writer{
		db:           db,
		adapter:      adapter,
		databaseName: name,
		logger:       logger,
	}, nil
}

// DriverName returns the driver of the target database.
func (w *Writer) DriverName() string { return w.adapter.DriverName() }

// DatabaseName returns the target database name.
func (w *Writer) DatabaseName() string { return w.databaseName }

// DB exposes the underlying connection.
func (w *Writer) DB() *sql.DB { return w.db }

// Write creates table if it does not exist and inserts every row of res.
// Column types are inferred from all non-nil values of each column.
// It returns the number of rows inserted.
func (w *Writer) Write(ctx context.Context, table string, res sqlplus.Result) (int, error) {
	if strings.TrimSpace(table) == "" {
		return 0, fmt.Errorf("table name is required")
	}
	if res.Empty() {
		return 0, nil
	}

	columns := res.Columns()
	if _, err := w.db.ExecContext(ctx, w.createTableStatement(table, columns, res)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, w.insertStatement(table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range res.Rows() {
		if _, err := stmt.ExecContext(ctx, row.Values()...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}

	w.logger.Info("Exported rows",
		zap.String("table", table),
		zap.Int("rows", res.Len()),
		zap.Int("columns", len(columns)))
	return res.Len(), nil
}

func (w *Writer) createTableStatement(table string, columns []string, res sqlplus.Result) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = w.adapter.QuoteIdentifier(col) + " " + w.adapter.ColumnType(columnSample(res, i))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		w.adapter.QuoteIdentifier(table), strings.Join(defs, ", "))
}

// columnSample returns a value of the narrowest kind that holds every non-nil
// value of column i: integers widen to float, any other mix widens to text.
// It returns nil for a column of nulls.
func columnSample(res sqlplus.Result, i int) any {
	var sample any
	for _, row := range res.Rows() {
		v := row.Value(i)
		if v == nil {
			continue
		}
		if sample == nil {
			sample = v
			continue
		}
		switch have, got := kindOf(sample), kindOf(v); {
		case have == got:
		case have == kindInteger && got == kindFloat:
			sample = v
		case have == kindFloat && got == kindInteger:
		default:
			return ""
		}
	}
	return sample
}

func (w *Writer) insertStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = w.adapter.QuoteIdentifier(col)
		placeholders[i] = w.adapter.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.adapter.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// Close releases the connection.
func (w *Writer) Close() error {
	return w.db.Close()
}
