// Package metricstore keeps imported finance metrics in SQLite, MySQL or PostgreSQL.
package metricstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	metricsTable    = "finance_metrics"
	migrationsTable = "schema_migrations"
)

// ErrNoBackend is returned when reading metrics from a store without a backend.
var ErrNoBackend = errors.New("no metrics backend configured")

// Store implements the MetricsStore interface on top of database/sql.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.MetricsStore = &Store{} // Compile-time check

// Open connects to the metrics store. The none backend yields a disconnected store.
func Open(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend {
		return &Store{backend: backend}, nil
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, backend: backend}, nil
}

// openDB opens and pings a connection for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetMetricsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// Describe implements the MetricsSource interface.
func (s *Store) Describe() string {
	return fmt.Sprintf("%s metrics store", s.backend)
}

// ImportRecords writes records in one transaction and returns how many were stored.
// When replace is set, existing rows are removed first.
func (s *Store) ImportRecords(ctx context.Context, records []schema.MetricRecord, replace bool) (int, error) {
	if s.db == nil {
		return 0, ErrNoBackend
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	table := quoteTableName(metricsTable, s.backend)
	if replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", metricsTable, err)
		}
	}

	query := fmt.Sprintf(`INSERT INTO %s (region, year, investment, income, source_row, imported_at) VALUES (%s)`,
		table, s.placeholders(6))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w. Run 'finmap metrics migrate' first", err)
	}
	defer func() { _ = stmt.Close() }()

	importedAt := formatTime(time.Now().UTC(), s.backend)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Region, r.Year, nullFloat(r.Investment), nullFloat(r.Income), r.Row, importedAt); err != nil {
			return 0, fmt.Errorf("failed to insert %s/%d: %w", r.Region, r.Year, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(records), nil
}

// LoadMetrics implements the MetricsSource interface.
// Records come back in insertion order and Row is renumbered to that order.
func (s *Store) LoadMetrics(ctx context.Context) ([]schema.MetricRecord, error) {
	if s.db == nil {
		return nil, ErrNoBackend
	}
	query := fmt.Sprintf("SELECT region, year, investment, income FROM %s ORDER BY id", quoteTableName(metricsTable, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &schema.LoadError{Path: s.Describe(), Reason: "cannot query metrics. Run 'finmap metrics migrate' first", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var records []schema.MetricRecord
	for rows.Next() {
		var r schema.MetricRecord
		var investment, income sql.NullFloat64
		if err := rows.Scan(&r.Region, &r.Year, &investment, &income); err != nil {
			return nil, &schema.LoadError{Path: s.Describe(), Reason: "cannot scan metric row", Err: err}
		}
		r.Investment = floatPtr(investment)
		r.Income = floatPtr(income)
		r.Row = len(records) + 1
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &schema.LoadError{Path: s.Describe(), Reason: "error iterating metrics", Err: err}
	}
	return records, nil
}

// GetStatus returns status information about the metrics store.
func (s *Store) GetStatus(ctx context.Context) (schema.MetricsStatus, error) {
	status := schema.MetricsStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	// A store that was never migrated simply reports version 0
	var version sql.NullInt64
	versionQuery := fmt.Sprintf("SELECT version FROM %s LIMIT 1", quoteTableName(migrationsTable, s.backend))
	if err := s.db.QueryRowContext(ctx, versionQuery).Scan(&version); err == nil && version.Valid {
		status.Version = uint(version.Int64)
	}
	if status.Version == 0 {
		return status, nil
	}

	table := quoteTableName(metricsTable, s.backend)
	var minYear, maxYear sql.NullInt64
	query := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT region), MIN(year), MAX(year) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&status.TotalRecords, &status.Regions, &minYear, &maxYear); err != nil {
		return status, fmt.Errorf("failed to summarize %s: %w", metricsTable, err)
	}
	status.MinYear = intPtr(minYear)
	status.MaxYear = intPtr(maxYear)
	return status, nil
}

// Close closes the underlying connection, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// placeholders returns n comma-separated bind parameters for the backend.
func (s *Store) placeholders(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		if s.backend == schema.PostgreSQLBackend {
			out += fmt.Sprintf("$%d", i)
		} else {
			out += "?"
		}
	}
	return out
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return schema.Float(v.Float64)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return schema.Int(int(v.Int64))
}
