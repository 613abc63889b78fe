package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func pqQuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// openPostgres tries the "pgx" driver name first, then falls back to "postgres".
func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown driver") {
		return nil, err
	}
	return sql.Open("postgres", dsn)
}

// PostgresPreferences stores preferences in a Postgres key/value table.
type PostgresPreferences struct {
	mu    sync.RWMutex
	db    *sql.DB
	table string
}

// OpenPostgresPreferences connects using dsn and creates the preferences table.
func OpenPostgresPreferences(ctx context.Context, dsn, table string) (*PostgresPreferences, error) {
	dsn = strings.TrimSpace(dsn)
	if IsEmptyOrWhitespace(dsn) {
		return nil, NewConfigError("postgres_dsn", "postgres configuration is incomplete", ErrInvalidConfig)
	}

	db, err := openPostgres(dsn)
	if err != nil {
		return nil, NewDatabaseError("open", "failed to open postgres", err)
	}

	maxConn, connTimeout, idleTimeout := getDatabaseConfig()
	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(max(maxConn/2, 1))
	db.SetConnMaxLifetime(time.Duration(connTimeout) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(idleTimeout) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, NewDatabaseError("ping", "failed to ping postgres", fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}

	quoted := pqQuoteIdent(SanitizeTableName(table))
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, quoted)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		_ = db.Close()
		return nil, NewDatabaseError("ensure_table", "failed to ensure table "+quoted, err)
	}

	LogInfo("postgres initialized with max_connections=%d, connection_timeout=%ds, idle_timeout=%ds",
		maxConn, connTimeout, idleTimeout)
	return &PostgresPreferences{db: db, table: quoted}, nil
}

func (p *PostgresPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return "", false, ErrDatabaseNotInit
	}

	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, p.table)
	err := p.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, NewDatabaseError("query", "failed to read preference "+key, fmt.Errorf("%w: %v", ErrQueryFailed, err))
	}
	return value, true, nil
}

func (p *PostgresPreferences) Set(ctx context.Context, key, value string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return ErrDatabaseNotInit
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, p.table)
	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return NewDatabaseError("write", "failed to write preference "+key, fmt.Errorf("%w: %v", ErrQueryFailed, err))
	}
	return nil
}

func (p *PostgresPreferences) Backend() string { return "postgres" }

func (p *PostgresPreferences) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
