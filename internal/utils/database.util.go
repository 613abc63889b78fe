package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"offer-tracker/internal/config"
)

// getDatabaseConfig returns pool size, connection lifetime and idle timeout
// in seconds.
func getDatabaseConfig() (int, int, int) {
	env := config.GetEnvConfig()
	return env.DBMaxConnections, env.DBConnectionTimeout, env.DBIdleTimeout
}

// SQLitePreferences stores preferences in a single key/value table.
type SQLitePreferences struct {
	mu    sync.RWMutex
	db    *sql.DB
	table string
}

// OpenSQLitePreferences opens dsn and creates the preferences table.
func OpenSQLitePreferences(ctx context.Context, dsn, table string) (*SQLitePreferences, error) {
	if IsEmptyOrWhitespace(dsn) {
		return nil, NewConfigError("sqlite_dsn", "sqlite DSN is empty", ErrInvalidConfig)
	}
	table = SanitizeTableName(table)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewDatabaseError("open", "failed to open sqlite database", err)
	}
	// sqlite serializes writers; one connection keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	_, connTimeout, _ := getDatabaseConfig()
	db.SetConnMaxLifetime(time.Duration(connTimeout) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, NewDatabaseError("ping", "failed to ping sqlite database", fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`, table)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		_ = db.Close()
		return nil, NewDatabaseError("ensure_table", "failed to ensure table "+table, err)
	}

	return &SQLitePreferences{db: db, table: table}, nil
}

func (s *SQLitePreferences) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, ErrDatabaseNotInit
	}

	var value string
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, NewDatabaseError("query", "failed to read preference "+key, fmt.Errorf("%w: %v", ErrQueryFailed, err))
	}
	return value, true, nil
}

func (s *SQLitePreferences) Set(ctx context.Context, key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrDatabaseNotInit
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return NewDatabaseError("write", "failed to write preference "+key, fmt.Errorf("%w: %v", ErrQueryFailed, err))
	}
	return nil
}

func (s *SQLitePreferences) Backend() string { return "sqlite" }

// Close closes the database connection if open
func (s *SQLitePreferences) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
