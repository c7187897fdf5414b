package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrNoValue is returned when a key is absent or expired.
var ErrNoValue = errors.New("no value")

// DB is the sqlite file backing durable visitor storage.
type DB struct {
	db     *sql.DB
	path   string
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{db: db, path: path, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS visitor_storage (
            visitor_id TEXT NOT NULL,
            key TEXT NOT NULL,
            value TEXT NOT NULL,
            expires_at INTEGER NOT NULL DEFAULT 0,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (visitor_id, key)
        )`,
		`CREATE TABLE IF NOT EXISTS rate_limits (
            key TEXT PRIMARY KEY,
            count INTEGER NOT NULL,
            expires_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_visitor_storage_expires_at ON visitor_storage(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// GetValue returns the stored value for (visitorID, key).
func (db *DB) GetValue(ctx context.Context, visitorID, key string) ([]byte, error) {
	var value string
	var expiresAt int64
	err := db.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM visitor_storage WHERE visitor_id = ? AND key = ?`,
		visitorID, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoValue
	}
	if err != nil {
		return nil, err
	}
	if expiresAt > 0 && time.Now().Unix() >= expiresAt {
		return nil, ErrNoValue
	}
	return []byte(value), nil
}

// SetValue upserts a value. A zero ttl never expires.
func (db *DB) SetValue(ctx context.Context, visitorID, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}
	_, err := db.db.ExecContext(ctx, `
        INSERT INTO visitor_storage (visitor_id, key, value, expires_at, updated_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(visitor_id, key) DO UPDATE SET
            value = excluded.value,
            expires_at = excluded.expires_at,
            updated_at = CURRENT_TIMESTAMP`,
		visitorID, key, string(value), expiresAt,
	)
	return err
}

func (db *DB) DeleteValue(ctx context.Context, visitorID, key string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM visitor_storage WHERE visitor_id = ? AND key = ?`, visitorID, key)
	return err
}

// IncrementCounter bumps the counter for key inside a fixed window and
// returns the new count.
func (db *DB) IncrementCounter(ctx context.Context, key string, window time.Duration) (int, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	var count int
	var expiresAt int64
	err = tx.QueryRowContext(ctx, `SELECT count, expires_at FROM rate_limits WHERE key = ?`, key).Scan(&count, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows) || (err == nil && now.Unix() >= expiresAt):
		count = 1
		expiresAt = now.Add(window).Unix()
	case err != nil:
		return 0, err
	default:
		count++
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO rate_limits (key, count, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET count = excluded.count, expires_at = excluded.expires_at`,
		key, count, expiresAt,
	)
	if err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// PurgeExpired deletes expired values and counters.
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now().Unix()
	res, err := db.db.ExecContext(ctx, `DELETE FROM visitor_storage WHERE expires_at > 0 AND expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if _, err := db.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE expires_at <= ?`, now); err != nil {
		return n, err
	}
	return n, nil
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return db.db.Close()
}
