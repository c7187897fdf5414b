package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hamrosewa/internal/database"
	"hamrosewa/internal/models"
)

// SQLiteVisitorRepository stores visitor data in the sqlite file so it
// survives restarts.
type SQLiteVisitorRepository struct {
	db  *database.DB
	ttl time.Duration
}

func NewSQLiteVisitorRepository(db *database.DB, ttl time.Duration) *SQLiteVisitorRepository {
	return &SQLiteVisitorRepository{db: db, ttl: ttl}
}

func (r *SQLiteVisitorRepository) GetPreferences(ctx context.Context, visitorID string) (*models.Preferences, error) {
	var prefs models.Preferences
	ok, err := r.get(ctx, visitorID, models.StorageKeyPreferences, &prefs)
	if !ok || err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *SQLiteVisitorRepository) SetPreferences(ctx context.Context, visitorID string, prefs *models.Preferences) error {
	return r.set(ctx, visitorID, models.StorageKeyPreferences, prefs)
}

func (r *SQLiteVisitorRepository) GetSession(ctx context.Context, visitorID string) (*models.Session, error) {
	var session models.Session
	ok, err := r.get(ctx, visitorID, models.StorageKeyAuth, &session)
	if !ok || err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SQLiteVisitorRepository) SetSession(ctx context.Context, visitorID string, session *models.Session) error {
	return r.set(ctx, visitorID, models.StorageKeyAuth, session)
}

func (r *SQLiteVisitorRepository) ClearSession(ctx context.Context, visitorID string) error {
	if err := r.db.DeleteValue(ctx, visitorID, models.StorageKeyAuth); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SQLiteVisitorRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.db.IncrementCounter(ctx, key, window)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return count <= limit, nil
}

func (r *SQLiteVisitorRepository) get(ctx context.Context, visitorID, name string, out any) (bool, error) {
	raw, err := r.db.GetValue(ctx, visitorID, name)
	if errors.Is(err, database.ErrNoValue) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return true, nil
}

func (r *SQLiteVisitorRepository) set(ctx context.Context, visitorID, name string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := r.db.SetValue(ctx, visitorID, name, data, r.ttl); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}
