package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hamrosewa/internal/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryVisitorRepository keeps visitor storage in process. Values are held
// as JSON so callers never share pointers with the store.
type MemoryVisitorRepository struct {
	values     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryVisitorRepository(ttl time.Duration) *MemoryVisitorRepository {
	return &MemoryVisitorRepository{
		ttl: ttl,
	}
}

func (r *MemoryVisitorRepository) GetPreferences(ctx context.Context, visitorID string) (*models.Preferences, error) {
	var prefs models.Preferences
	ok, err := r.load(visitorID, models.StorageKeyPreferences, &prefs)
	if !ok || err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *MemoryVisitorRepository) SetPreferences(ctx context.Context, visitorID string, prefs *models.Preferences) error {
	return r.store(visitorID, models.StorageKeyPreferences, prefs)
}

func (r *MemoryVisitorRepository) GetSession(ctx context.Context, visitorID string) (*models.Session, error) {
	var session models.Session
	ok, err := r.load(visitorID, models.StorageKeyAuth, &session)
	if !ok || err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *MemoryVisitorRepository) SetSession(ctx context.Context, visitorID string, session *models.Session) error {
	return r.store(visitorID, models.StorageKeyAuth, session)
}

func (r *MemoryVisitorRepository) ClearSession(ctx context.Context, visitorID string) error {
	r.values.Delete(storageKey(visitorID, models.StorageKeyAuth))
	return nil
}

func (r *MemoryVisitorRepository) load(visitorID, name string, out any) (bool, error) {
	key := storageKey(visitorID, name)
	val, ok := r.values.Load(key)
	if !ok {
		return false, nil
	}
	entry := val.(memoryEntry)
	if entry.expired(time.Now()) {
		r.values.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryVisitorRepository) store(visitorID, name string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if r.ttl > 0 {
		entry.expiresAt = time.Now().Add(r.ttl)
	}
	r.values.Store(storageKey(visitorID, name), entry)
	return nil
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryVisitorRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := r.rateLimits.LoadOrStore(key, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.count == 0 || !now.Before(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}

func storageKey(visitorID, name string) string {
	return visitorID + ":" + name
}
