package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverVisitorRepository serves from primary and switches to fallback on
// the first primary error. Reads try primary again once a minute.
type FailoverVisitorRepository struct {
	primary  domain.VisitorStore
	fallback domain.VisitorStore
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverVisitorRepository(primary, fallback domain.VisitorStore, logger *zerolog.Logger) *FailoverVisitorRepository {
	return &FailoverVisitorRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverVisitorRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary visitor store failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// shouldRetryPrimary reports whether a read may try primary again, and claims the
// retry slot.
func (r *FailoverVisitorRepository) shouldRetryPrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) <= recoveryInterval {
		return false
	}
	r.lastCheck = time.Now()
	return true
}

func (r *FailoverVisitorRepository) GetPreferences(ctx context.Context, visitorID string) (*models.Preferences, error) {
	if !r.isDown.Load() {
		prefs, err := r.primary.GetPreferences(ctx, visitorID)
		if err == nil {
			return prefs, nil
		}
		r.markDown(err)
	} else if r.shouldRetryPrimary() {
		prefs, err := r.primary.GetPreferences(ctx, visitorID)
		if err == nil {
			r.isDown.Store(false)
			r.logger.Info().Msg("Primary visitor store recovered")
			return prefs, nil
		}
	}

	return r.fallback.GetPreferences(ctx, visitorID)
}

func (r *FailoverVisitorRepository) SetPreferences(ctx context.Context, visitorID string, prefs *models.Preferences) error {
	if !r.isDown.Load() {
		err := r.primary.SetPreferences(ctx, visitorID, prefs)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetPreferences(ctx, visitorID, prefs)
}

func (r *FailoverVisitorRepository) GetSession(ctx context.Context, visitorID string) (*models.Session, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, visitorID)
		if err == nil {
			return session, nil
		}
		r.markDown(err)
	} else if r.shouldRetryPrimary() {
		session, err := r.primary.GetSession(ctx, visitorID)
		if err == nil {
			r.isDown.Store(false)
			r.logger.Info().Msg("Primary visitor store recovered")
			return session, nil
		}
	}

	return r.fallback.GetSession(ctx, visitorID)
}

func (r *FailoverVisitorRepository) SetSession(ctx context.Context, visitorID string, session *models.Session) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, visitorID, session)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, visitorID, session)
}

// ClearSession clears both stores so a logout is not undone by recovery.
func (r *FailoverVisitorRepository) ClearSession(ctx context.Context, visitorID string) error {
	if !r.isDown.Load() {
		if err := r.primary.ClearSession(ctx, visitorID); err != nil {
			r.markDown(err)
		}
	}

	return r.fallback.ClearSession(ctx, visitorID)
}

func (r *FailoverVisitorRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
