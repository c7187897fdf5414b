package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type viewEntry[T any] struct {
	visitorID string
	value     T
	lastSeen  time.Time
}

// ViewRegistry holds per-page state between requests. A view belongs to the
// visitor that created it and is dropped after ttl without access.
type ViewRegistry[T any] struct {
	ttl     time.Duration
	onEvict func(T)
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*viewEntry[T]
}

func NewViewRegistry[T any](ttl time.Duration, onEvict func(T)) *ViewRegistry[T] {
	return &ViewRegistry[T]{
		ttl:     ttl,
		onEvict: onEvict,
		now:     time.Now,
		entries: make(map[string]*viewEntry[T]),
	}
}

// Add stores value for visitorID and returns its new view id.
func (r *ViewRegistry[T]) Add(visitorID string, value T) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.entries[id] = &viewEntry[T]{visitorID: visitorID, value: value, lastSeen: r.now()}
	r.mu.Unlock()
	return id
}

// Get returns the view if it exists, belongs to visitorID and has not expired.
func (r *ViewRegistry[T]) Get(id, visitorID string) (T, bool) {
	var zero T
	r.mu.Lock()
	entry, ok := r.entries[id]
	if !ok || entry.visitorID != visitorID {
		r.mu.Unlock()
		return zero, false
	}
	now := r.now()
	if r.expired(entry, now) {
		delete(r.entries, id)
		r.mu.Unlock()
		r.evict(entry.value)
		return zero, false
	}
	entry.lastSeen = now
	r.mu.Unlock()
	return entry.value, true
}

func (r *ViewRegistry[T]) Remove(id, visitorID string) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if !ok || entry.visitorID != visitorID {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, id)
	r.mu.Unlock()
	r.evict(entry.value)
	return true
}

// Sweep evicts expired views and reports how many were dropped.
func (r *ViewRegistry[T]) Sweep() int {
	now := r.now()
	var evicted []T
	r.mu.Lock()
	for id, entry := range r.entries {
		if r.expired(entry, now) {
			delete(r.entries, id)
			evicted = append(evicted, entry.value)
		}
	}
	r.mu.Unlock()

	for _, v := range evicted {
		r.evict(v)
	}
	return len(evicted)
}

func (r *ViewRegistry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps every interval until ctx is done.
func (r *ViewRegistry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close evicts every view.
func (r *ViewRegistry[T]) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*viewEntry[T])
	r.mu.Unlock()

	for _, entry := range entries {
		r.evict(entry.value)
	}
}

func (r *ViewRegistry[T]) expired(entry *viewEntry[T], now time.Time) bool {
	return r.ttl > 0 && now.Sub(entry.lastSeen) > r.ttl
}

func (r *ViewRegistry[T]) evict(v T) {
	if r.onEvict != nil {
		r.onEvict(v)
	}
}
