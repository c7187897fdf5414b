package catalog

import (
	"context"
	"sync"
	"time"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
)

// Browser is one catalog listing view: the fetched catalog, the filter the
// user is typing, and the filter currently applied to the results.
type Browser struct {
	source   domain.CatalogSource
	logger   *zerolog.Logger
	query    *Debouncer
	location *Debouncer

	mu          sync.RWMutex
	services    []models.Service
	categories  []models.Category
	input       Filter
	applied     Filter
	results     []models.Service
	unavailable bool
}

// BrowserView is a snapshot of a Browser for rendering.
type BrowserView struct {
	Input       Filter                `json:"input"`
	Applied     Filter                `json:"applied"`
	Pending     bool                  `json:"pending"`
	Unavailable bool                  `json:"unavailable"`
	Total       int                   `json:"total"`
	Matched     int                   `json:"matched"`
	Results     []models.CatalogEntry `json:"results"`
	Categories  []Group               `json:"categories"`
	SortModes   []SortMode            `json:"sortModes"`
}

func NewBrowser(source domain.CatalogSource, debounce time.Duration, logger *zerolog.Logger) *Browser {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	initial := Filter{Sort: SortFeatured}
	return &Browser{
		source:   source,
		logger:   logger,
		query:    NewDebouncer(debounce),
		location: NewDebouncer(debounce),
		input:    initial,
		applied:  initial,
	}
}

// Load fetches active services and the flat category list. A failed fetch
// leaves that part of the catalog empty; the error is returned for the caller
// to surface but filtering carries on.
func (b *Browser) Load(ctx context.Context) error {
	services, svcErr := b.source.ListServices(ctx, domain.ServiceQuery{Status: models.StatusActive})
	if svcErr != nil {
		b.logger.Error().Err(svcErr).Msg("load services")
		services = nil
	}
	categories, catErr := b.source.AllCategories(ctx)
	if catErr != nil {
		b.logger.Warn().Err(catErr).Msg("load categories")
		categories = nil
	}

	b.mu.Lock()
	b.services = services
	b.categories = categories
	b.unavailable = svcErr != nil
	b.recomputeLocked()
	b.mu.Unlock()

	return svcErr
}

// SetQuery records the typed search text and applies it once typing settles.
// The settled callback applies whatever input is current when it fires.
func (b *Browser) SetQuery(q string) {
	b.mu.Lock()
	b.input.Query = q
	b.mu.Unlock()

	b.query.Trigger(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.applied.Query = b.input.Query
		b.recomputeLocked()
	})
}

// SetLocation records the typed location and applies it once typing settles.
func (b *Browser) SetLocation(loc string) {
	b.mu.Lock()
	b.input.Location = loc
	b.mu.Unlock()

	b.location.Trigger(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.applied.Location = b.input.Location
		b.recomputeLocked()
	})
}

func (b *Browser) SetCategory(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input.CategoryID = id
	b.applied.CategoryID = id
	b.recomputeLocked()
}

func (b *Browser) SetSort(mode SortMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input.Sort = mode
	b.applied.Sort = mode
	b.recomputeLocked()
}

// Settle applies pending text inputs immediately.
func (b *Browser) Settle() {
	b.query.Stop()
	b.location.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied.Query = b.input.Query
	b.applied.Location = b.input.Location
	b.recomputeLocked()
}

// Close drops pending debounced updates.
func (b *Browser) Close() {
	b.query.Stop()
	b.location.Stop()
}

func (b *Browser) View() BrowserView {
	pending := b.query.Pending() || b.location.Pending()

	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]models.CatalogEntry, 0, len(b.results))
	for _, s := range b.results {
		entries = append(entries, models.NewCatalogEntry(s))
	}
	return BrowserView{
		Input:       b.input,
		Applied:     b.applied,
		Pending:     pending,
		Unavailable: b.unavailable,
		Total:       len(b.services),
		Matched:     len(b.results),
		Results:     entries,
		Categories:  Tree(b.categories),
		SortModes:   SortModes,
	}
}

func (b *Browser) recomputeLocked() {
	b.results = Apply(b.services, b.categories, b.applied)
}
