package service

import (
	"context"
	"errors"
	"strings"

	"hamrosewa/internal/catalog"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
)

// HomePage is the landing page content.
type HomePage struct {
	Popular     []models.CatalogEntry `json:"popular"`
	Categories  []models.Category     `json:"categories"`
	Unavailable bool                  `json:"unavailable"`
}

// CategoryPage is a category with its subcategories and services.
type CategoryPage struct {
	Category      models.Category       `json:"category"`
	Subcategories []models.Category     `json:"subcategories"`
	Subcategory   string                `json:"subcategory,omitempty"`
	Services      []models.CatalogEntry `json:"services"`
}

type CatalogService struct {
	source domain.CatalogSource
	logger *zerolog.Logger
}

func NewCatalogService(source domain.CatalogSource, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		logger: logger,
	}
}

// Home loads popular active services and the top-level categories. Either
// half failing renders empty rather than erroring.
func (s *CatalogService) Home(ctx context.Context) HomePage {
	page := HomePage{Popular: []models.CatalogEntry{}, Categories: []models.Category{}}

	services, err := s.source.ListServices(ctx, domain.ServiceQuery{Popular: true, Status: models.StatusActive})
	if err != nil {
		s.logger.Error().Err(err).Msg("load popular services")
		page.Unavailable = true
	}
	for _, svc := range services {
		page.Popular = append(page.Popular, models.NewCatalogEntry(svc))
	}

	parents, err := s.source.ParentCategories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("load parent categories")
		page.Unavailable = true
	}
	page.Categories = append(page.Categories, catalog.TopLevel(parents)...)
	return page
}

// Category loads a category page. An unknown slug, or a subcategory name the
// category does not have, is domain.ErrNotFound.
func (s *CatalogService) Category(ctx context.Context, slug, subcategory string) (*CategoryPage, error) {
	detail, err := s.source.CategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page := &CategoryPage{
		Category:      detail.Category,
		Subcategories: detail.Subcategories,
		Services:      []models.CatalogEntry{},
	}
	if page.Subcategories == nil {
		page.Subcategories = []models.Category{}
	}

	if subcategory != "" {
		sub, ok := findSubcategory(detail.Subcategories, subcategory)
		if !ok {
			return nil, domain.ErrNotFound
		}
		page.Subcategory = sub.Name
		subcategory = sub.Name
	}

	services, err := s.source.ServicesByCategory(ctx, slug, subcategory)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error().Err(err).Str("slug", slug).Msg("load category services")
		return nil, err
	}
	for _, svc := range services {
		page.Services = append(page.Services, models.NewCatalogEntry(svc))
	}
	return page, nil
}

// Service loads one service by slug.
func (s *CatalogService) Service(ctx context.Context, slug string) (*models.Service, error) {
	svc, err := s.source.ServiceBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("slug", slug).Msg("load service")
		}
		return nil, err
	}
	return svc, nil
}

// findSubcategory matches by slug or, case-insensitively, by name.
func findSubcategory(subs []models.Category, key string) (models.Category, bool) {
	for _, sub := range subs {
		if sub.Slug == key || strings.EqualFold(sub.Name, key) {
			return sub, true
		}
	}
	return models.Category{}, false
}
