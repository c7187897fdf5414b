package catalog

import (
	"strings"

	"hamrosewa/internal/models"
)

// Filter is the user-controlled state of a catalog listing.
type Filter struct {
	Query      string   `json:"query"`
	Location   string   `json:"location"`
	CategoryID string   `json:"category"`
	Sort       SortMode `json:"sort"`
}

// Apply derives the displayed list from the full list. The input slice is
// never modified; the result holds each matching service exactly once.
func Apply(services []models.Service, categories []models.Category, f Filter) []models.Service {
	match := newMatcher(categories, f)

	out := make([]models.Service, 0, len(services))
	for _, s := range services {
		if match(s) {
			out = append(out, s)
		}
	}

	Sort(out, f.Sort)
	return out
}

func newMatcher(categories []models.Category, f Filter) func(models.Service) bool {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	location := strings.ToLower(strings.TrimSpace(f.Location))
	inCategory := categoryMatcher(categories, strings.TrimSpace(f.CategoryID))

	return func(s models.Service) bool {
		if query != "" && !matchesText(s, query) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(s.Location), location) {
			return false
		}
		return inCategory(s)
	}
}

func matchesText(s models.Service, query string) bool {
	return strings.Contains(strings.ToLower(s.Title), query) ||
		strings.Contains(strings.ToLower(s.Description), query) ||
		strings.Contains(strings.ToLower(s.ShortDescription), query)
}

// categoryMatcher resolves the selected id once. A top-level selection
// matches services filed under any of its children; any other known id
// matches exactly; an unknown id matches nothing.
func categoryMatcher(categories []models.Category, selected string) func(models.Service) bool {
	if selected == "" {
		return func(models.Service) bool { return true }
	}

	category, ok := Find(categories, selected)
	if !ok {
		return func(models.Service) bool { return false }
	}

	if category.IsTopLevel() {
		children := ChildIDs(categories, category.ID)
		return func(s models.Service) bool {
			id := s.CategoryID()
			if id == "" {
				return false
			}
			_, ok := children[id]
			return ok
		}
	}

	return func(s models.Service) bool {
		id := s.CategoryID()
		return id != "" && id == category.ID
	}
}
