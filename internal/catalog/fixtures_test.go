package catalog

import (
	"hamrosewa/internal/models"
)

func testCategories() []models.Category {
	return []models.Category{
		{ID: "p1", Name: "Plumbing", Slug: "plumbing"},
		{ID: "p2", Name: "Electrical", Slug: "electrical"},
		{ID: "c1", Name: "Pipes", Slug: "pipes", Parent: models.ParentRef{ID: "p1"}},
		{ID: "c2", Name: "Drains", Slug: "drains", Parent: models.ParentRef{ID: "p1", Name: "Plumbing"}},
		{ID: "c3", Name: "Wiring", Slug: "wiring", Parent: models.ParentRef{ID: "p2"}},
	}
}

func ref(id string) *models.CategoryRef {
	return &models.CategoryRef{ID: id}
}

func testServices() []models.Service {
	return []models.Service{
		{ID: "s1", Title: "Pipe Repair", Description: "Fix leaking pipes", Location: "Kathmandu", Price: 500, Rating: 4.5, Featured: true, Category: ref("c1")},
		{ID: "s2", Title: "Wiring Fix", ShortDescription: "Rewire a room", Location: "Lalitpur", Price: 300, Rating: 3, Popular: true, Category: ref("c3")},
		{ID: "s3", Title: "drain cleaning", Description: "Unblock drains", Location: "Bhaktapur", Price: 300, Rating: 0, Category: ref("c2")},
		{ID: "s4", Title: "Appliance Check", Location: "Kathmandu", Price: 800, Rating: 5, Popular: true},
		{ID: "s5", Title: "Bathroom Plumbing", Description: "General plumbing work", Location: "Pokhara", Price: 650, Rating: 4, Featured: true, Category: ref("p1")},
	}
}

func ids(services []models.Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.ID)
	}
	return out
}
