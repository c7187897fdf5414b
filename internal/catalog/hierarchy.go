package catalog

import (
	"strings"

	"hamrosewa/internal/models"
)

// Children returns, in input order, the categories whose parent resolves to parentID.
func Children(categories []models.Category, parentID string) []models.Category {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil
	}
	out := make([]models.Category, 0)
	for _, c := range categories {
		if c.Parent.ID == parentID {
			out = append(out, c)
		}
	}
	return out
}

// ChildIDs is Children reduced to a set of ids.
func ChildIDs(categories []models.Category, parentID string) map[string]struct{} {
	children := Children(categories, parentID)
	ids := make(map[string]struct{}, len(children))
	for _, c := range children {
		ids[c.ID] = struct{}{}
	}
	return ids
}

// TopLevel returns the categories without a parent.
func TopLevel(categories []models.Category) []models.Category {
	out := make([]models.Category, 0)
	for _, c := range categories {
		if c.IsTopLevel() {
			out = append(out, c)
		}
	}
	return out
}

// Find looks a category up by id.
func Find(categories []models.Category, id string) (models.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// FindBySlug looks a category up by slug.
func FindBySlug(categories []models.Category, slug string) (models.Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

// IsTopLevel reports whether id names a known category without a parent.
func IsTopLevel(categories []models.Category, id string) bool {
	c, ok := Find(categories, id)
	return ok && c.IsTopLevel()
}

// Group is a top-level category with its sub-categories, for menus.
type Group struct {
	Category models.Category   `json:"category"`
	Children []models.Category `json:"children"`
}

// Tree groups a flat category list under its top-level entries.
func Tree(categories []models.Category) []Group {
	top := TopLevel(categories)
	groups := make([]Group, 0, len(top))
	for _, parent := range top {
		groups = append(groups, Group{Category: parent, Children: Children(categories, parent.ID)})
	}
	return groups
}
