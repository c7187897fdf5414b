package catalog

import (
	"fmt"
	"slices"
	"strings"

	"hamrosewa/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMode string

const (
	SortFeatured  SortMode = "featured"
	SortPopular   SortMode = "popular"
	SortPriceLow  SortMode = "price-low"
	SortPriceHigh SortMode = "price-high"
	SortRating    SortMode = "rating"
	SortName      SortMode = "name"
)

// SortModes lists the accepted sort modes in display order.
var SortModes = []SortMode{SortFeatured, SortPopular, SortPriceLow, SortPriceHigh, SortRating, SortName}

// ParseSortMode maps user input onto a SortMode. Empty input means featured.
func ParseSortMode(raw string) (SortMode, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return SortFeatured, nil
	}
	for _, m := range SortModes {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", raw)
}

// Sort orders services in place. Every mode is stable.
func Sort(services []models.Service, mode SortMode) {
	switch mode {
	case SortPopular:
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return flagFirst(a.Popular, b.Popular)
		})
	case SortPriceLow:
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return compareFloat(a.Price, b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return compareFloat(b.Price, a.Price)
		})
	case SortRating:
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return compareFloat(b.Rating, a.Rating)
		})
	case SortName:
		// collate.Collator keeps a buffer, so one per call.
		col := collate.New(language.English)
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(services, func(a, b models.Service) int {
			return flagFirst(a.Featured, b.Featured)
		})
	}
}

func flagFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
