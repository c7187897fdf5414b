package catalog

import (
	"testing"

	"hamrosewa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorted(mode SortMode) []string {
	services := testServices()
	Sort(services, mode)
	return ids(services)
}

func TestSort(t *testing.T) {
	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortFeatured, []string{"s1", "s5", "s2", "s3", "s4"}},
		{SortPopular, []string{"s2", "s4", "s1", "s3", "s5"}},
		// s2 and s3 tie on price and keep their input order.
		{SortPriceLow, []string{"s2", "s3", "s1", "s5", "s4"}},
		{SortPriceHigh, []string{"s4", "s5", "s1", "s2", "s3"}},
		{SortRating, []string{"s4", "s1", "s5", "s2", "s3"}},
		{SortName, []string{"s4", "s5", "s3", "s1", "s2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, sorted(tt.mode))
		})
	}
}

func TestSort_PriceIsTotalOrder(t *testing.T) {
	services := testServices()
	Sort(services, SortPriceLow)
	for i := 1; i < len(services); i++ {
		assert.LessOrEqual(t, services[i-1].Price, services[i].Price)
	}
	Sort(services, SortPriceHigh)
	for i := 1; i < len(services); i++ {
		assert.GreaterOrEqual(t, services[i-1].Price, services[i].Price)
	}
}

func TestSort_NameIsLocaleAware(t *testing.T) {
	services := []models.Service{{ID: "1", Title: "beta"}, {ID: "2", Title: "Alpha"}, {ID: "3", Title: "Ćapital"}}
	Sort(services, SortName)
	assert.Equal(t, []string{"2", "1", "3"}, ids(services))

	t.Run("CaseBreaksTies", func(t *testing.T) {
		services := []models.Service{{ID: "1", Title: "Pipe Repair"}, {ID: "2", Title: "pipe repair"}}
		Sort(services, SortName)
		assert.Equal(t, []string{"2", "1"}, ids(services))
	})
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortFeatured, mode)

	mode, err = ParseSortMode(" Price-Low ")
	require.NoError(t, err)
	assert.Equal(t, SortPriceLow, mode)

	_, err = ParseSortMode("cheapest")
	assert.Error(t, err)
}
