package service

import (
	"context"
	"errors"
	"testing"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogService() (*CatalogService, *MockCatalogSource) {
	source := new(MockCatalogSource)
	logger := zerolog.Nop()
	return NewCatalogService(source, &logger), source
}

func TestCatalogService_Home(t *testing.T) {
	svc, source := newCatalogService()
	source.On("ListServices", mock.Anything, domain.ServiceQuery{Popular: true, Status: models.StatusActive}).
		Return([]models.Service{{ID: "s1", Images: []models.Image{{URL: "a.jpg"}}}}, nil).Once()
	source.On("ParentCategories", mock.Anything).Return([]models.Category{
		{ID: "p1", Name: "Plumbing"},
		{ID: "c1", Name: "Pipes", Parent: models.ParentRef{ID: "p1"}},
	}, nil).Once()

	page := svc.Home(context.Background())
	assert.False(t, page.Unavailable)
	require.Len(t, page.Popular, 1)
	assert.Equal(t, "a.jpg", page.Popular[0].Image)
	require.Len(t, page.Categories, 1, "only top-level categories")
	assert.Equal(t, "p1", page.Categories[0].ID)
}

func TestCatalogService_HomeUnavailable(t *testing.T) {
	svc, source := newCatalogService()
	source.On("ListServices", mock.Anything, mock.Anything).Return(nil, domain.ErrUnreachable).Once()
	source.On("ParentCategories", mock.Anything).Return(nil, domain.ErrUnreachable).Once()

	page := svc.Home(context.Background())
	assert.True(t, page.Unavailable)
	assert.NotNil(t, page.Popular)
	assert.Empty(t, page.Popular)
	assert.Empty(t, page.Categories)
}

func TestCatalogService_Category(t *testing.T) {
	detail := &models.CategoryDetail{
		Category: models.Category{ID: "p1", Name: "Plumbing", Slug: "plumbing"},
		Subcategories: []models.Category{
			{ID: "c1", Name: "Drain Cleaning", Slug: "drain-cleaning", Parent: models.ParentRef{ID: "p1"}},
		},
	}

	t.Run("AllServices", func(t *testing.T) {
		svc, source := newCatalogService()
		source.On("CategoryBySlug", mock.Anything, "plumbing").Return(detail, nil).Once()
		source.On("ServicesByCategory", mock.Anything, "plumbing", "").Return([]models.Service{{ID: "s1"}, {ID: "s2"}}, nil).Once()

		page, err := svc.Category(context.Background(), "plumbing", "")
		require.NoError(t, err)
		assert.Equal(t, "p1", page.Category.ID)
		assert.Len(t, page.Subcategories, 1)
		assert.Len(t, page.Services, 2)
	})

	t.Run("SubcategoryBySlug", func(t *testing.T) {
		svc, source := newCatalogService()
		source.On("CategoryBySlug", mock.Anything, "plumbing").Return(detail, nil).Once()
		source.On("ServicesByCategory", mock.Anything, "plumbing", "Drain Cleaning").Return([]models.Service{{ID: "s1"}}, nil).Once()

		page, err := svc.Category(context.Background(), "plumbing", "drain-cleaning")
		require.NoError(t, err)
		assert.Equal(t, "Drain Cleaning", page.Subcategory)
		assert.Len(t, page.Services, 1)
		source.AssertExpectations(t)
	})

	t.Run("UnknownSubcategory", func(t *testing.T) {
		svc, source := newCatalogService()
		source.On("CategoryBySlug", mock.Anything, "plumbing").Return(detail, nil).Once()

		_, err := svc.Category(context.Background(), "plumbing", "roofing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		source.AssertNotCalled(t, "ServicesByCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		svc, source := newCatalogService()
		source.On("CategoryBySlug", mock.Anything, "ghost").Return(nil, domain.ErrNotFound).Once()

		_, err := svc.Category(context.Background(), "ghost", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogService_Service(t *testing.T) {
	svc, source := newCatalogService()
	source.On("ServiceBySlug", mock.Anything, "pipe-repair").Return(&models.Service{ID: "s1", Slug: "pipe-repair"}, nil).Once()
	source.On("ServiceBySlug", mock.Anything, "ghost").Return(nil, domain.ErrNotFound).Once()
	source.On("ServiceBySlug", mock.Anything, "down").Return(nil, errors.New("boom")).Once()

	got, err := svc.Service(context.Background(), "pipe-repair")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	_, err = svc.Service(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "We couldn't find what you were looking for.", UserMessage(err))

	_, err = svc.Service(context.Background(), "down")
	assert.Error(t, err)
}
