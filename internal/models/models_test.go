package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentRef_Unmarshal(t *testing.T) {
	t.Run("StringID", func(t *testing.T) {
		var c Category
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","name":"Pipes","parent":"p1"}`), &c))
		assert.Equal(t, "p1", c.Parent.ID)
		assert.False(t, c.IsTopLevel())
	})

	t.Run("EmbeddedObject", func(t *testing.T) {
		var c Category
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","name":"Pipes","parent":{"_id":"p1","name":"Plumbing"}}`), &c))
		assert.Equal(t, "p1", c.Parent.ID)
		assert.Equal(t, "Plumbing", c.Parent.Name)
	})

	t.Run("ObjectWithPlainID", func(t *testing.T) {
		var c Category
		require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","parent":{"id":"p1"}}`), &c))
		assert.Equal(t, "c1", c.ID)
		assert.Equal(t, "p1", c.Parent.ID)
	})

	t.Run("NullAndMissing", func(t *testing.T) {
		var withNull, missing Category
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","parent":null}`), &withNull))
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"p2"}`), &missing))
		assert.True(t, withNull.IsTopLevel())
		assert.True(t, missing.IsTopLevel())
	})

	t.Run("BothShapesCompareEqual", func(t *testing.T) {
		var a, b Category
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"s1","parent":"p1"}`), &a))
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"s2","parent":{"_id":"p1","name":"Plumbing"}}`), &b))
		assert.Equal(t, a.Parent.ID, b.Parent.ID)
	})

}

func TestService_Unmarshal(t *testing.T) {
	raw := `{
		"_id": "svc1",
		"slug": "pipe-repair",
		"title": "Pipe Repair",
		"category": {"_id": "c1", "name": "Pipes", "parent": {"_id": "p1", "name": "Plumbing"}},
		"price": 500,
		"rating": 4.5,
		"images": [{"url": "a.jpg"}, {"url": "b.jpg", "isPrimary": true}],
		"featured": true,
		"provider": {"name": "Ram", "verified": true}
	}`

	var s Service
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "svc1", s.ID)
	assert.Equal(t, "c1", s.CategoryID())
	assert.Equal(t, "p1", s.Category.Parent.ID)
	assert.Equal(t, "b.jpg", s.PrimaryImage())
	assert.True(t, s.IsRated())
	assert.True(t, s.Provider.Verified)

	t.Run("CategoryAsBareID", func(t *testing.T) {
		var bare Service
		require.NoError(t, json.Unmarshal([]byte(`{"id":"svc2","category":"c9"}`), &bare))
		assert.Equal(t, "svc2", bare.ID)
		assert.Equal(t, "c9", bare.CategoryID())
	})

	t.Run("MalformedCategoryIsDropped", func(t *testing.T) {
		for _, raw := range []string{
			`{"_id":"svc4","title":"Odd","category":7}`,
			`{"_id":"svc4","title":"Odd","category":{"_id":"c1","parent":42}}`,
		} {
			var odd Service
			require.NoError(t, json.Unmarshal([]byte(raw), &odd), raw)
			assert.Equal(t, "svc4", odd.ID)
			assert.Nil(t, odd.Category)
			assert.Equal(t, "", odd.CategoryID())
		}
	})

	t.Run("NoCategory", func(t *testing.T) {
		var none Service
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"svc3"}`), &none))
		assert.Equal(t, "", none.CategoryID())
		assert.Equal(t, "", none.PrimaryImage())
		assert.False(t, none.IsRated())
	})
}

func TestCategoryDetail_SkipsMalformedSubcategories(t *testing.T) {
	var d CategoryDetail
	raw := `{"category":{"_id":"p1","name":"Plumbing"},"subcategories":[{"_id":"c1","parent":"p1"},{"_id":"c2","parent":42}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "p1", d.Category.ID)
	require.Len(t, d.Subcategories, 1)
	assert.Equal(t, "c1", d.Subcategories[0].ID)
}

func TestPreferences_Merge(t *testing.T) {
	base := Preferences{Name: "Sita", Email: "sita@example.com", Location: "Lalitpur"}
	got := base.Merge(Preferences{Phone: "9800000000", Location: "Kathmandu"})

	assert.Equal(t, "Sita", got.Name)
	assert.Equal(t, "sita@example.com", got.Email)
	assert.Equal(t, "9800000000", got.Phone)
	assert.Equal(t, "Kathmandu", got.Location)
}

func TestNewCatalogEntry(t *testing.T) {
	entry := NewCatalogEntry(Service{
		ID:       "svc1",
		Category: &CategoryRef{ID: "c1", Name: "Pipes"},
		Images:   []Image{{URL: "a.jpg"}},
	})
	assert.Equal(t, "a.jpg", entry.Image)
	assert.Equal(t, "Pipes", entry.CategoryName)
}

func TestTimeSlotLabels(t *testing.T) {
	require.Len(t, TimeSlotLabels, 10)
	assert.Equal(t, "8AM - 9AM", TimeSlotLabels[0])
	assert.Equal(t, "5PM - 6PM", TimeSlotLabels[9])
}
