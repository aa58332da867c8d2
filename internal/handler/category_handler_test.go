package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"commerce/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	setupTestDB(t)
	e := newAdminRouter()

	rec := doJSON(e, http.MethodPost, "/api/categories", map[string]any{
		"name": "Electronics",
		"slug": "electronics",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Electronics", body["name"])
	assert.Equal(t, "electronics", body["slug"])
	assert.NotZero(t, body["id"])

	// Same slug again must conflict
	rec = doJSON(e, http.MethodPost, "/api/categories", map[string]any{
		"name": "Electronics 2",
		"slug": "electronics",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A category with this slug already exists", decodeBody(t, rec)["error"])
}

func TestCreateCategoryValidation(t *testing.T) {
	setupTestDB(t)
	e := newAdminRouter()

	tests := []struct {
		name    string
		payload map[string]any
		field   string
		message string
	}{
		{
			name:    "short name",
			payload: map[string]any{"name": "A", "slug": "valid-slug"},
			field:   "name",
			message: "Name must be at least 2 characters",
		},
		{
			name:    "short slug",
			payload: map[string]any{"name": "Valid", "slug": "a"},
			field:   "slug",
			message: "Slug must be at least 2 characters",
		},
		{
			name:    "uppercase slug",
			payload: map[string]any{"name": "Valid", "slug": "Not-Valid"},
			field:   "slug",
			message: "Slug must contain only lowercase letters, numbers, and hyphens",
		},
		{
			name:    "trailing hyphen",
			payload: map[string]any{"name": "Valid", "slug": "bad-"},
			field:   "slug",
			message: "Slug must contain only lowercase letters, numbers, and hyphens",
		},
		{
			name:    "spaces in slug",
			payload: map[string]any{"name": "Valid", "slug": "has space"},
			field:   "slug",
			message: "Slug must contain only lowercase letters, numbers, and hyphens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/categories", tt.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeBody(t, rec)
			fieldErrors, ok := body["errors"].(map[string]any)
			require.True(t, ok, "expected a field-error map")
			assert.Equal(t, tt.message, fieldErrors[tt.field])
		})
	}
}

func TestListCategoriesNewestFirst(t *testing.T) {
	setupTestDB(t)
	e := newAdminRouter()

	mustCreateCategory(t, "First", "first")
	mustCreateCategory(t, "Second", "second")

	rec := doJSON(e, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
}

func TestCategoryMenu(t *testing.T) {
	setupTestDB(t)
	e := newStoreRouter()

	mustCreateCategory(t, "Books", "books")
	mustCreateCategory(t, "Audio", "audio")

	rec := doJSON(e, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var menu []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	require.Len(t, menu, 2)

	// Menu is name-ordered and reduced to id, name, slug
	assert.Equal(t, "Audio", menu[0]["name"])
	assert.Equal(t, "audio", menu[0]["slug"])
	assert.NotContains(t, menu[0], "description")
}

func TestListCategoryProducts(t *testing.T) {
	setupTestDB(t)
	e := newStoreRouter()

	category := mustCreateCategory(t, "Books", "books")
	other := mustCreateCategory(t, "Audio", "audio")
	mustCreateProduct(t, "Novel", "novel", &category.ID)
	mustCreateProduct(t, "Headphones", "headphones", &other.ID)

	rec := doJSON(e, http.MethodGet, "/api/categories/books/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Novel", products[0]["name"])
}

func TestListCategoryProductsUnknownCategory(t *testing.T) {
	setupTestDB(t)
	e := newStoreRouter()

	rec := doJSON(e, http.MethodGet, "/api/categories/no-such/products", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decodeBody(t, rec)["error"])
}

func TestListCategoryProductsDatabaseError(t *testing.T) {
	setupTestDB(t)
	e := newStoreRouter()

	// A broken connection is a 500, not a missing category
	sqlDB, err := database.GetDB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := doJSON(e, http.MethodGet, "/api/categories/books/products", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch products", decodeBody(t, rec)["error"])
}
