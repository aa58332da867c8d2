package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"commerce/internal/middleware"
	"commerce/internal/model"
	"commerce/pkg/config"
	"commerce/pkg/database"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var metricsOnce sync.Once

// setupTestDB swaps in a fresh in-memory database for each test
func setupTestDB(t *testing.T) {
	t.Helper()

	metricsOnce.Do(func() {
		prometheus.InitMetrics(&config.Config{
			Metrics: config.MetricsConfig{Prefix: "test"},
		})
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection would otherwise get its own empty in-memory DB
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.SetDB(db)
}

// newAdminRouter wires the admin routes the way cmd/admin does
func newAdminRouter() *echo.Echo {
	e := echo.New()
	e.GET("/api/categories", ListCategories)
	e.POST("/api/categories", CreateCategory)
	e.GET("/api/products", ListProducts)
	e.POST("/api/products", CreateProduct)
	e.DELETE("/api/products", DeleteProduct)
	e.GET("/api/products/edit/:slug", GetProductBySlug)
	e.POST("/api/products/edit/:slug", UpdateProductBySlug)
	e.GET("/api/users", ListUsers)
	e.GET("/api/users/edit/:id", GetUser)
	e.DELETE("/api/users/edit/:id", DeleteUser)
	return e
}

// newStoreRouter wires the storefront routes the way cmd/store does
func newStoreRouter() *echo.Echo {
	e := echo.New()
	e.GET("/api/products", ListStoreProducts)
	e.GET("/api/categories", CategoryMenu)
	e.GET("/api/categories/:slug/products", ListCategoryProducts)
	e.POST("/api/auth/register", Register)
	e.POST("/api/auth/login", Login)
	e.GET("/api/auth/me", Me, middleware.AuthMiddleware)
	return e
}

// doJSON performs a request with a JSON body and returns the recorder
func doJSON(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a response body into a map
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// mustCreateCategory inserts a category directly
func mustCreateCategory(t *testing.T, name, slug string) model.Category {
	t.Helper()
	category := model.Category{Name: name, Slug: slug}
	require.NoError(t, database.GetDB().Create(&category).Error)
	return category
}

// mustCreateProduct inserts a product directly
func mustCreateProduct(t *testing.T, name, slug string, categoryID *uint) model.Product {
	t.Helper()
	product := model.Product{
		Name:        name,
		Slug:        slug,
		Description: "test product",
		Price:       9.99,
		Inventory:   5,
		CategoryID:  categoryID,
		IsActive:    true,
	}
	require.NoError(t, database.GetDB().Create(&product).Error)
	return product
}
