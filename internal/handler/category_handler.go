package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"commerce/internal/model"
	"commerce/pkg/cache"
	"commerce/pkg/database"
	"commerce/pkg/logger"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryMenuCacheKey is the Redis key for the storefront category menu
const CategoryMenuCacheKey = "categories:menu"

// slugPattern is the URL-safe identifier format shared by categories and products
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CategoryRequest defines the structure for category creation requests
type CategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// ListCategories handles retrieving all categories, newest first
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing categories")

	var categories []model.Category
	result := database.GetDB().Order("created_at desc").Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch categories",
		})
	}

	log.Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles creating a new category
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new category")

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// Field-level validation, returned as a per-field error map
	fieldErrors := echo.Map{}
	if len(req.Name) < 2 {
		fieldErrors["name"] = "Name must be at least 2 characters"
	}
	if len(req.Slug) < 2 {
		fieldErrors["slug"] = "Slug must be at least 2 characters"
	} else if !slugPattern.MatchString(req.Slug) {
		fieldErrors["slug"] = "Slug must contain only lowercase letters, numbers, and hyphens"
	}
	if len(fieldErrors) > 0 {
		log.Warn("Category validation failed",
			zap.String("name", req.Name),
			zap.String("slug", req.Slug))
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": fieldErrors})
	}

	category := model.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	// The unique index on slug is the sole authority on duplicates; a
	// violation surfaces as gorm.ErrDuplicatedKey.
	result := database.GetDB().Create(&category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Category with this slug already exists", zap.String("slug", req.Slug))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "A category with this slug already exists",
			})
		}
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.String("slug", req.Slug),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create category",
		})
	}

	// Storefront menu is stale now
	if err := cache.Delete(c.Request().Context(), CategoryMenuCacheKey); err != nil {
		log.Warn("Failed to invalidate category menu cache", zap.Error(err))
	}

	prometheus.RecordResourceOperation("category", "create")
	log.Info("Category created successfully",
		zap.String("category_id", strconv.FormatUint(uint64(category.ID), 10)),
		zap.String("name", category.Name),
		zap.String("slug", category.Slug))
	return c.JSON(http.StatusCreated, category)
}

// CategoryMenu handles the storefront navigation menu: the category list
// reduced to id, name and slug, served read-through from the cache
func CategoryMenu(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	var menu []model.CategorySummary
	hit, err := cache.Get(ctx, CategoryMenuCacheKey, &menu)
	if err != nil {
		log.Warn("Category menu cache lookup failed", zap.Error(err))
	}
	if hit {
		prometheus.RecordCacheLookup(CategoryMenuCacheKey, "hit")
		return c.JSON(http.StatusOK, menu)
	}
	prometheus.RecordCacheLookup(CategoryMenuCacheKey, "miss")

	result := database.GetDB().Model(&model.Category{}).
		Order("name asc").
		Find(&menu)
	if result.Error != nil {
		log.Error("Failed to retrieve category menu", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch categories",
		})
	}

	if err := cache.Set(ctx, CategoryMenuCacheKey, menu); err != nil {
		log.Warn("Failed to cache category menu", zap.Error(err))
	}

	return c.JSON(http.StatusOK, menu)
}

// ListCategoryProducts handles the storefront category page: all products in
// the category identified by slug, newest first
func ListCategoryProducts(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")
	log.Info("Listing products for category", zap.String("slug", slug))

	var category model.Category
	result := database.GetDB().Where("slug = ?", slug).First(&category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Category not found", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Category not found",
			})
		}
		log.Error("Failed to fetch category", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch products",
		})
	}

	var products []model.Product
	result = database.GetDB().
		Where("category_id = ?", category.ID).
		Order("created_at desc").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to retrieve category products",
			zap.String("slug", slug),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch products",
		})
	}

	log.Info("Category products retrieved successfully",
		zap.String("slug", slug),
		zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}
