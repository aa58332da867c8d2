package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"commerce/internal/model"
	"commerce/pkg/cache"
	"commerce/pkg/database"
	"commerce/pkg/logger"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductListCacheKey is the Redis key for the storefront product listing
const ProductListCacheKey = "products:latest"

// flexFloat accepts JSON numbers that clients may send as quoted strings,
// which the product edit form does for price and inventory.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// ProductRequest defines the structure for product creation requests.
// Numeric fields are pointers so that absent fields can be reported by name.
type ProductRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Price       *flexFloat `json:"price"`
	Inventory   *flexFloat `json:"inventory"`
	CategoryID  *uint      `json:"categoryId"`
}

// ProductUpdateRequest defines the structure for product edit requests
type ProductUpdateRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Price       *flexFloat `json:"price"`
	Inventory   *flexFloat `json:"inventory"`
	CategoryID  *uint      `json:"categoryId"`
	IsActive    *bool      `json:"isActive"`
	NewSlug     string     `json:"newSlug"`
}

// productListItem is a product joined with the reduced category shape the
// admin product table renders
type productListItem struct {
	model.Product
	Category *model.CategorySummary `json:"category"`
}

// missingField returns the name of the first absent required field, or ""
func (r *ProductRequest) missingField() string {
	switch {
	case r.Name == "":
		return "name"
	case r.Slug == "":
		return "slug"
	case r.Description == "":
		return "description"
	case r.Price == nil:
		return "price"
	case r.Inventory == nil:
		return "inventory"
	case r.CategoryID == nil:
		return "categoryId"
	}
	return ""
}

// ListProducts handles the admin product table: all products with their
// category summary, ordered by name
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing products")

	var products []model.Product
	result := database.GetDB().Preload("Category").Order("name asc").Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch products",
		})
	}

	items := make([]productListItem, 0, len(products))
	for i := range products {
		item := productListItem{Product: products[i]}
		if products[i].Category != nil {
			summary := products[i].Category.Summary()
			item.Category = &summary
		}
		item.Product.Category = nil
		items = append(items, item)
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(items)))
	return c.JSON(http.StatusOK, items)
}

// ListStoreProducts handles the storefront product listing, newest first
func ListStoreProducts(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	var products []model.Product
	hit, err := cache.Get(ctx, ProductListCacheKey, &products)
	if err != nil {
		log.Warn("Product list cache lookup failed", zap.Error(err))
	}
	if hit {
		prometheus.RecordCacheLookup(ProductListCacheKey, "hit")
		return c.JSON(http.StatusOK, products)
	}
	prometheus.RecordCacheLookup(ProductListCacheKey, "miss")

	result := database.GetDB().Order("created_at desc").Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch products",
		})
	}

	if err := cache.Set(ctx, ProductListCacheKey, products); err != nil {
		log.Warn("Failed to cache product list", zap.Error(err))
	}

	return c.JSON(http.StatusOK, products)
}

// CreateProduct handles creating a new product
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if field := req.missingField(); field != "" {
		log.Warn("Missing required field", zap.String("field", field))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Missing required field: " + field,
		})
	}

	price := float64(*req.Price)
	inventory := float64(*req.Inventory)
	if price < 0 {
		log.Warn("Invalid price", zap.Float64("price", price))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Price must be a positive number",
		})
	}
	if inventory < 0 || inventory != math.Trunc(inventory) {
		log.Warn("Invalid inventory", zap.Float64("inventory", inventory))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Inventory must be a positive integer",
		})
	}

	// The referenced category must exist at creation time
	var category model.Category
	result := database.GetDB().First(&category, *req.CategoryID)
	if result.Error != nil {
		log.Warn("Invalid category reference", zap.Uint("category_id", *req.CategoryID))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid category",
		})
	}

	product := model.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       price,
		Inventory:   int(inventory),
		CategoryID:  req.CategoryID,
	}

	result = database.GetDB().Create(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Product with this slug already exists", zap.String("slug", req.Slug))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "A product with this slug already exists",
			})
		}
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.String("slug", req.Slug),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	product.Category = &category
	if err := cache.Delete(c.Request().Context(), ProductListCacheKey); err != nil {
		log.Warn("Failed to invalidate product list cache", zap.Error(err))
	}

	prometheus.RecordResourceOperation("product", "create")
	log.Info("Product created successfully",
		zap.String("product_id", strconv.FormatUint(uint64(product.ID), 10)),
		zap.String("name", product.Name),
		zap.String("slug", product.Slug))
	return c.JSON(http.StatusCreated, product)
}

// GetProductBySlug handles retrieving a single product for the edit form
func GetProductBySlug(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Product slug is required",
		})
	}
	log.Info("Getting product by slug", zap.String("slug", slug))

	var product model.Product
	result := database.GetDB().Preload("Category").Where("slug = ?", slug).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Product not found", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Product not found",
			})
		}
		log.Error("Failed to fetch product", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch product",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// UpdateProductBySlug handles the product edit form submission. The lookup is
// by slug but the update is applied by primary key, so a slug change cannot
// make the row ambiguous.
func UpdateProductBySlug(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")
	log.Info("Updating product", zap.String("slug", slug))

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var product model.Product
	result := database.GetDB().Where("slug = ?", slug).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Product not found for update", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Product not found",
			})
		}
		log.Error("Failed to fetch product for update", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	if req.Name == "" || req.Price == nil {
		log.Warn("Missing required fields in update request", zap.String("slug", slug))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "Missing required fields",
			"required": []string{"name", "price"},
		})
	}

	product.Name = req.Name
	product.Price = float64(*req.Price)
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Inventory != nil {
		product.Inventory = int(*req.Inventory)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			product.CategoryID = nil
		} else {
			// Same existence check as creation
			var category model.Category
			if result := database.GetDB().First(&category, *req.CategoryID); result.Error != nil {
				log.Warn("Invalid category reference", zap.Uint("category_id", *req.CategoryID))
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": "Invalid category",
				})
			}
			product.CategoryID = req.CategoryID
		}
	}
	if req.NewSlug != "" {
		product.Slug = req.NewSlug
	}

	result = database.GetDB().Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("name", "slug", "description", "price", "inventory", "category_id", "is_active").
		Updates(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Product with this slug already exists", zap.String("slug", product.Slug))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "A product with this slug already exists",
			})
		}
		log.Error("Failed to update product", zap.String("slug", slug), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	// Reload with the category for the response
	if result := database.GetDB().Preload("Category").First(&product, product.ID); result.Error != nil {
		log.Error("Failed to reload updated product", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	if err := cache.Delete(c.Request().Context(), ProductListCacheKey); err != nil {
		log.Warn("Failed to invalidate product list cache", zap.Error(err))
	}

	prometheus.RecordResourceOperation("product", "update")
	log.Info("Product updated successfully",
		zap.String("product_id", strconv.FormatUint(uint64(product.ID), 10)),
		zap.String("old_slug", slug),
		zap.String("new_slug", product.Slug))
	return c.JSON(http.StatusOK, echo.Map{
		"product": product,
		"message": "Product updated successfully",
	})
}

// DeleteProduct handles deleting a product by the id query parameter
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id := c.QueryParam("id")
	if id == "" {
		log.Warn("Missing product id")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Product ID is required",
		})
	}
	log.Info("Deleting product", zap.String("product_id", id))

	productID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		log.Warn("Non-numeric product id", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	// Hard delete: a soft-deleted row would keep holding the unique slug,
	// blocking the slug from ever being reused
	result := database.GetDB().Unscoped().Delete(&model.Product{}, "id = ?", productID)
	if result.Error != nil {
		log.Error("Failed to delete product",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	if err := cache.Delete(c.Request().Context(), ProductListCacheKey); err != nil {
		log.Warn("Failed to invalidate product list cache", zap.Error(err))
	}

	prometheus.RecordResourceOperation("product", "delete")
	log.Info("Product deleted successfully",
		zap.String("product_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
