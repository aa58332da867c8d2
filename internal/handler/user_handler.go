package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"commerce/internal/model"
	"commerce/pkg/database"
	"commerce/pkg/logger"
	"commerce/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserListItem is a user row joined with its order count. The projection is
// explicit so the password hash can never leak into it.
type UserListItem struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	OrderCount int64     `json:"orderCount"`
}

// ListUsers handles the admin user table: all users with their order counts,
// newest first
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing users")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []UserListItem
	result := database.GetDB().Model(&model.User{}).
		Select("users.id, users.email, users.first_name, users.last_name, users.phone, users.is_admin, users.created_at, users.updated_at, count(orders.id) as order_count").
		Joins("left join orders on orders.user_id = users.id and orders.deleted_at is null").
		Group("users.id").
		Order("users.created_at desc").
		Find(&users)
	if result.Error != nil {
		log.Error("Failed to retrieve users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch users",
		})
	}

	log.Info("Users retrieved successfully", zap.Int("count", len(users)))
	return c.JSON(http.StatusOK, users)
}

// GetUser handles retrieving a single user by ID
func GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting user by ID", zap.String("user_id", id))

	var user model.User
	result := database.GetDB().First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("User not found", zap.String("user_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "User not found",
			})
		}
		log.Error("Failed to fetch user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to fetch user details",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles deleting a user by ID
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting user", zap.String("user_id", id))

	userID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		log.Warn("Non-numeric user id", zap.String("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "User not found",
		})
	}

	// Hard delete: a soft-deleted row would keep holding the unique email,
	// locking the removed person out of ever registering again
	result := database.GetDB().Unscoped().Delete(&model.User{}, "id = ?", userID)
	if result.Error != nil {
		log.Error("Failed to delete user",
			zap.String("user_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete user",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("User not found for deletion", zap.String("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "User not found",
		})
	}

	prometheus.RecordResourceOperation("user", "delete")
	log.Info("User deleted successfully",
		zap.String("user_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}

// Helper shared by handlers that log record identifiers
func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
