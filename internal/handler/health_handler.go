package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck returns a handler for the health check endpoint
func HealthCheck(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": service,
		})
	}
}
