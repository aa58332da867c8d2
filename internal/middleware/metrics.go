package middleware

import (
	"strconv"
	"time"

	"commerce/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records a counter and duration histogram sample per
// request, labelled by method, route pattern and status
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		method := c.Request().Method
		path := c.Path()
		status := strconv.Itoa(c.Response().Status)

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		return err
	}
}
