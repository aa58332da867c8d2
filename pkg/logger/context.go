package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FromContext retrieves the request-scoped logger placed in the context by the
// request-id middleware, falling back to the global logger
func FromContext(c echo.Context) *zap.Logger {
	if logger, ok := c.Get("logger").(*zap.Logger); ok {
		return logger
	}

	if requestID, ok := c.Get("request_id").(string); ok {
		return GetLogger().With(zap.String("request_id", requestID))
	}

	return GetLogger()
}
