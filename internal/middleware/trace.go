package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"dermascan/business/diagnosis"
)

// RequestID tags each request with an id, honouring an incoming
// X-Request-ID, and stores it in the request context for the service logs.
func RequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(diagnosis.WithTraceID(req.Context(), id)))
		},
	})
}
