package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dermascan/internal/rest"
)

// SetupDiagnosisRoutes mounts the upload endpoints behind a body limit so
// oversized images are rejected with 413 before they are parsed.
func SetupDiagnosisRoutes(e *echo.Echo, handler *rest.DiagnosisHandler, bodyLimit string) {
	predict := e.Group("/predict", echomiddleware.BodyLimit(bodyLimit))
	predict.POST("", handler.Predict)
	predict.POST("/debug", handler.PredictDebug)

	e.GET("/classes", handler.GetCatalog)
}

func SetupProbeRoutes(e *echo.Echo, handler *rest.DiagnosisHandler) {
	e.GET("/warmup", handler.Warmup)
	e.GET("/health", handler.Health)
}

func SetupMetricsRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
