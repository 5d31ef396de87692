package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Warmup forces one forward pass so the first real request is not slow.
func (h *DiagnosisHandler) Warmup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status, err := h.diagnosisService.Warmup(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, status)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *DiagnosisHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status, err := h.diagnosisService.Health(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, status)
	}
	return c.JSON(http.StatusOK, status)
}
