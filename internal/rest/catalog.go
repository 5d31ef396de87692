package rest

import (
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// GetCatalog lists the classes and the symptom weights used for blending.
func (h *DiagnosisHandler) GetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.diagnosisService.Catalog()))
}
