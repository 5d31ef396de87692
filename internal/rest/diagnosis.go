package rest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/inconshreveable/log15"
	"github.com/labstack/echo/v4"

	"dermascan/business/diagnosis"
	"dermascan/domain"
	"dermascan/internal/imaging"
	"dermascan/pkg/logger"
	"dermascan/pkg/response"
)

const imageField = "image"

type DiagnosisService interface {
	Diagnose(ctx context.Context, img image.Image, flags domain.SymptomFlags) (domain.Diagnosis, error)
	Explain(ctx context.Context, img image.Image, flags domain.SymptomFlags) ([]domain.PredictionBreakdown, error)
	Warmup(ctx context.Context) (domain.WarmupStatus, error)
	Health(ctx context.Context) (domain.HealthStatus, error)
	Catalog() domain.Catalog
}

type DiagnosisHandler struct {
	diagnosisService DiagnosisService
	validator        *validator.Validate
	timeout          time.Duration
	uploadExtensions []string
	maxImagePixels   int
	symptomNames     []string
}

func NewDiagnosisHandler(
	diagnosisService DiagnosisService,
	timeout time.Duration,
	uploadExtensions []string,
	maxImagePixels int,
) *DiagnosisHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	catalog := diagnosisService.Catalog()
	names := make([]string, 0, len(catalog.Symptoms))
	for _, s := range catalog.Symptoms {
		names = append(names, s.Name)
	}

	return &DiagnosisHandler{
		diagnosisService: diagnosisService,
		validator:        validator.New(),
		timeout:          timeout,
		uploadExtensions: append([]string(nil), uploadExtensions...),
		maxImagePixels:   maxImagePixels,
		symptomNames:     names,
	}
}

// Predict accepts a multipart upload with an "image" file and optional
// integer symptom fields, and returns the top blended predictions.
func (h *DiagnosisHandler) Predict(c echo.Context) error {
	img, flags, failure := h.readDiagnosisRequest(c)
	if failure != nil {
		return failure
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.diagnosisService.Diagnose(ctx, img, flags)
	if err != nil {
		return h.diagnosisFailed(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(response.Payload{
		"predictions":   result.Predictions,
		"model_version": result.ModelVersion,
	}))
}

// PredictDebug takes the same input as Predict and returns the full
// per-class breakdown of the blend.
func (h *DiagnosisHandler) PredictDebug(c echo.Context) error {
	img, flags, failure := h.readDiagnosisRequest(c)
	if failure != nil {
		return failure
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	breakdown, err := h.diagnosisService.Explain(ctx, img, flags)
	if err != nil {
		return h.diagnosisFailed(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(response.Payload{
		"symptoms":    flags,
		"predictions": breakdown,
	}))
}

// readDiagnosisRequest returns a non-nil error when the response has already
// been decided: either a written 4xx body or an error for the HTTP error
// handler.
func (h *DiagnosisHandler) readDiagnosisRequest(c echo.Context) (image.Image, domain.SymptomFlags, error) {
	data, err := h.readUpload(c)
	if err != nil {
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			return nil, nil, httpErr
		case errors.Is(err, domain.ErrEmptyFilename):
			return nil, nil, c.JSON(http.StatusBadRequest,
				response.Error("EMPTY_FILENAME", "No file selected", nil))
		case errors.Is(err, domain.ErrImageMissing):
			return nil, nil, c.JSON(http.StatusBadRequest,
				response.Error("IMAGE_MISSING", "Please upload an image file", nil).
					With("allowed_extensions", h.uploadExtensions))
		default:
			requestLogger(c).Error("Failed to read upload", "error", err)
			return nil, nil, c.JSON(http.StatusBadRequest,
				response.Error("INVALID_IMAGE", "Invalid image file", err.Error()).
					With("allowed_formats", imaging.AllowedFormats()))
		}
	}

	img, _, err := imaging.DecodeLimited(data, h.maxImagePixels)
	if err != nil {
		requestLogger(c).Warn("Rejected image upload", "error", err)
		return nil, nil, c.JSON(http.StatusBadRequest,
			response.Error("INVALID_IMAGE", "Invalid image file", err.Error()).
				With("allowed_formats", imaging.AllowedFormats()))
	}

	flags, err := h.parseSymptoms(c)
	if err != nil {
		return nil, nil, c.JSON(http.StatusBadRequest,
			response.Error("INVALID_SYMPTOM", "Invalid symptom value", err.Error()))
	}

	return img, flags, nil
}

func (h *DiagnosisHandler) readUpload(c echo.Context) ([]byte, error) {
	file, err := c.FormFile(imageField)
	if err != nil {
		if tooLarge := asRequestTooLarge(err); tooLarge != nil {
			return nil, tooLarge
		}
		// a part sent with filename="" is parsed as a plain form value
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value[imageField]; ok {
				return nil, domain.ErrEmptyFilename
			}
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, domain.ErrImageMissing
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrImageMissing, err)
	}
	if file.Filename == "" {
		return nil, domain.ErrEmptyFilename
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func asRequestTooLarge(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
		return httpErr
	}
	return nil
}

// parseSymptoms reads one integer field per known symptom. Absent or empty
// fields count as zero; unknown fields are ignored.
func (h *DiagnosisHandler) parseSymptoms(c echo.Context) (domain.SymptomFlags, error) {
	flags := make(domain.SymptomFlags, len(h.symptomNames))
	for _, name := range h.symptomNames {
		raw := c.FormValue(name)
		if raw == "" {
			flags[name] = 0
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidSymptom, name, raw)
		}
		if err := h.validator.Var(v, "gte=0"); err != nil {
			return nil, fmt.Errorf("%w: %s=%d", domain.ErrNegativeSymptom, name, v)
		}
		flags[name] = v
	}
	return flags, nil
}

// requestLogger tags every record with the request's trace id.
func requestLogger(c echo.Context) log15.Logger {
	return logger.With("trace_id", diagnosis.TraceIDFromContext(c.Request().Context()))
}

func (h *DiagnosisHandler) diagnosisFailed(c echo.Context, err error) error {
	requestLogger(c).Error("Prediction error", "error", err)
	return c.JSON(http.StatusInternalServerError,
		response.Error("DIAGNOSIS_FAILED", "Diagnosis failed", failureDetail(err)))
}

// failureDetail maps an internal error to a short client-facing string.
func failureDetail(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "inference timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, domain.ErrClassCountMismatch):
		return domain.ErrClassCountMismatch.Error()
	case errors.Is(err, domain.ErrDegenerateDistribution):
		return domain.ErrDegenerateDistribution.Error()
	case errors.Is(err, domain.ErrInference):
		return domain.ErrInference.Error()
	default:
		return "internal error"
	}
}
