package router

import (
	"bytes"
	"context"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"dermascan/business/diagnosis"
	"dermascan/internal/middleware"
	"dermascan/internal/rest"
)

type flatClassifier struct{}

func (flatClassifier) Classify(ctx context.Context, img image.Image) ([]float64, error) {
	out := make([]float64, 9)
	for i := range out {
		out[i] = 1.0 / 9
	}
	return out, nil
}

func (flatClassifier) Device() string { return "cpu" }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	blender, err := diagnosis.NewBlender(diagnosis.DefaultTable(), diagnosis.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	svc := diagnosis.NewDiagnosisService(flatClassifier{}, blender, diagnosis.ModelInfo{Name: "m", Version: "v", ImageSize: 8})
	h := rest.NewDiagnosisHandler(svc, time.Second, []string{".png"}, 0)

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	SetupDiagnosisRoutes(e, h, "1K")
	SetupProbeRoutes(e, h)
	SetupMetricsRoutes(e)
	return e
}

func TestRoutes(t *testing.T) {
	e := newServer(t)

	tests := []struct {
		method   string
		target   string
		wantCode int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/warmup", http.StatusOK},
		{http.MethodGet, "/classes", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
		{http.MethodPost, "/predict", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestPredict_BodyLimit(t *testing.T) {
	e := newServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("image", "big.png")
	_, _ = part.Write(bytes.Repeat([]byte{0x89}, 4096))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/predict", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}
