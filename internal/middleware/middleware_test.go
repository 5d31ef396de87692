package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"dermascan/business/diagnosis"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	return e
}

func TestErrorHandler(t *testing.T) {
	e := newEcho()
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("db exploded")
	})
	e.POST("/upload", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, echomiddleware.BodyLimit("1K"))

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
		wantTag  string
	}{
		{"not found", http.MethodGet, "/missing", "", http.StatusNotFound, "Not Found", "NOT_FOUND"},
		{"method not allowed", http.MethodDelete, "/boom", "", http.StatusMethodNotAllowed, "Method Not Allowed", "METHOD_NOT_ALLOWED"},
		{"internal", http.MethodGet, "/boom", "", http.StatusInternalServerError, "Internal Server Error", "INTERNAL_SERVER_ERROR"},
		{"too large", http.MethodPost, "/upload", strings.Repeat("x", 4096), http.StatusRequestEntityTooLarge, "Uploaded file is too large", "REQUEST_ENTITY_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
			}
			if body["success"] != false || body["error"] != tt.wantErr || body["code"] != tt.wantTag {
				t.Fatalf("body = %v", body)
			}
			if strings.Contains(rec.Body.String(), "db exploded") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestErrorHandler_Head(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodHead, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("code = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	e := newEcho()
	e.Use(RequestID())

	var seen string
	e.GET("/id", func(c echo.Context) error {
		seen = diagnosis.TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
	header := rec.Header().Get(echo.HeaderXRequestID)
	if header == "" || seen != header || len(header) != 36 {
		t.Fatalf("header = %q, context = %q", header, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(echo.HeaderXRequestID, "client-supplied")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if seen != "client-supplied" {
		t.Fatalf("context id = %q, want client-supplied", seen)
	}
}

func TestMetricsAndRequestLogger(t *testing.T) {
	e := newEcho()
	e.Use(RequestID(), RequestLogger(), Metrics())
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, target := range []string{"/ok", "/nope"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if target == "/ok" && rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}
