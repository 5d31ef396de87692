package classifier

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func newRemote(t *testing.T, handler http.HandlerFunc) *RemoteClassifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Backend:       BackendRemote,
		NumClasses:    3,
		ImageSize:     4,
		RemoteURL:     srv.URL + "/classify",
		RemoteTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c.(*RemoteClassifier)
}

func TestRemoteClassifier_Probabilities(t *testing.T) {
	var got remoteRequest
	c := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			http.Error(w, "bad route", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probabilities":[0.2,0.5,0.3]}`))
	})

	probs, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(probs) != 3 || probs[1] != 0.5 {
		t.Fatalf("probs = %v", probs)
	}
	if len(got.Image) != 3*4*4 || len(got.Shape) != 4 || got.Shape[2] != 4 {
		t.Fatalf("request tensor len=%d shape=%v", len(got.Image), got.Shape)
	}
	if c.Device() != "remote" {
		t.Fatalf("Device() = %q", c.Device())
	}
}

func TestRemoteClassifier_Logits(t *testing.T) {
	c := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logits":[0,0,5]}`))
	})

	probs, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !(probs[2] > probs[0] && probs[0] == probs[1]) {
		t.Fatalf("probs = %v", probs)
	}
}

func TestRemoteClassifier_Msgpack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != mimeMsgpack {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		var req remoteRequest
		if err := msgpack.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Image) != 3*4*4 {
			w.Header().Set("Content-Type", mimeMsgpack)
			w.WriteHeader(http.StatusBadRequest)
			_ = msgpack.NewEncoder(w).Encode(remoteResponse{Error: "bad tensor"})
			return
		}
		w.Header().Set("Content-Type", mimeMsgpack)
		_ = msgpack.NewEncoder(w).Encode(remoteResponse{Probabilities: []float64{0.1, 0.1, 0.8}})
	}))
	defer srv.Close()

	c, err := NewRemoteClassifier(Options{
		NumClasses:  3,
		ImageSize:   4,
		RemoteURL:   srv.URL,
		RemoteCodec: CodecMsgpack,
	})
	if err != nil {
		t.Fatalf("NewRemoteClassifier() error = %v", err)
	}

	probs, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 6, 6)))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if probs[2] != 0.8 {
		t.Fatalf("probs = %v", probs)
	}

	if _, err := NewRemoteClassifier(Options{NumClasses: 3, ImageSize: 4, RemoteURL: srv.URL, RemoteCodec: "protobuf"}); err == nil {
		t.Fatalf("expected unknown codec error")
	}
}

func TestRemoteClassifier_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"cuda out of memory"}`, "cuda out of memory"},
		{"bad gateway", http.StatusBadGateway, `oops`, "status 502"},
		{"wrong length", http.StatusOK, `{"probabilities":[1]}`, "returned 1 values"},
		{"empty", http.StatusOK, `{}`, "returned 0 values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newRemote(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Classify(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("Classify() error = %v, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no classes", Options{Backend: BackendRemote, ImageSize: 224, RemoteURL: "http://x"}},
		{"no image size", Options{Backend: BackendRemote, NumClasses: 9, RemoteURL: "http://x"}},
		{"unknown backend", Options{Backend: "tflite", NumClasses: 9, ImageSize: 224}},
		{"remote without url", Options{Backend: BackendRemote, NumClasses: 9, ImageSize: 224}},
		{"onnx without model", Options{Backend: BackendONNX, NumClasses: 9, ImageSize: 224}},
		{"onnx missing artifact", Options{Backend: BackendONNX, NumClasses: 9, ImageSize: 224, ModelPath: "/nonexistent/model.onnx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Fatalf("New(%+v) expected error", tt.opts)
			}
		})
	}
}
