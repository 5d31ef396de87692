package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dermascan/pkg/config"
)

func remoteConfig(url string) *config.Config {
	return &config.Config{
		Classifier: config.ClassifierConfig{
			Backend:       config.BackendRemote,
			ModelName:     "efficientnet_b3",
			ModelVersion:  "efficientnet_b3_v1",
			ImageSize:     8,
			Threads:       1,
			RemoteURL:     url,
			RemoteTimeout: time.Second,
		},
	}
}

func TestBuildDiagnosisService_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logits":[0,0,0,0,0,0,0,0,0]}`))
	}))
	defer srv.Close()

	svc, clf, err := BuildDiagnosisService(remoteConfig(srv.URL))
	if err != nil {
		t.Fatalf("BuildDiagnosisService() error = %v", err)
	}
	defer clf.Close()

	status, err := svc.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status.Device != "remote" || !status.ReadyForPredictions {
		t.Fatalf("status = %+v", status)
	}
	if got := len(svc.Catalog().Classes); got != 9 {
		t.Fatalf("classes = %d", got)
	}
}

func TestBuildDiagnosisService_Errors(t *testing.T) {
	dir := t.TempDir()
	badTable := filepath.Join(dir, "table.yaml")
	if err := os.WriteFile(badTable, []byte("classes: [A, B]\nsymptoms:\n  - name: x\n    weights: [1]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	noURL := remoteConfig("")

	badTableCfg := remoteConfig("http://127.0.0.1:1")
	badTableCfg.Symptoms.TablePath = badTable

	missingModel := remoteConfig("")
	missingModel.Classifier.Backend = config.BackendONNX
	missingModel.Classifier.ModelPath = filepath.Join(dir, "missing.onnx")

	for name, cfg := range map[string]*config.Config{
		"remote without url": noURL,
		"invalid table":      badTableCfg,
		"missing model":      missingModel,
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := BuildDiagnosisService(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
