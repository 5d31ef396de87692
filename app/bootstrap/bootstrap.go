// Package bootstrap assembles the diagnosis service from configuration. The
// HTTP server and the CLI share it so both run the same model and weights.
package bootstrap

import (
	"fmt"

	"dermascan/business/diagnosis"
	"dermascan/internal/classifier"
	"dermascan/pkg/config"
	"dermascan/pkg/logger"
)

// BuildDiagnosisService loads the symptom table and the classifier. The
// returned classifier must be closed by the caller.
func BuildDiagnosisService(cfg *config.Config) (*diagnosis.DiagnosisService, classifier.Classifier, error) {
	table, blendCfg, err := diagnosis.LoadTable(cfg.Symptoms.TablePath, diagnosis.DefaultConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("load symptom table: %w", err)
	}

	blender, err := diagnosis.NewBlender(table, blendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build blender: %w", err)
	}

	clf, err := classifier.New(classifier.Options{
		Backend:       cfg.Classifier.Backend,
		NumClasses:    len(table.Classes),
		ImageSize:     cfg.Classifier.ImageSize,
		ModelPath:     cfg.Classifier.ModelPath,
		LibraryPath:   cfg.Classifier.OrtLibraryPath,
		InputName:     cfg.Classifier.InputName,
		OutputName:    cfg.Classifier.OutputName,
		Threads:       cfg.Classifier.Threads,
		Sessions:      cfg.Classifier.Sessions,
		RemoteURL:     cfg.Classifier.RemoteURL,
		RemoteTimeout: cfg.Classifier.RemoteTimeout,
		RemoteCodec:   cfg.Classifier.RemoteCodec,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load classifier: %w", err)
	}

	logger.Info("Classifier loaded",
		"backend", cfg.Classifier.Backend,
		"device", clf.Device(),
		"model", cfg.Classifier.ModelName,
		"classes", len(table.Classes),
		"symptoms", len(table.Symptoms),
	)

	svc := diagnosis.NewDiagnosisService(clf, blender, diagnosis.ModelInfo{
		Name:      cfg.Classifier.ModelName,
		Version:   cfg.Classifier.ModelVersion,
		ImageSize: cfg.Classifier.ImageSize,
		Threads:   cfg.Classifier.Threads,
	})
	return svc, clf, nil
}
