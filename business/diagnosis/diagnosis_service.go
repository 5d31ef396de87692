package diagnosis

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"dermascan/domain"
	"dermascan/pkg/logger"
)

// Classifier turns a decoded image into a probability vector indexed like
// the symptom table's classes.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]float64, error)
	Device() string
}

type ModelInfo struct {
	Name      string
	Version   string
	ImageSize int
	Threads   int
}

type DiagnosisService struct {
	classifier Classifier
	blender    *Blender
	model      ModelInfo
}

func NewDiagnosisService(classifier Classifier, blender *Blender, model ModelInfo) *DiagnosisService {
	if model.ImageSize <= 0 {
		model.ImageSize = 224
	}
	return &DiagnosisService{
		classifier: classifier,
		blender:    blender,
		model:      model,
	}
}

// Diagnose classifies img and blends in the reported symptoms.
func (s *DiagnosisService) Diagnose(
	ctx context.Context,
	img image.Image,
	flags domain.SymptomFlags,
) (domain.Diagnosis, error) {
	raw, err := s.classify(ctx, img)
	if err != nil {
		return domain.Diagnosis{}, err
	}

	preds, err := s.blender.Blend(raw, flags)
	if err != nil {
		DiagnosisTotal.WithLabelValues(outcomeBlendError).Inc()
		return domain.Diagnosis{}, fmt.Errorf("blend predictions: %w", err)
	}

	DiagnosisTotal.WithLabelValues(outcomeSuccess).Inc()
	if len(preds) > 0 {
		TopClassTotal.WithLabelValues(preds[0].Name).Inc()
	}

	top := preds
	if len(top) > 3 {
		top = top[:3]
	}
	logger.Info("Prediction successful",
		"trace_id", TraceIDFromContext(ctx),
		"top", top,
	)

	return domain.Diagnosis{
		Predictions:  preds,
		ModelVersion: s.model.Version,
	}, nil
}

// Explain is Diagnose with the full per-class breakdown.
func (s *DiagnosisService) Explain(
	ctx context.Context,
	img image.Image,
	flags domain.SymptomFlags,
) ([]domain.PredictionBreakdown, error) {
	raw, err := s.classify(ctx, img)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.blender.Explain(raw, flags)
	if err != nil {
		return nil, fmt.Errorf("blend predictions: %w", err)
	}

	logger.Debug("diagnosis_explain",
		"trace_id", TraceIDFromContext(ctx),
		"flags", flags,
		"classes", len(breakdown),
	)

	return breakdown, nil
}

func (s *DiagnosisService) classify(ctx context.Context, img image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	start := time.Now()
	raw, err := s.classifier.Classify(ctx, img)
	ClassifierLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		DiagnosisTotal.WithLabelValues(outcomeInferenceError).Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	return raw, nil
}

// selfCheck runs one forward pass on a flat grey image and checks the output
// shape, forcing any lazy runtime initialisation on the way.
func (s *DiagnosisService) selfCheck(ctx context.Context) error {
	size := s.model.ImageSize
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	raw, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return err
	}
	if want := len(s.blender.table.Classes); len(raw) != want {
		return fmt.Errorf("%w: got %d values, want %d", domain.ErrClassCountMismatch, len(raw), want)
	}
	return nil
}

func (s *DiagnosisService) Warmup(ctx context.Context) (domain.WarmupStatus, error) {
	if err := s.selfCheck(ctx); err != nil {
		logger.Error("Warmup failed", "error", err)
		return domain.WarmupStatus{Status: domain.WarmupError, Error: err.Error()}, err
	}

	logger.Info("Warmup completed successfully", "device", s.classifier.Device())
	return domain.WarmupStatus{
		Status: domain.WarmupReady,
		Device: s.classifier.Device(),
		Model:  s.model.Name,
	}, nil
}

func (s *DiagnosisService) Health(ctx context.Context) (domain.HealthStatus, error) {
	if err := s.selfCheck(ctx); err != nil {
		logger.Error("Health check failed", "error", err)
		return domain.HealthStatus{
			Status:              domain.HealthUnhealthy,
			Error:               err.Error(),
			ReadyForPredictions: false,
		}, err
	}

	return domain.HealthStatus{
		Status:              domain.HealthHealthy,
		ModelLoaded:         true,
		Device:              s.classifier.Device(),
		GoVersion:           runtime.Version(),
		InferenceThreads:    s.model.Threads,
		ReadyForPredictions: true,
	}, nil
}

// Catalog describes the classes and symptom weights the service blends with.
func (s *DiagnosisService) Catalog() domain.Catalog {
	symptoms := make([]domain.SymptomWeights, 0, len(s.blender.table.Symptoms))
	for _, sym := range s.blender.table.Symptoms {
		symptoms = append(symptoms, domain.SymptomWeights{
			Name:    sym.Name,
			Weights: append([]float64(nil), sym.Weights...),
		})
	}

	return domain.Catalog{
		Classes:  s.blender.Classes(),
		Symptoms: symptoms,
		Scale:    s.blender.cfg.Scale,
		TopK:     s.blender.cfg.TopK,
	}
}
