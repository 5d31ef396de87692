package domain

import "errors"

// Request validation errors.
var (
	ErrImageMissing           = errors.New("image is missing")
	ErrEmptyFilename          = errors.New("no file selected")
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	ErrInvalidImage           = errors.New("invalid image")
	ErrInvalidSymptom         = errors.New("invalid symptom value")
	ErrNegativeSymptom        = errors.New("symptom value must not be negative")
)

// Inference errors.
var (
	ErrInference              = errors.New("inference failed")
	ErrClassCountMismatch     = errors.New("classifier output does not match class count")
	ErrDegenerateDistribution = errors.New("adjusted probabilities do not sum to a positive value")
)

var ErrInvalidSymptomTable = errors.New("invalid symptom table")
