package diagnosis

import "fmt"

type Config struct {
	// how strongly the symptom contribution shifts the classifier output
	Scale float64

	// number of ranked predictions returned per request
	TopK int

	// decimal places kept in returned probabilities
	Precision int
}

const (
	defaultScale     = 0.2
	defaultTopK      = 5
	defaultPrecision = 4
)

func DefaultConfig() Config {
	return Config{
		Scale:     defaultScale,
		TopK:      defaultTopK,
		Precision: defaultPrecision,
	}
}

func (cfg Config) Validate() error {
	if cfg.Scale < 0 {
		return fmt.Errorf("scale must not be negative, got %v", cfg.Scale)
	}
	if cfg.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", cfg.TopK)
	}
	if cfg.Precision < 0 || cfg.Precision > 15 {
		return fmt.Errorf("precision must be within [0, 15], got %d", cfg.Precision)
	}
	return nil
}
