package domain

// SymptomFlags maps a symptom key to the count the caller reported.
// Missing keys count as zero.
type SymptomFlags map[string]int

type Prediction struct {
	Name string  `json:"name"`
	Prob float64 `json:"prob"`
}

type Diagnosis struct {
	Predictions  []Prediction `json:"predictions"`
	ModelVersion string       `json:"model_version"`
}

type PredictionBreakdown struct {
	Name          string  `json:"name"`
	Raw           float64 `json:"raw"`            // classifier softmax output
	Contribution  float64 `json:"contribution"`   // Σ flag·weight, before scaling
	PreNormalized float64 `json:"pre_normalized"` // raw + scale·contribution
	Adjusted      float64 `json:"adjusted"`       // pre_normalized / Σ pre_normalized
	Prob          float64 `json:"prob"`           // adjusted, rounded
}

type SymptomWeights struct {
	Name    string    `json:"name"`
	Weights []float64 `json:"weights"`
}

type Catalog struct {
	Classes  []string         `json:"classes"`
	Symptoms []SymptomWeights `json:"symptoms"`
	Scale    float64          `json:"scale"`
	TopK     int              `json:"top_k"`
}
