package domain

type WarmupStatus struct {
	Status string `json:"status"`
	Device string `json:"device,omitempty"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status              string `json:"status"`
	ModelLoaded         bool   `json:"model_loaded"`
	Device              string `json:"device,omitempty"`
	GoVersion           string `json:"go_version,omitempty"`
	InferenceThreads    int    `json:"inference_threads,omitempty"`
	ReadyForPredictions bool   `json:"ready_for_predictions"`
	Error               string `json:"error,omitempty"`
}

const (
	WarmupReady     = "ready"
	WarmupError     = "error"
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)
