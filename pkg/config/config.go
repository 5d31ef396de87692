package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Classifier ClassifierConfig
	Symptoms   SymptomsConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port             string
	AllowedOrigins   []string
	MaxUploadMB      int
	MaxImagePixels   int
	UploadExtensions []string
	RequestTimeout   time.Duration
}

type ClassifierConfig struct {
	Backend        string
	ModelPath      string
	ModelName      string
	ModelVersion   string
	OrtLibraryPath string
	InputName      string
	OutputName     string
	ImageSize      int
	Threads        int
	Sessions       int
	RemoteURL      string
	RemoteTimeout  time.Duration
	RemoteCodec    string
}

type SymptomsConfig struct {
	// TablePath optionally points to a YAML or .toml file replacing the
	// built-in class list and symptom weights.
	TablePath string
}

const (
	BackendONNX   = "onnx"
	BackendRemote = "remote"
)

var defaultAllowedOrigins = []string{
	"https://dermascan.me",
	"https://www.dermascan.me",
	"http://dermascan.me",
	"http://www.dermascan.me",
	"https://api.dermascan.me",
	"http://localhost:5000",
	"http://localhost:3000",
	"https://dermasca.netlify.app",
	"https://*.netlify.app",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	maxUpload, err := getEnvInt("MAX_UPLOAD_MB", 5)
	if err != nil {
		return nil, err
	}
	maxPixels, err := getEnvInt("MAX_IMAGE_PIXELS", 89_478_485)
	if err != nil {
		return nil, err
	}
	imageSize, err := getEnvInt("IMAGE_SIZE", 224)
	if err != nil {
		return nil, err
	}
	threads, err := getEnvInt("INFERENCE_THREADS", 1)
	if err != nil {
		return nil, err
	}
	sessions, err := getEnvInt("INFERENCE_SESSIONS", 1)
	if err != nil {
		return nil, err
	}
	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	remoteTimeout, err := getEnvDuration("REMOTE_CLASSIFIER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "DermaScan API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:             getEnv("PORT", "10000"),
			AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", defaultAllowedOrigins),
			MaxUploadMB:      maxUpload,
			MaxImagePixels:   maxPixels,
			UploadExtensions: getEnvList("UPLOAD_EXTENSIONS", []string{".jpg", ".jpeg", ".png"}),
			RequestTimeout:   requestTimeout,
		},
		Classifier: ClassifierConfig{
			Backend:        strings.ToLower(getEnv("CLASSIFIER_BACKEND", BackendONNX)),
			ModelPath:      getEnv("MODEL_PATH", "models/efficientnet_b3_epoch_10.onnx"),
			ModelName:      getEnv("MODEL_NAME", "efficientnet_b3"),
			ModelVersion:   getEnv("MODEL_VERSION", "efficientnet_b3_v1"),
			OrtLibraryPath: getEnv("ORT_LIBRARY_PATH", ""),
			InputName:      getEnv("MODEL_INPUT_NAME", "input"),
			OutputName:     getEnv("MODEL_OUTPUT_NAME", "output"),
			ImageSize:      imageSize,
			Threads:        threads,
			Sessions:       sessions,
			RemoteURL:      getEnv("REMOTE_CLASSIFIER_URL", ""),
			RemoteTimeout:  remoteTimeout,
			RemoteCodec:    strings.ToLower(getEnv("REMOTE_CLASSIFIER_CODEC", "json")),
		},
		Symptoms: SymptomsConfig{
			TablePath: getEnv("SYMPTOM_TABLE_PATH", ""),
		},
	}

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, fmt.Errorf("invalid port %q", cfg.Server.Port)
	}

	if cfg.Server.MaxUploadMB <= 0 {
		return nil, errors.New("max upload size must be positive")
	}

	if cfg.Server.MaxImagePixels <= 0 {
		return nil, errors.New("max image pixels must be positive")
	}

	if cfg.Classifier.ImageSize <= 0 {
		return nil, errors.New("image size must be positive")
	}

	if cfg.Classifier.Sessions <= 0 {
		return nil, errors.New("inference sessions must be positive")
	}

	switch cfg.Classifier.Backend {
	case BackendONNX:
		if cfg.Classifier.ModelPath == "" {
			return nil, errors.New("missing model path")
		}
	case BackendRemote:
		if cfg.Classifier.RemoteURL == "" {
			return nil, errors.New("missing remote classifier url")
		}
		if c := cfg.Classifier.RemoteCodec; c != "json" && c != "msgpack" {
			return nil, fmt.Errorf("unknown remote classifier codec %q", c)
		}
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Classifier.Backend)
	}

	return cfg, nil
}

// BodyLimit renders the upload cap in the format echo's BodyLimit expects.
func (s ServerConfig) BodyLimit() string {
	return fmt.Sprintf("%dM", s.MaxUploadMB)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
