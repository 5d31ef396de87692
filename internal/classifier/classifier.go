// Package classifier adapts image classification backends to the
// probability-vector contract the diagnosis service consumes.
package classifier

import (
	"context"
	"fmt"
	"image"
	"time"
)

const (
	BackendONNX   = "onnx"
	BackendRemote = "remote"
)

type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]float64, error)
	Device() string
	Close() error
}

type Options struct {
	Backend    string
	NumClasses int
	ImageSize  int

	// onnx
	ModelPath   string
	LibraryPath string
	InputName   string
	OutputName  string
	Threads     int
	Sessions    int

	// remote
	RemoteURL     string
	RemoteTimeout time.Duration
	RemoteCodec   string // json (default) or msgpack
}

// New builds the configured backend. Any error here means the service must
// not start.
func New(opts Options) (Classifier, error) {
	if opts.NumClasses <= 0 {
		return nil, fmt.Errorf("number of classes must be positive, got %d", opts.NumClasses)
	}
	if opts.ImageSize <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %d", opts.ImageSize)
	}

	switch opts.Backend {
	case BackendONNX, "":
		return NewOnnxClassifier(opts)
	case BackendRemote:
		return NewRemoteClassifier(opts)
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", opts.Backend)
	}
}
