package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxClassifier runs the exported network through ONNX Runtime. Each
// session owns pre-bound input/output tensors, so a session is handed to one
// caller at a time through the pool.
type OnnxClassifier struct {
	pre        Preprocessor
	numClasses int
	pool       chan *onnxSession
	sessions   []*onnxSession
	closeOnce  sync.Once
}

type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func NewOnnxClassifier(opts Options) (*OnnxClassifier, error) {
	if opts.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	if opts.Sessions <= 0 {
		opts.Sessions = 1
	}
	if opts.InputName == "" {
		opts.InputName = "input"
	}
	if opts.OutputName == "" {
		opts.OutputName = "output"
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	c := &OnnxClassifier{
		pre:        NewPreprocessor(opts.ImageSize),
		numClasses: opts.NumClasses,
		pool:       make(chan *onnxSession, opts.Sessions),
	}

	for i := 0; i < opts.Sessions; i++ {
		s, err := newOnnxSession(opts, c.pre)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.sessions = append(c.sessions, s)
		c.pool <- s
	}

	return c, nil
}

func newOnnxSession(opts Options, pre Preprocessor) (*onnxSession, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(pre.Shape()...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.NumClasses)))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer sessionOpts.Destroy()

	if opts.Threads > 0 {
		if err := sessionOpts.SetIntraOpNumThreads(opts.Threads); err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(
		opts.ModelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		sessionOpts,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("load model %s: %w", opts.ModelPath, err)
	}

	return &onnxSession{session: session, input: input, output: output}, nil
}

func (c *OnnxClassifier) Classify(ctx context.Context, img image.Image) ([]float64, error) {
	tensor := c.pre.Tensor(img)

	var s *onnxSession
	select {
	case s = <-c.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { c.pool <- s }()

	copy(s.input.GetData(), tensor)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	logits := s.output.GetData()
	if len(logits) != c.numClasses {
		return nil, fmt.Errorf("unexpected output length %d, want %d", len(logits), c.numClasses)
	}
	return Softmax(logits), nil
}

func (c *OnnxClassifier) Device() string {
	return "cpu"
}

func (c *OnnxClassifier) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		for _, s := range c.sessions {
			if err := s.session.Destroy(); err != nil {
				errs = append(errs, err)
			}
			if err := s.input.Destroy(); err != nil {
				errs = append(errs, err)
			}
			if err := s.output.Destroy(); err != nil {
				errs = append(errs, err)
			}
		}
		c.sessions = nil
		if err := ort.DestroyEnvironment(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
