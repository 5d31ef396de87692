package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"

	mimeMsgpack = "application/msgpack"
)

// RemoteClassifier delegates the forward pass to an external inference
// server. Preprocessing stays local so every backend sees identical input.
type RemoteClassifier struct {
	client     *resty.Client
	url        string
	codec      string
	pre        Preprocessor
	numClasses int
}

type remoteRequest struct {
	Image []float32 `json:"image" msgpack:"image"`
	Shape []int64   `json:"shape" msgpack:"shape"`
}

type remoteResponse struct {
	Probabilities []float64 `json:"probabilities" msgpack:"probabilities"`
	Logits        []float32 `json:"logits" msgpack:"logits"`
	Error         string    `json:"error" msgpack:"error"`
}

func NewRemoteClassifier(opts Options) (*RemoteClassifier, error) {
	if opts.RemoteURL == "" {
		return nil, errors.New("remote classifier url is required")
	}
	timeout := opts.RemoteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	codec := opts.RemoteCodec
	contentType := "application/json"
	switch codec {
	case "", CodecJSON:
		codec = CodecJSON
	case CodecMsgpack:
		contentType = mimeMsgpack
	default:
		return nil, fmt.Errorf("unknown remote classifier codec %q", codec)
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", contentType).
		SetHeader("Accept", contentType)

	return &RemoteClassifier{
		client:     client,
		url:        opts.RemoteURL,
		codec:      codec,
		pre:        NewPreprocessor(opts.ImageSize),
		numClasses: opts.NumClasses,
	}, nil
}

func (c *RemoteClassifier) Classify(ctx context.Context, img image.Image) ([]float64, error) {
	payload := remoteRequest{Image: c.pre.Tensor(img), Shape: c.pre.Shape()}

	var result, failure remoteResponse

	req := c.client.R().SetContext(ctx)
	if c.codec == CodecMsgpack {
		body, err := msgpack.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode remote request: %w", err)
		}
		req.SetBody(body)
	} else {
		req.SetBody(payload).SetResult(&result).SetError(&failure)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("call remote classifier: %w", err)
	}

	if c.codec == CodecMsgpack {
		target := &result
		if resp.StatusCode() != http.StatusOK {
			target = &failure
		}
		if err := msgpack.Unmarshal(resp.Body(), target); err != nil && target == &result {
			return nil, fmt.Errorf("decode remote response: %w", err)
		}
	}

	if resp.StatusCode() != http.StatusOK {
		if failure.Error != "" {
			return nil, fmt.Errorf("remote classifier status %d: %s", resp.StatusCode(), failure.Error)
		}
		return nil, fmt.Errorf("remote classifier status %d", resp.StatusCode())
	}

	probs := result.Probabilities
	if len(probs) == 0 && len(result.Logits) > 0 {
		probs = Softmax(result.Logits)
	}
	if len(probs) != c.numClasses {
		return nil, fmt.Errorf("remote classifier returned %d values, want %d", len(probs), c.numClasses)
	}

	return probs, nil
}

func (c *RemoteClassifier) Device() string {
	return "remote"
}

func (c *RemoteClassifier) Close() error {
	return nil
}
