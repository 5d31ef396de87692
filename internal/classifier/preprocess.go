package classifier

import (
	"image"
	"math"

	"github.com/nfnt/resize"
)

// ImageNet channel statistics the network was trained with.
var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocessor turns an arbitrary decoded image into the network's input
// tensor: a Size×Size bilinear resize, RGB scaled to [0,1], normalized per
// channel, laid out CHW with an implicit batch of one.
type Preprocessor struct {
	Size int
	Mean [3]float32
	Std  [3]float32
}

func NewPreprocessor(size int) Preprocessor {
	return Preprocessor{Size: size, Mean: ImageNetMean, Std: ImageNetStd}
}

// Shape is the NCHW input shape.
func (p Preprocessor) Shape() []int64 {
	return []int64{1, 3, int64(p.Size), int64(p.Size)}
}

func (p Preprocessor) Tensor(img image.Image) []float32 {
	resized := resize.Resize(uint(p.Size), uint(p.Size), img, resize.Bilinear)
	b := resized.Bounds()

	plane := p.Size * p.Size
	out := make([]float32, 3*plane)
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			// alpha is premultiplied, so transparent pixels land on black
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := y*p.Size + x
			out[idx] = (float32(r)/0xffff - p.Mean[0]) / p.Std[0]
			out[plane+idx] = (float32(g)/0xffff - p.Mean[1]) / p.Std[1]
			out[2*plane+idx] = (float32(bl)/0xffff - p.Mean[2]) / p.Std[2]
		}
	}
	return out
}

// Softmax is the numerically stable softmax of a logit vector.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(v))
	}

	out := make([]float64, len(logits))
	total := 0.0
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxLogit)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
