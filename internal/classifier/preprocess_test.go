package classifier

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocessor_TensorLayout(t *testing.T) {
	p := NewPreprocessor(8)

	if got := p.Shape(); len(got) != 4 || got[0] != 1 || got[1] != 3 || got[2] != 8 || got[3] != 8 {
		t.Fatalf("Shape() = %v", got)
	}

	tensor := p.Tensor(solid(40, 25, color.RGBA{R: 255, G: 0, B: 255, A: 255}))
	if len(tensor) != 3*8*8 {
		t.Fatalf("len = %d, want %d", len(tensor), 3*8*8)
	}

	plane := 8 * 8
	want := [3]float32{
		(1 - ImageNetMean[0]) / ImageNetStd[0],
		(0 - ImageNetMean[1]) / ImageNetStd[1],
		(1 - ImageNetMean[2]) / ImageNetStd[2],
	}
	for ch := 0; ch < 3; ch++ {
		for i := 0; i < plane; i++ {
			got := tensor[ch*plane+i]
			if math.Abs(float64(got-want[ch])) > 0.05 {
				t.Fatalf("channel %d pixel %d = %v, want %v", ch, i, got, want[ch])
			}
		}
	}
}

func TestPreprocessor_GrayImage(t *testing.T) {
	p := NewPreprocessor(4)
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range g.Pix {
		g.Pix[i] = 128
	}

	tensor := p.Tensor(g)
	v := float32(128) / 255
	for ch := 0; ch < 3; ch++ {
		want := (v - ImageNetMean[ch]) / ImageNetStd[ch]
		if got := tensor[ch*16]; math.Abs(float64(got-want)) > 0.05 {
			t.Fatalf("channel %d = %v, want %v", ch, got, want)
		}
	}
}

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name   string
		logits []float32
	}{
		{"small", []float32{1, 2, 3}},
		{"equal", []float32{0, 0, 0, 0}},
		{"large", []float32{1000, 1001, 999}},
		{"negative", []float32{-50, -20, -35, -20.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := Softmax(tt.logits)
			if len(probs) != len(tt.logits) {
				t.Fatalf("len = %d", len(probs))
			}
			total := 0.0
			for i, p := range probs {
				if math.IsNaN(p) || p < 0 {
					t.Fatalf("probs[%d] = %v", i, p)
				}
				total += p
			}
			if math.Abs(total-1) > 1e-9 {
				t.Fatalf("sum = %v", total)
			}
			for i := range tt.logits {
				for j := range tt.logits {
					if tt.logits[i] > tt.logits[j] && probs[i] <= probs[j] {
						t.Fatalf("softmax not monotonic: %v -> %v", tt.logits, probs)
					}
				}
			}
		})
	}

	if Softmax(nil) != nil {
		t.Fatalf("Softmax(nil) should be nil")
	}
}
