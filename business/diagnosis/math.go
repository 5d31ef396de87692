package diagnosis

import "math"

// y := y + r x
func addScaled(y []float64, x []float64, r float64) {
	for i := range y {
		y[i] += r * x[i]
	}
}

func sum(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}
	return total
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
